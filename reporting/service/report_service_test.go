package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreErrors "github.com/breddycfc/social-places-ai-test/core/errors"
	"github.com/breddycfc/social-places-ai-test/reporting/analyzer"
	"github.com/breddycfc/social-places-ai-test/reporting/audit"
	"github.com/breddycfc/social-places-ai-test/reporting/common"
	"github.com/breddycfc/social-places-ai-test/reporting/executor"
	"github.com/breddycfc/social-places-ai-test/reporting/generator"
	"github.com/breddycfc/social-places-ai-test/reporting/guard"
	"github.com/breddycfc/social-places-ai-test/reporting/parser"
)

// ---- 测试替身 ----

type stubSynthesizer struct {
	candidate *generator.QueryCandidate
	err       error
	calls     int
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, question string) (*generator.QueryCandidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.candidate, nil
}

type stubExecutor struct {
	result *executor.Result
	err    error
	calls  int
}

func (s *stubExecutor) Execute(ctx context.Context, sqlText string, timeout time.Duration) (*executor.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubAnalyzer struct {
	findings []analyzer.Finding
	calls    int
}

func (s *stubAnalyzer) Analyze(trace []executor.PlanStep) []analyzer.Finding {
	s.calls++
	return s.findings
}

// ---- 装配工具 ----

type fixture struct {
	synth    *stubSynthesizer
	exec     *stubExecutor
	analyzer *stubAnalyzer
	audit    *audit.Log
	svc      *ReportService
}

// newFixture 预检与校验用真实实现（默认词表），其余用替身
func newFixture() *fixture {
	f := &fixture{
		synth:    &stubSynthesizer{},
		exec:     &stubExecutor{},
		analyzer: &stubAnalyzer{},
		audit:    audit.NewLog(16),
	}
	f.svc = New(
		guard.NewScreener(guard.RestrictedTerms(nil)),
		f.synth,
		parser.NewValidator(guard.ForbiddenKeywords(nil)),
		f.exec,
		f.analyzer,
		f.audit,
		Options{ExecutionTimeout: 2 * time.Second},
	)
	return f
}

func selectCandidate() *generator.QueryCandidate {
	return &generator.QueryCandidate{
		SQLText:          "SELECT store_name, AVG(rating) AS avg_rating FROM reviews GROUP BY store_name ORDER BY avg_rating ASC LIMIT 5",
		Explanation:      "Averages ratings per store and returns the lowest five.",
		DeclaredReadOnly: true,
	}
}

func sampleResult() *executor.Result {
	return &executor.Result{
		Columns: []string{"store_name", "avg_rating"},
		Rows: []map[string]interface{}{
			{"store_name": "Social Places Canal Walk", "avg_rating": 2.1},
			{"store_name": "Social Places Tyger Valley", "avg_rating": 2.4},
		},
		PlanTrace: []executor.PlanStep{{ID: 2, Detail: "SCAN reviews"}},
		Elapsed:   42 * time.Millisecond,
	}
}

var terminalStatuses = []string{
	common.StatusBlocked, common.StatusRejected, common.StatusExecuted, common.StatusFailed,
}

// ---- 自然语言路径 ----

func TestQueryBlockedByPreScreen(t *testing.T) {
	f := newFixture()

	outcome := f.svc.Query(context.Background(), "How do we compare to Nando's?")

	assert.Equal(t, common.StatusBlocked, outcome.Status)
	assert.Equal(t, coreErrors.ErrQuestionBlocked, outcome.Code)
	assert.Contains(t, outcome.Reason, "nando")
	assert.Empty(t, outcome.SQL)
	assert.Empty(t, outcome.Rows)
	// 拦截必须发生在任何外部调用之前
	assert.Equal(t, 0, f.synth.calls)
	assert.Equal(t, 0, f.exec.calls)

	records := f.audit.Recent(1)
	require.Len(t, records, 1)
	assert.Equal(t, common.StatusBlocked, records[0].Status)
	assert.Equal(t, common.AuditKindQuestion, records[0].Kind)
}

func TestQueryRejectedDespiteReadOnlyClaim(t *testing.T) {
	f := newFixture()
	f.synth.candidate = &generator.QueryCandidate{
		SQLText:          "DELETE FROM reviews WHERE rating < 3",
		Explanation:      "removes bad reviews",
		DeclaredReadOnly: true, // 模型声明不可信
	}

	outcome := f.svc.Query(context.Background(), "Clean up the bad reviews")

	assert.Equal(t, common.StatusRejected, outcome.Status)
	assert.Equal(t, coreErrors.ErrQueryRejected, outcome.Code)
	assert.Contains(t, outcome.Reason, "DELETE")
	assert.Equal(t, "DELETE FROM reviews WHERE rating < 3", outcome.SQL)
	assert.Equal(t, 0, f.exec.calls, "被拒绝的SQL绝不能抵达执行器")

	records := f.audit.Recent(1)
	require.Len(t, records, 1)
	assert.Equal(t, common.StatusRejected, records[0].Status)
}

func TestQueryGenerationFailureIsGeneric(t *testing.T) {
	f := newFixture()
	f.synth.err = coreErrors.Newf(coreErrors.ErrGenerationFailed, "模型服务调用失败: connection refused to 10.0.0.8")

	outcome := f.svc.Query(context.Background(), "How many reviews this month?")

	assert.Equal(t, common.StatusFailed, outcome.Status)
	assert.Equal(t, coreErrors.ErrGenerationFailed, outcome.Code)
	// 对外不暴露内部错误细节，只给可重试的提示
	assert.NotContains(t, outcome.Reason, "connection refused")
	assert.NotContains(t, outcome.Reason, "10.0.0.8")
	assert.Contains(t, outcome.Reason, "重试")
	assert.Equal(t, 0, f.exec.calls)
}

func TestQueryGenerationTimeoutCode(t *testing.T) {
	f := newFixture()
	f.synth.err = coreErrors.New(coreErrors.ErrGenerationTimeout, "模型调用超过 30s 超时限制")

	outcome := f.svc.Query(context.Background(), "q")

	assert.Equal(t, common.StatusFailed, outcome.Status)
	assert.Equal(t, coreErrors.ErrGenerationTimeout, outcome.Code)
}

func TestQueryExecutionTimeoutVsEngineError(t *testing.T) {
	// 超时
	f := newFixture()
	f.synth.candidate = selectCandidate()
	f.exec.err = coreErrors.New(coreErrors.ErrExecutionTimeout, "查询执行超过 2s 超时限制")

	timeoutOutcome := f.svc.Query(context.Background(), "q")
	assert.Equal(t, common.StatusFailed, timeoutOutcome.Status)
	assert.Equal(t, coreErrors.ErrExecutionTimeout, timeoutOutcome.Code)
	assert.Contains(t, timeoutOutcome.Reason, "超时")

	// 引擎错误
	f = newFixture()
	f.synth.candidate = selectCandidate()
	f.exec.err = coreErrors.New(coreErrors.ErrEngineFailure, "存储引擎执行失败: no such column: x")

	engineOutcome := f.svc.Query(context.Background(), "q")
	assert.Equal(t, common.StatusFailed, engineOutcome.Status)
	assert.Equal(t, coreErrors.ErrEngineFailure, engineOutcome.Code)

	// 两类失败必须可区分
	assert.NotEqual(t, timeoutOutcome.Code, engineOutcome.Code)
	assert.NotEqual(t, timeoutOutcome.Reason, engineOutcome.Reason)
}

func TestQueryExecutedWithFindings(t *testing.T) {
	f := newFixture()
	f.synth.candidate = selectCandidate()
	f.exec.result = sampleResult()
	f.analyzer.findings = []analyzer.Finding{
		{Kind: common.FindingFullScan, AffectedTable: "reviews", Recommendation: "add index"},
	}

	outcome := f.svc.Query(context.Background(), "Which 5 stores have the lowest average rating?")

	assert.Equal(t, common.StatusExecuted, outcome.Status)
	assert.Zero(t, outcome.Code)
	assert.Empty(t, outcome.Reason)
	assert.Equal(t, []string{"store_name", "avg_rating"}, outcome.Columns)
	assert.Equal(t, 2, outcome.RowCount)
	assert.Len(t, outcome.Rows, 2)
	assert.Len(t, outcome.Findings, 1)
	assert.EqualValues(t, 42, outcome.ElapsedMs)
	assert.Equal(t, 1, f.analyzer.calls)

	records := f.audit.Recent(1)
	require.Len(t, records, 1)
	assert.Equal(t, common.StatusExecuted, records[0].Status)
	assert.Equal(t, 2, records[0].RowCount)
	assert.Equal(t, outcome.QueryID, records[0].ID)
}

func TestQueryAmbiguousStillExecutes(t *testing.T) {
	f := newFixture()
	f.synth.candidate = &generator.QueryCandidate{
		SQLText:           "SELECT * FROM reviews ORDER BY review_date DESC LIMIT 100",
		Explanation:       "Latest reviews as the most likely interpretation.",
		IsAmbiguous:       true,
		ClarificationHint: "请说明想看哪家门店、什么时间范围的评论",
		DeclaredReadOnly:  true,
	}
	f.exec.result = sampleResult()

	outcome := f.svc.Query(context.Background(), "Show me reviews")

	// 歧义不是失败：照常执行最优猜测查询并回传澄清提示
	assert.Equal(t, common.StatusExecuted, outcome.Status)
	assert.True(t, outcome.IsAmbiguous)
	assert.NotEmpty(t, outcome.Clarification)
	assert.NotEmpty(t, outcome.Rows)
}

func TestExactlyOneTerminalState(t *testing.T) {
	cases := []struct {
		name       string
		prepare    func(f *fixture)
		question   string
		wantStatus string
	}{
		{
			name:       "命中受限词",
			prepare:    func(f *fixture) {},
			question:   "kfc?",
			wantStatus: common.StatusBlocked,
		},
		{
			name: "校验拒绝",
			prepare: func(f *fixture) {
				f.synth.candidate = &generator.QueryCandidate{SQLText: "DROP TABLE reviews"}
			},
			question:   "tidy up",
			wantStatus: common.StatusRejected,
		},
		{
			name: "生成失败",
			prepare: func(f *fixture) {
				f.synth.err = coreErrors.New(coreErrors.ErrGenerationFailed, "down")
			},
			question:   "anything",
			wantStatus: common.StatusFailed,
		},
		{
			name: "执行失败",
			prepare: func(f *fixture) {
				f.synth.candidate = selectCandidate()
				f.exec.err = coreErrors.New(coreErrors.ErrEngineFailure, "boom")
			},
			question:   "anything",
			wantStatus: common.StatusFailed,
		},
		{
			name: "执行成功",
			prepare: func(f *fixture) {
				f.synth.candidate = selectCandidate()
				f.exec.result = sampleResult()
			},
			question:   "anything",
			wantStatus: common.StatusExecuted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			tc.prepare(f)

			outcome := f.svc.Query(context.Background(), tc.question)

			assert.Equal(t, tc.wantStatus, outcome.Status)
			assert.Contains(t, terminalStatuses, outcome.Status)
			if outcome.Status == common.StatusExecuted {
				assert.Zero(t, outcome.Code)
			} else {
				assert.NotZero(t, outcome.Code)
				assert.NotEmpty(t, outcome.Reason)
			}
			// 每个请求恰好落一条审计
			assert.Equal(t, 1, f.audit.Size())
		})
	}
}

// ---- 直接SQL路径 ----

func TestRunSQLApprovedAndExecuted(t *testing.T) {
	f := newFixture()
	f.exec.result = sampleResult()

	outcome := f.svc.RunSQL(context.Background(), "SELECT * FROM reviews LIMIT 5")

	assert.Equal(t, common.StatusExecuted, outcome.Status)
	assert.Equal(t, 2, outcome.RowCount)
	assert.Equal(t, 0, f.synth.calls, "直接SQL路径不调用模型")

	records := f.audit.Recent(1)
	require.Len(t, records, 1)
	assert.Equal(t, common.AuditKindSQL, records[0].Kind)
	assert.Equal(t, "SELECT * FROM reviews LIMIT 5", records[0].Input)
}

func TestRunSQLRejected(t *testing.T) {
	f := newFixture()

	outcome := f.svc.RunSQL(context.Background(), "DROP TABLE reviews")

	assert.Equal(t, common.StatusRejected, outcome.Status)
	assert.Contains(t, outcome.Reason, "DROP")
	assert.Equal(t, 0, f.exec.calls)
}

// ---- 守卫层试运行 ----

func TestCheckGuardrailsNeverExecutes(t *testing.T) {
	f := newFixture()

	report := f.svc.CheckGuardrails(context.Background(),
		"How is Nando's doing?", "DELETE FROM reviews")

	require.NotNil(t, report.Screen)
	assert.True(t, report.Screen.Blocked)
	assert.Equal(t, "nando", report.Screen.MatchedTerm)
	require.NotNil(t, report.Verdict)
	assert.False(t, report.Verdict.Approved)
	assert.Equal(t, "DELETE", report.Verdict.MatchedKeyword)

	assert.Equal(t, 0, f.synth.calls)
	assert.Equal(t, 0, f.exec.calls, "试运行绝不触发执行")
	assert.Equal(t, 0, f.audit.Size(), "试运行不落审计")
}

func TestCheckGuardrailsPartialInput(t *testing.T) {
	f := newFixture()

	report := f.svc.CheckGuardrails(context.Background(), "bottom stores by rating", "")
	require.NotNil(t, report.Screen)
	assert.False(t, report.Screen.Blocked)
	assert.Nil(t, report.Verdict)

	report = f.svc.CheckGuardrails(context.Background(), "", "SELECT 1")
	assert.Nil(t, report.Screen)
	require.NotNil(t, report.Verdict)
	assert.True(t, report.Verdict.Approved)
}

// ---- 审计与查询接口 ----

func TestAuditTrailAcrossTerminals(t *testing.T) {
	f := newFixture()
	f.exec.result = sampleResult()

	f.svc.Query(context.Background(), "kfc?") // blocked
	f.synth.err = coreErrors.New(coreErrors.ErrGenerationFailed, "down")
	f.svc.Query(context.Background(), "q2") // failed
	f.synth.err = nil
	f.synth.candidate = selectCandidate()
	f.svc.Query(context.Background(), "q3") // executed

	assert.Equal(t, 3, f.audit.Size())
	records := f.svc.RecentQueries(10)
	require.Len(t, records, 3)
	// 新记录在前
	assert.Equal(t, common.StatusExecuted, records[0].Status)
	assert.Equal(t, "q3", records[0].Input)
	assert.Equal(t, common.StatusFailed, records[1].Status)
	assert.Equal(t, common.StatusBlocked, records[2].Status)
}

func TestSchemaInfo(t *testing.T) {
	f := newFixture()
	f.svc.opts.SchemaDescription = "DATABASE SCHEMA: demo"
	f.svc.opts.RestrictedTerms = []string{"kfc"}
	f.svc.opts.ForbiddenKeywords = []string{"DROP"}

	info := f.svc.Schema()
	assert.Equal(t, "DATABASE SCHEMA: demo", info.SchemaDescription)
	assert.Equal(t, []string{"kfc"}, info.RestrictedTerms)
	assert.Equal(t, []string{"DROP"}, info.ForbiddenKeywords)

	// 返回的是副本，调用方修改不影响服务内部状态
	info.RestrictedTerms[0] = "mutated"
	assert.Equal(t, "kfc", f.svc.Schema().RestrictedTerms[0])
}
