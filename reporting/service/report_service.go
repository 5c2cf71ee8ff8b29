package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"

	"github.com/breddycfc/social-places-ai-test/core/config"
	coreErrors "github.com/breddycfc/social-places-ai-test/core/errors"
	"github.com/breddycfc/social-places-ai-test/reporting/analyzer"
	"github.com/breddycfc/social-places-ai-test/reporting/audit"
	"github.com/breddycfc/social-places-ai-test/reporting/common"
	"github.com/breddycfc/social-places-ai-test/reporting/executor"
	"github.com/breddycfc/social-places-ai-test/reporting/generator"
	"github.com/breddycfc/social-places-ai-test/reporting/guard"
	"github.com/breddycfc/social-places-ai-test/reporting/parser"
)

// Screener 问题预检，任何外部调用之前执行
type Screener interface {
	Screen(question string) guard.ScreenResult
}

// Synthesizer 自然语言到候选查询的合成
type Synthesizer interface {
	Synthesize(ctx context.Context, question string) (*generator.QueryCandidate, error)
}

// Validator SQL安全校验，独立于合成器的第二道防线
type Validator interface {
	Validate(candidate *generator.QueryCandidate) parser.Verdict
	ValidateSQL(sqlText string) parser.Verdict
}

// Executor 限时只读执行
type Executor interface {
	Execute(ctx context.Context, sqlText string, timeout time.Duration) (*executor.Result, error)
}

// PlanAnalyzer 查询计划分析
type PlanAnalyzer interface {
	Analyze(trace []executor.PlanStep) []analyzer.Finding
}

// Options 网关配置
type Options struct {
	ExecutionTimeout  time.Duration // SQL执行超时（与模型调用超时互相独立）
	SchemaDescription string        // 生效的库结构说明（供查询接口展示）
	RestrictedTerms   []string      // 生效的受限词表
	ForbiddenKeywords []string      // 生效的危险关键字表
}

// ReportService 报表查询网关。
// 按固定顺序编排预检、合成、校验、执行、计划分析五个组件，
// 自身不含业务判断，只负责状态推进、审计落账与响应组装。
// 每个请求恰好终止于 blocked/rejected/executed/failed 四个终态之一。
type ReportService struct {
	screener  Screener
	synth     Synthesizer
	validator Validator
	executor  Executor
	analyzer  PlanAnalyzer
	auditLog  *audit.Log
	opts      Options
}

// New 创建报表查询网关
func New(screener Screener, synth Synthesizer, validator Validator, exec Executor,
	planAnalyzer PlanAnalyzer, auditLog *audit.Log, opts Options) *ReportService {
	if opts.ExecutionTimeout <= 0 {
		opts.ExecutionTimeout = time.Duration(config.DefaultExecutionTimeoutSeconds) * time.Second
	}
	return &ReportService{
		screener:  screener,
		synth:     synth,
		validator: validator,
		executor:  exec,
		analyzer:  planAnalyzer,
		auditLog:  auditLog,
		opts:      opts,
	}
}

// QueryOutcome 请求终态信封
type QueryOutcome struct {
	QueryID       string                   // 请求ID（同时是审计记录ID）
	Status        string                   // blocked | rejected | executed | failed
	Code          coreErrors.ErrCode       // 业务错误码，executed 时为0
	Reason        string                   // 终止原因（用户可读）
	SQL           string                   // 涉及的SQL
	Explanation   string                   // 查询逻辑说明
	IsAmbiguous   bool                     // 问题是否有歧义
	Clarification string                   // 需要澄清的内容
	Columns       []string                 // 列名
	Rows          []map[string]interface{} // 行数据
	RowCount      int                      // 行数
	PlanTrace     []executor.PlanStep      // 查询计划
	Findings      []analyzer.Finding       // 性能诊断
	ElapsedMs     int64                    // 执行耗时（毫秒）
}

// Query 处理一条自然语言问题，完整走五段流水线
func (s *ReportService) Query(ctx context.Context, question string) *QueryOutcome {
	queryID := uuid.New().String()
	g.Log().Infof(ctx, "Report query started - QueryID: %s, Question: %s", queryID, question)

	// 1. 预检：整条流水线上最廉价的拒绝，不产生任何外部调用
	screen := s.screener.Screen(question)
	if screen.Blocked {
		g.Log().Warningf(ctx, "Question blocked by pre-screen - QueryID: %s, Term: %s", queryID, screen.MatchedTerm)
		outcome := &QueryOutcome{
			QueryID: queryID,
			Status:  common.StatusBlocked,
			Code:    coreErrors.ErrQuestionBlocked,
			Reason:  screen.Reason,
		}
		s.record(common.AuditKindQuestion, question, outcome)
		return outcome
	}

	// 2. 合成：调用外部模型生成候选查询，占用独立的模型超时预算
	candidate, err := s.synth.Synthesize(ctx, question)
	if err != nil {
		outcome := s.generationFailure(ctx, queryID, err)
		s.record(common.AuditKindQuestion, question, outcome)
		return outcome
	}
	g.Log().Infof(ctx, "SQL synthesized - QueryID: %s, Ambiguous: %v, SQL: %s",
		queryID, candidate.IsAmbiguous, candidate.SQLText)

	// 3. 校验：独立安全裁决，候选自带的只读声明不参与判定
	verdict := s.validator.Validate(candidate)
	if !verdict.Approved {
		// 安全事件，带命中关键字记录
		g.Log().Warningf(ctx, "SQL rejected by safety validator - QueryID: %s, Keyword: %s, SQL: %s",
			queryID, verdict.MatchedKeyword, candidate.SQLText)
		outcome := &QueryOutcome{
			QueryID:       queryID,
			Status:        common.StatusRejected,
			Code:          coreErrors.ErrQueryRejected,
			Reason:        verdict.Reason,
			SQL:           candidate.SQLText,
			Explanation:   candidate.Explanation,
			IsAmbiguous:   candidate.IsAmbiguous,
			Clarification: candidate.ClarificationHint,
		}
		s.record(common.AuditKindQuestion, question, outcome)
		return outcome
	}

	// 4+5. 限时执行与计划分析
	outcome := s.executeApproved(ctx, queryID, candidate)
	s.record(common.AuditKindQuestion, question, outcome)
	return outcome
}

// RunSQL 直接执行调用方提供的SQL。
// 跳过预检与合成，安全校验和限时执行照常生效。
func (s *ReportService) RunSQL(ctx context.Context, sqlText string) *QueryOutcome {
	queryID := uuid.New().String()
	g.Log().Infof(ctx, "Direct SQL started - QueryID: %s, SQL: %s", queryID, sqlText)

	verdict := s.validator.ValidateSQL(sqlText)
	if !verdict.Approved {
		g.Log().Warningf(ctx, "SQL rejected by safety validator - QueryID: %s, Keyword: %s, SQL: %s",
			queryID, verdict.MatchedKeyword, sqlText)
		outcome := &QueryOutcome{
			QueryID: queryID,
			Status:  common.StatusRejected,
			Code:    coreErrors.ErrQueryRejected,
			Reason:  verdict.Reason,
			SQL:     sqlText,
		}
		s.record(common.AuditKindSQL, sqlText, outcome)
		return outcome
	}

	outcome := s.executeApproved(ctx, queryID, &generator.QueryCandidate{SQLText: sqlText})
	s.record(common.AuditKindSQL, sqlText, outcome)
	return outcome
}

// GuardrailReport 守卫层试运行结果，绝不触发执行
type GuardrailReport struct {
	Screen  *guard.ScreenResult // 问题预检结果，未提供问题时为空
	Verdict *parser.Verdict     // SQL校验结果，未提供SQL时为空
}

// CheckGuardrails 对问题或SQL做守卫层试运行，只返回裁决，不执行任何查询
func (s *ReportService) CheckGuardrails(ctx context.Context, question, sqlText string) *GuardrailReport {
	report := &GuardrailReport{}
	if question != "" {
		r := s.screener.Screen(question)
		report.Screen = &r
	}
	if sqlText != "" {
		v := s.validator.ValidateSQL(sqlText)
		report.Verdict = &v
	}
	g.Log().Infof(ctx, "Guardrail check - HasQuestion: %v, HasSQL: %v", question != "", sqlText != "")
	return report
}

// RecentQueries 返回最近的审计记录，新记录在前
func (s *ReportService) RecentQueries(limit int) []audit.Record {
	return s.auditLog.Recent(limit)
}

// SchemaInfo 生效的库结构说明与守卫词表
type SchemaInfo struct {
	SchemaDescription string
	RestrictedTerms   []string
	ForbiddenKeywords []string
}

// Schema 返回生效的库结构说明与守卫词表
func (s *ReportService) Schema() SchemaInfo {
	terms := make([]string, len(s.opts.RestrictedTerms))
	copy(terms, s.opts.RestrictedTerms)
	keywords := make([]string, len(s.opts.ForbiddenKeywords))
	copy(keywords, s.opts.ForbiddenKeywords)
	return SchemaInfo{
		SchemaDescription: s.opts.SchemaDescription,
		RestrictedTerms:   terms,
		ForbiddenKeywords: keywords,
	}
}

// executeApproved 执行已通过安全校验的查询并附加计划分析
func (s *ReportService) executeApproved(ctx context.Context, queryID string, candidate *generator.QueryCandidate) *QueryOutcome {
	result, err := s.executor.Execute(ctx, candidate.SQLText, s.opts.ExecutionTimeout)
	if err != nil {
		code, reason := executionFailure(err, s.opts.ExecutionTimeout)
		g.Log().Errorf(ctx, "SQL execution failed - QueryID: %s, Code: %d, Error: %v", queryID, code, err)
		return &QueryOutcome{
			QueryID:       queryID,
			Status:        common.StatusFailed,
			Code:          code,
			Reason:        reason,
			SQL:           candidate.SQLText,
			Explanation:   candidate.Explanation,
			IsAmbiguous:   candidate.IsAmbiguous,
			Clarification: candidate.ClarificationHint,
		}
	}

	findings := s.analyzer.Analyze(result.PlanTrace)
	g.Log().Infof(ctx, "Query executed - QueryID: %s, Rows: %d, Findings: %d, Elapsed: %s",
		queryID, len(result.Rows), len(findings), result.Elapsed)

	return &QueryOutcome{
		QueryID:       queryID,
		Status:        common.StatusExecuted,
		SQL:           candidate.SQLText,
		Explanation:   candidate.Explanation,
		IsAmbiguous:   candidate.IsAmbiguous,
		Clarification: candidate.ClarificationHint,
		Columns:       result.Columns,
		Rows:          result.Rows,
		RowCount:      len(result.Rows),
		PlanTrace:     result.PlanTrace,
		Findings:      findings,
		ElapsedMs:     result.Elapsed.Milliseconds(),
	}
}

// generationFailure 把合成失败折算成 failed 终态。
// 内部细节只进日志，对调用方统一给可重试的提示。
func (s *ReportService) generationFailure(ctx context.Context, queryID string, err error) *QueryOutcome {
	code := coreErrors.CodeOf(err)
	if code == 0 {
		code = coreErrors.ErrGenerationFailed
	}
	g.Log().Errorf(ctx, "SQL synthesis failed - QueryID: %s, Code: %d, Error: %v", queryID, code, err)

	reason := "查询生成服务暂时不可用，请稍后重试"
	if code == coreErrors.ErrGenerationTimeout {
		reason = "查询生成超时，请稍后重试"
	}
	return &QueryOutcome{
		QueryID: queryID,
		Status:  common.StatusFailed,
		Code:    code,
		Reason:  reason,
	}
}

// executionFailure 区分执行超时与引擎错误，各给对应的用户提示
func executionFailure(err error, timeout time.Duration) (coreErrors.ErrCode, string) {
	switch coreErrors.CodeOf(err) {
	case coreErrors.ErrExecutionTimeout:
		return coreErrors.ErrExecutionTimeout,
			fmt.Sprintf("查询执行超过 %d 秒超时限制，请缩小查询范围后重试", int(timeout.Seconds()))
	default:
		return coreErrors.ErrEngineFailure, "查询执行失败，请调整问题后重试"
	}
}

// record 请求到达终态时写入审计日志
func (s *ReportService) record(kind, input string, outcome *QueryOutcome) {
	if s.auditLog == nil {
		return
	}
	s.auditLog.Append(audit.Record{
		ID:        outcome.QueryID,
		Kind:      kind,
		Input:     input,
		Status:    outcome.Status,
		Reason:    outcome.Reason,
		SQL:       outcome.SQL,
		RowCount:  outcome.RowCount,
		ElapsedMs: outcome.ElapsedMs,
	})
}
