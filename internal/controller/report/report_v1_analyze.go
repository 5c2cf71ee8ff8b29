package report

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// Analyze 执行只读SQL并返回查询计划与性能诊断，不返回行数据
func (c *ControllerV1) Analyze(ctx context.Context, req *v1.AnalyzeReq) (res *v1.AnalyzeRes, err error) {
	g.Log().Infof(ctx, "Analyze request - SQL: %s", req.SQL)

	outcome := service.Get().RunSQL(ctx, req.SQL)

	return &v1.AnalyzeRes{
		QueryID:   outcome.QueryID,
		Status:    outcome.Status,
		Code:      int(outcome.Code),
		Reason:    outcome.Reason,
		SQL:       outcome.SQL,
		Plan:      toPlanSteps(outcome.PlanTrace),
		Findings:  toPlanFindings(outcome.Findings),
		RowCount:  outcome.RowCount,
		ElapsedMs: outcome.ElapsedMs,
	}, nil
}
