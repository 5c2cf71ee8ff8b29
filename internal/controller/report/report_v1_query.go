package report

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// Query 自然语言查询：预检、生成、校验、限时执行、计划分析，返回统一终态信封
func (c *ControllerV1) Query(ctx context.Context, req *v1.QueryReq) (res *v1.QueryRes, err error) {
	g.Log().Infof(ctx, "Query request - Question: %s", req.Question)

	outcome := service.Get().Query(ctx, req.Question)

	return &v1.QueryRes{
		QueryID:       outcome.QueryID,
		Status:        outcome.Status,
		Code:          int(outcome.Code),
		Reason:        outcome.Reason,
		SQL:           outcome.SQL,
		Explanation:   outcome.Explanation,
		IsAmbiguous:   outcome.IsAmbiguous,
		Clarification: outcome.Clarification,
		Columns:       outcome.Columns,
		Rows:          outcome.Rows,
		RowCount:      outcome.RowCount,
		Findings:      toPlanFindings(outcome.Findings),
		ElapsedMs:     outcome.ElapsedMs,
	}, nil
}
