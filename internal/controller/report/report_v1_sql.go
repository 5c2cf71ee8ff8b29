package report

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// SQL 直接执行调用方提供的SQL，安全校验与限时执行照常生效
func (c *ControllerV1) SQL(ctx context.Context, req *v1.SQLReq) (res *v1.SQLRes, err error) {
	g.Log().Infof(ctx, "SQL request - SQL: %s", req.SQL)

	outcome := service.Get().RunSQL(ctx, req.SQL)

	return &v1.SQLRes{
		QueryID:   outcome.QueryID,
		Status:    outcome.Status,
		Code:      int(outcome.Code),
		Reason:    outcome.Reason,
		SQL:       outcome.SQL,
		Columns:   outcome.Columns,
		Rows:      outcome.Rows,
		RowCount:  outcome.RowCount,
		Findings:  toPlanFindings(outcome.Findings),
		ElapsedMs: outcome.ElapsedMs,
	}, nil
}
