package report

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// Queries 返回最近的查询审计记录，按时间倒序
func (c *ControllerV1) Queries(ctx context.Context, req *v1.QueriesReq) (res *v1.QueriesRes, err error) {
	g.Log().Infof(ctx, "Queries request - Limit: %d", req.Limit)

	records := service.Get().RecentQueries(req.Limit)

	list := make([]*v1.AuditItem, 0, len(records))
	for _, r := range records {
		list = append(list, &v1.AuditItem{
			QueryID:   r.ID,
			Kind:      r.Kind,
			Input:     r.Input,
			Status:    r.Status,
			Reason:    r.Reason,
			SQL:       r.SQL,
			RowCount:  r.RowCount,
			ElapsedMs: r.ElapsedMs,
			CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return &v1.QueriesRes{
		List:  list,
		Total: len(list),
	}, nil
}
