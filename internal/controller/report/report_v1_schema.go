package report

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// Schema 返回数据库结构描述与生效的防护清单
func (c *ControllerV1) Schema(ctx context.Context, req *v1.SchemaReq) (res *v1.SchemaRes, err error) {
	g.Log().Info(ctx, "Schema request")

	info := service.Get().Schema()

	return &v1.SchemaRes{
		SchemaDescription: info.SchemaDescription,
		RestrictedTerms:   info.RestrictedTerms,
		ForbiddenKeywords: info.ForbiddenKeywords,
	}, nil
}
