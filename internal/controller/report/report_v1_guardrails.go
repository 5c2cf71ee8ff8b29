package report

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	coreErrors "github.com/breddycfc/social-places-ai-test/core/errors"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// GuardrailsCheck 对问题和SQL做安全预检，只诊断不执行
func (c *ControllerV1) GuardrailsCheck(ctx context.Context, req *v1.GuardrailsCheckReq) (res *v1.GuardrailsCheckRes, err error) {
	g.Log().Infof(ctx, "GuardrailsCheck request - Question: %s, SQL: %s", req.Question, req.SQL)

	if req.Question == "" && req.SQL == "" {
		return nil, coreErrors.New(coreErrors.ErrInvalidParameter, "question 与 sql 至少需要提供一个")
	}

	report := service.Get().CheckGuardrails(ctx, req.Question, req.SQL)

	res = &v1.GuardrailsCheckRes{}
	if report.Screen != nil {
		res.Screen = &v1.ScreenOutcome{
			Blocked:     report.Screen.Blocked,
			MatchedTerm: report.Screen.MatchedTerm,
			Reason:      report.Screen.Reason,
		}
	}
	if report.Verdict != nil {
		res.Validation = &v1.ValidationOutcome{
			Approved:       report.Verdict.Approved,
			MatchedKeyword: report.Verdict.MatchedKeyword,
			Reason:         report.Verdict.Reason,
		}
	}
	return res, nil
}
