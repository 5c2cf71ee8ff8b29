package report

import (
	"github.com/breddycfc/social-places-ai-test/api/report/v1"
	"github.com/breddycfc/social-places-ai-test/reporting/analyzer"
	"github.com/breddycfc/social-places-ai-test/reporting/executor"
)

// ControllerV1 报表网关HTTP控制器
type ControllerV1 struct{}

// NewV1 创建V1控制器
func NewV1() *ControllerV1 {
	return &ControllerV1{}
}

// toPlanFindings 服务层诊断转API结构
func toPlanFindings(findings []analyzer.Finding) []*v1.PlanFinding {
	if len(findings) == 0 {
		return nil
	}
	out := make([]*v1.PlanFinding, 0, len(findings))
	for _, f := range findings {
		out = append(out, &v1.PlanFinding{
			Kind:           f.Kind,
			AffectedTable:  f.AffectedTable,
			Recommendation: f.Recommendation,
		})
	}
	return out
}

// toPlanSteps 服务层查询计划转API结构
func toPlanSteps(steps []executor.PlanStep) []*v1.PlanStep {
	if len(steps) == 0 {
		return nil
	}
	out := make([]*v1.PlanStep, 0, len(steps))
	for _, s := range steps {
		out = append(out, &v1.PlanStep{
			ID:     s.ID,
			Parent: s.Parent,
			Detail: s.Detail,
		})
	}
	return out
}
