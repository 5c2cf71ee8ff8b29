package analyzer

import (
	"fmt"
	"strings"

	"github.com/breddycfc/social-places-ai-test/reporting/common"
	"github.com/breddycfc/social-places-ai-test/reporting/executor"
)

// Finding 针对查询计划的一条性能诊断
type Finding struct {
	Kind           string `json:"kind"`           // FullScan | MissingIndex | TempTable
	AffectedTable  string `json:"affected_table"` // 受影响的表（按计划文本尽力解析，可能是别名）
	Recommendation string `json:"recommendation"` // 优化建议（用户可读）
}

// Analyzer 查询计划分析器。
// 对计划步骤做纯文本模式匹配，输出建议性的诊断结果；
// 诊断不回改安全校验结论，也不影响已取回的查询结果。
type Analyzer struct{}

// New 创建查询计划分析器
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze 按步骤顺序匹配已知的低效执行模式，同一步骤只报告首个命中规则：
// 全表扫描，其次排序未走索引，最后其他临时结构。
// 首个全表扫描报 FullScan，同一计划中后续的全表扫描按连接键缺索引报
// MissingIndex。纯函数，对同一计划重复分析得到相同结果，空计划返回空诊断。
func (a *Analyzer) Analyze(trace []executor.PlanStep) []Finding {
	findings := make([]Finding, 0)
	fullScans := 0
	lastTable := ""

	for _, step := range trace {
		detail := strings.TrimSpace(step.Detail)
		upper := strings.ToUpper(detail)

		switch {
		case strings.HasPrefix(upper, "SCAN "):
			table := scanTarget(detail)
			if table != "" {
				lastTable = table
			}
			if strings.Contains(upper, "USING COVERING INDEX") || strings.Contains(upper, "USING INDEX") {
				continue
			}
			fullScans++
			if fullScans == 1 {
				findings = append(findings, Finding{
					Kind:           common.FindingFullScan,
					AffectedTable:  table,
					Recommendation: fmt.Sprintf("对表 %s 的查询是全表扫描，建议用已建索引的列（如 store_name、rating、review_date）做过滤", table),
				})
			} else {
				findings = append(findings, Finding{
					Kind:           common.FindingMissingIndex,
					AffectedTable:  table,
					Recommendation: fmt.Sprintf("表 %s 在关联中被全表扫描，建议确认连接键已建立索引", table),
				})
			}
		case strings.Contains(upper, "USE TEMP B-TREE FOR ORDER BY"):
			findings = append(findings, Finding{
				Kind:           common.FindingMissingIndex,
				AffectedTable:  lastTable,
				Recommendation: "排序未命中索引，建议为 ORDER BY 涉及的列建立索引，或改按已索引的列排序",
			})
		case strings.Contains(upper, "TEMP B-TREE"), strings.Contains(upper, "MATERIALIZE"), strings.Contains(upper, "TEMPORARY"):
			table := materializeTarget(detail)
			if table == "" {
				table = lastTable
			}
			findings = append(findings, Finding{
				Kind:           common.FindingTempTable,
				AffectedTable:  table,
				Recommendation: "查询会物化中间结果（临时表或临时B树），数据量增大后可能明显变慢",
			})
		case strings.HasPrefix(upper, "SEARCH "):
			// 走索引的检索无需建议，仅记录当前表供后续步骤定位
			if table := scanTarget(detail); table != "" {
				lastTable = table
			}
		}
	}
	return findings
}

// scanTarget 从 "SCAN reviews"、"SCAN TABLE reviews AS r USING INDEX ..."
// 这类计划文本里解析被扫描的表名
func scanTarget(detail string) string {
	fields := strings.Fields(detail)
	if len(fields) < 2 {
		return ""
	}
	idx := 1
	if strings.EqualFold(fields[1], "TABLE") && len(fields) > 2 {
		idx = 2
	}
	return strings.Trim(fields[idx], "`\"")
}

// materializeTarget 解析 "MATERIALIZE xxx" 中被物化的子查询名
func materializeTarget(detail string) string {
	fields := strings.Fields(detail)
	for i, f := range fields {
		if strings.EqualFold(f, "MATERIALIZE") && i+1 < len(fields) {
			return strings.Trim(fields[i+1], "`\"")
		}
	}
	return ""
}
