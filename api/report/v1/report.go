package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

// ============ 报表查询接口 ============

// QueryReq 自然语言查询请求
type QueryReq struct {
	g.Meta   `path:"/v1/report/query" method:"post" tags:"report" summary:"自然语言生成并执行只读SQL"`
	Question string `json:"question" v:"required#问题不能为空"` // 自然语言问题
}

// QueryRes 自然语言查询响应，status 标识唯一终态
type QueryRes struct {
	QueryID       string                   `json:"query_id"`                // 请求ID（审计记录ID）
	Status        string                   `json:"status"`                  // blocked | rejected | executed | failed
	Code          int                      `json:"code,omitempty"`          // 业务错误码，executed 时为0
	Reason        string                   `json:"reason,omitempty"`        // 终止原因
	SQL           string                   `json:"sql,omitempty"`           // 生成的SQL
	Explanation   string                   `json:"explanation,omitempty"`   // 查询逻辑说明
	IsAmbiguous   bool                     `json:"is_ambiguous,omitempty"`  // 问题是否有歧义
	Clarification string                   `json:"clarification,omitempty"` // 需要澄清的内容
	Columns       []string                 `json:"columns,omitempty"`       // 列名
	Rows          []map[string]interface{} `json:"rows,omitempty"`          // 行数据
	RowCount      int                      `json:"row_count"`               // 行数
	Findings      []*PlanFinding           `json:"findings,omitempty"`      // 性能诊断
	ElapsedMs     int64                    `json:"elapsed_ms,omitempty"`    // 执行耗时（毫秒）
}

// SQLReq 直接执行SQL请求（跳过预检与生成，安全校验照常生效）
type SQLReq struct {
	g.Meta `path:"/v1/report/sql" method:"post" tags:"report" summary:"校验并执行只读SQL"`
	SQL    string `json:"sql" v:"required#SQL不能为空"` // 只读SELECT语句
}

// SQLRes 直接执行SQL响应
type SQLRes struct {
	QueryID   string                   `json:"query_id"`             // 请求ID
	Status    string                   `json:"status"`               // rejected | executed | failed
	Code      int                      `json:"code,omitempty"`       // 业务错误码
	Reason    string                   `json:"reason,omitempty"`     // 终止原因
	SQL       string                   `json:"sql"`                  // 提交的SQL
	Columns   []string                 `json:"columns,omitempty"`    // 列名
	Rows      []map[string]interface{} `json:"rows,omitempty"`       // 行数据
	RowCount  int                      `json:"row_count"`            // 行数
	Findings  []*PlanFinding           `json:"findings,omitempty"`   // 性能诊断
	ElapsedMs int64                    `json:"elapsed_ms,omitempty"` // 执行耗时（毫秒）
}

// AnalyzeReq 查询计划分析请求
type AnalyzeReq struct {
	g.Meta `path:"/v1/report/analyze" method:"post" tags:"report" summary:"执行只读SQL并返回查询计划诊断"`
	SQL    string `json:"sql" v:"required#SQL不能为空"` // 只读SELECT语句
}

// AnalyzeRes 查询计划分析响应（不返回行数据，只返回计划与诊断）
type AnalyzeRes struct {
	QueryID   string         `json:"query_id"`             // 请求ID
	Status    string         `json:"status"`               // rejected | executed | failed
	Code      int            `json:"code,omitempty"`       // 业务错误码
	Reason    string         `json:"reason,omitempty"`     // 终止原因
	SQL       string         `json:"sql"`                  // 提交的SQL
	Plan      []*PlanStep    `json:"plan,omitempty"`       // 查询计划步骤
	Findings  []*PlanFinding `json:"findings,omitempty"`   // 性能诊断
	RowCount  int            `json:"row_count"`            // 行数（不含行数据本身）
	ElapsedMs int64          `json:"elapsed_ms,omitempty"` // 执行耗时（毫秒）
}

// PlanStep 查询计划步骤
type PlanStep struct {
	ID     int    `json:"id"`     // 步骤编号
	Parent int    `json:"parent"` // 父步骤编号
	Detail string `json:"detail"` // 引擎给出的计划描述
}

// PlanFinding 查询计划诊断
type PlanFinding struct {
	Kind           string `json:"kind"`           // FullScan | MissingIndex | TempTable
	AffectedTable  string `json:"affected_table"` // 受影响的表
	Recommendation string `json:"recommendation"` // 优化建议
}

// ============ 守卫层接口 ============

// GuardrailsCheckReq 守卫层试运行请求，question 与 sql 至少提供一个
type GuardrailsCheckReq struct {
	g.Meta   `path:"/v1/report/guardrails/check" method:"post" tags:"report" summary:"守卫层试运行（不执行查询）"`
	Question string `json:"question"` // 自然语言问题（可选）
	SQL      string `json:"sql"`      // SQL语句（可选）
}

// GuardrailsCheckRes 守卫层试运行响应
type GuardrailsCheckRes struct {
	Screen     *ScreenOutcome     `json:"screen,omitempty"`     // 问题预检结果
	Validation *ValidationOutcome `json:"validation,omitempty"` // SQL校验结果
}

// ScreenOutcome 问题预检结果
type ScreenOutcome struct {
	Blocked     bool   `json:"blocked"`                // 是否被拦截
	MatchedTerm string `json:"matched_term,omitempty"` // 命中的受限词
	Reason      string `json:"reason,omitempty"`       // 拦截原因
}

// ValidationOutcome SQL校验结果
type ValidationOutcome struct {
	Approved       bool   `json:"approved"`                  // 是否放行
	MatchedKeyword string `json:"matched_keyword,omitempty"` // 命中的危险关键字
	Reason         string `json:"reason,omitempty"`          // 拒绝原因
}

// ============ 审计与元数据接口 ============

// QueriesReq 最近审计记录请求
type QueriesReq struct {
	g.Meta `path:"/v1/report/queries" method:"get" tags:"report" summary:"查询最近的请求审计记录"`
	Limit  int `json:"limit" v:"min:1|max:200#limit必须在1-200之间" d:"50"` // 返回条数
}

// QueriesRes 最近审计记录响应
type QueriesRes struct {
	List  []*AuditItem `json:"list"`  // 审计记录，新记录在前
	Total int          `json:"total"` // 本次返回条数
}

// AuditItem 审计记录项
type AuditItem struct {
	QueryID   string `json:"query_id"`      // 请求ID
	Kind      string `json:"kind"`          // question | sql
	Input     string `json:"input"`         // 原始问题或SQL
	Status    string `json:"status"`        // 终态
	Reason    string `json:"reason"`        // 终止原因
	SQL       string `json:"sql,omitempty"` // 实际执行的SQL
	RowCount  int    `json:"row_count"`     // 行数
	ElapsedMs int64  `json:"elapsed_ms"`    // 执行耗时（毫秒）
	CreatedAt string `json:"created_at"`    // 记录时间
}

// SchemaReq 库结构说明请求
type SchemaReq struct {
	g.Meta `path:"/v1/report/schema" method:"get" tags:"report" summary:"获取生效的库结构说明与守卫词表"`
}

// SchemaRes 库结构说明响应
type SchemaRes struct {
	SchemaDescription string   `json:"schema_description"` // 生效的库结构说明
	RestrictedTerms   []string `json:"restricted_terms"`   // 受限品牌词表
	ForbiddenKeywords []string `json:"forbidden_keywords"` // 危险关键字表
}
