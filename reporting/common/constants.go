package common

// 请求终态（网关响应 status 字段）
// 每个请求恰好终止于其中一个状态，不存在部分成功的响应
const (
	StatusBlocked  = "blocked"  // 预检命中受限品牌，未调用模型
	StatusRejected = "rejected" // 生成的SQL未通过安全校验，未执行
	StatusExecuted = "executed" // 查询执行成功
	StatusFailed   = "failed"   // 生成失败或执行失败
)

// 审计记录输入类型
const (
	AuditKindQuestion = "question" // 自然语言问题
	AuditKindSQL      = "sql"      // 调用方直接提交的SQL
)

// 查询计划诊断类型
const (
	FindingFullScan     = "FullScan"     // 无索引过滤的全表扫描
	FindingMissingIndex = "MissingIndex" // 排序或连接键未命中索引
	FindingTempTable    = "TempTable"    // 物化中间结果（临时表/临时B树）
)
