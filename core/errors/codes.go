package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrInternalError    ErrCode = 1003 // 内部错误
	ErrNotFound         ErrCode = 1004 // 资源未找到
	ErrOperationFailed  ErrCode = 1006 // 操作失败

	// 模型/查询生成相关 2000-2999
	ErrModelNotConfigured  ErrCode = 2001 // 模型未配置
	ErrGenerationFailed    ErrCode = 2002 // 查询生成失败（模型不可达等）
	ErrGenerationMalformed ErrCode = 2003 // 模型返回无法解析
	ErrGenerationTimeout   ErrCode = 2004 // 模型调用超时

	// 问题预检相关 3000-3999
	ErrQuestionBlocked ErrCode = 3001 // 问题命中受限品牌

	// SQL安全校验相关 4000-4999
	ErrQueryRejected ErrCode = 4001 // SQL未通过安全校验

	// SQL执行相关 5000-5999
	ErrExecutionTimeout ErrCode = 5001 // 查询执行超时
	ErrEngineFailure    ErrCode = 5002 // 存储引擎执行失败
	ErrPlanTraceFailed  ErrCode = 5003 // 查询计划获取失败

	// 评论数据库相关 6000-6999
	ErrStoreInit     ErrCode = 6001 // 数据库初始化失败
	ErrStoreSeed     ErrCode = 6002 // 示例数据写入失败
	ErrDatabaseQuery ErrCode = 6003 // 数据库查询失败
)

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch {
	case e >= 1001 && e <= 1999:
		// 通用错误
		switch e {
		case ErrInvalidParameter:
			return 400
		case ErrNotFound:
			return 404
		default:
			return 500
		}
	case e >= 2000 && e <= 2999:
		// 模型相关错误：对调用方而言是可重试的上游故障
		if e == ErrGenerationTimeout {
			return 504
		}
		return 502
	case e >= 3000 && e <= 3999:
		// 预检拦截属于策略拒绝，不是服务端故障
		return 422
	case e >= 4000 && e <= 4999:
		// 安全校验拒绝
		return 422
	case e >= 5000 && e <= 5999:
		// 执行相关错误
		if e == ErrExecutionTimeout {
			return 504
		}
		return 500
	default:
		return 500
	}
}
