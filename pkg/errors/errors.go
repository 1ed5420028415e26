package errors

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
// 约定：401 令牌缺失/无效/过期或账号被禁用；403 已认证但权限/角色/范围不足；
// 404 资源不存在或不属于当前租户/运营方；400 参数或业务规则校验失败；500 内部错误
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)
