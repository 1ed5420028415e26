package errors

// AppError 业务错误
// 服务层统一返回带状态码的结构化错误，请求边界据此产出响应；
// 403错误额外携带所需权限与当前角色，便于前端提示（调用方本就知道自己的角色，不构成泄露）
type AppError struct {
	Code     int      `json:"code"`
	Message  string   `json:"message"`
	Required []string `json:"required,omitempty"` // 所需权限或角色
	Roles    []string `json:"roles,omitempty"`    // 调用方当前持有的角色
}

// Error 实现error接口
func (e *AppError) Error() string {
	return e.Message
}

// NewValidation 参数或业务规则校验失败 -> 400
func NewValidation(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message}
}

// NewUnauthorized 未认证/令牌无效/账号禁用 -> 401
func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewForbidden 已认证但权限不足 -> 403
func NewForbidden(message string, required, roles []string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Required: required, Roles: roles}
}

// NewNotFound 资源不存在或不属于当前租户/运营方 -> 404
func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewIntegrity 内部不变量被破坏 -> 500
func NewIntegrity(message string) *AppError {
	return &AppError{Code: CodeServerError, Message: message}
}
