package response

import (
	stderrors "errors"

	"smp/pkg/errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HandleError 将服务层错误映射为HTTP响应
// 结构化业务错误按其状态码输出；gorm记录不存在 -> 404；唯一键冲突 -> 400；其余 -> 500
func HandleError(c *gin.Context, err error, fallback string) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if len(appErr.Required) > 0 {
			ForbiddenWithDetail(c, appErr.Message, appErr.Required, appErr.Roles)
			return
		}
		Error(c, appErr.Code, appErr.Message)
		return
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, fallback+"不存在")
		return
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		BadRequest(c, fallback+"已存在")
		return
	}

	ServerError(c, fallback+"操作失败")
}
