package handlers

import (
	"smp/internal/middleware"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/jwt"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler 租户用户认证处理器
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 租户用户登录
// 邮箱全局唯一，无需携带租户标识，租户归属由用户记录决定
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.GetByEmail(req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// 不区分"邮箱不存在"与"密码错误"
			response.Unauthorized(c, "邮箱或密码错误")
			return
		}
		response.ServerError(c, "登录失败")
		return
	}

	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "邮箱或密码错误")
		return
	}
	if !user.IsActive {
		response.Unauthorized(c, "账号已被禁用")
		return
	}
	// 所属租户被停用/删除时同样拒绝发放令牌
	if user.Tenant == nil || user.Tenant.Status != models.TenantStatusActive {
		response.Unauthorized(c, "所属租户不可用")
		return
	}

	token, err := jwt.GetJWTManager().GenerateUserToken(user.ID, user.TenantID, user.Email)
	if err != nil {
		response.ServerError(c, "生成令牌失败")
		return
	}

	if err := h.userService.UpdateLastLogin(user.ID); err != nil {
		// 登录时间仅为展示信息，失败不阻断
	}

	response.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me 当前登录用户信息（含角色与有效权限）
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "未登录")
		return
	}

	permissions, err := h.userService.EffectivePermissions(user)
	if err != nil {
		response.ServerError(c, "加载权限失败")
		return
	}
	codes := make([]string, 0, len(permissions))
	for code := range permissions {
		codes = append(codes, code)
	}

	response.Success(c, gin.H{
		"user":        user,
		"roles":       user.RoleNames(),
		"permissions": codes,
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改本人密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "未登录")
		return
	}
	if !user.CheckPassword(req.OldPassword) {
		response.Unauthorized(c, "原密码错误")
		return
	}

	if err := h.userService.ResetPassword(user.TenantID, user.ID, req.NewPassword); err != nil {
		response.HandleError(c, err, "修改密码失败")
		return
	}
	response.SuccessWithMessage(c, "密码修改成功", nil)
}
