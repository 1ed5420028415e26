package middleware

import (
	"strings"

	"smp/internal/database"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/errors"
	"smp/pkg/jwt"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 上下文键
const (
	ContextKeyUser     = "user"
	ContextKeyUserID   = "user_id"
	ContextKeyTenantID = "tenant_id"
	ContextKeyClaims   = "claims"
)

// RequireLogin 租户用户登录守卫
// 解析Bearer令牌、拒绝运营方令牌、加载用户及租户并做租户状态门禁，
// 通过后将用户与租户ID写入上下文，下游一律从上下文取租户ID
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}

		// 运营方令牌不能访问租户接口
		if claims.IsProvider() {
			response.Unauthorized(c, "令牌类型不适用于此接口")
			c.Abort()
			return
		}

		userService := services.NewUserService(database.GetDB())
		user, err := userService.GetByID(claims.PrincipalID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				response.Unauthorized(c, "用户不存在或已被删除")
			} else {
				response.ServerError(c, "加载用户信息失败")
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			response.Unauthorized(c, "账号已被禁用")
			c.Abort()
			return
		}
		if user.TenantID != claims.TenantID {
			// 令牌与用户归属不一致，按无效令牌处理
			response.Unauthorized(c, "令牌无效")
			c.Abort()
			return
		}

		if user.Tenant == nil {
			response.Unauthorized(c, "租户不存在或已被删除")
			c.Abort()
			return
		}
		switch user.Tenant.Status {
		case models.TenantStatusActive:
		case models.TenantStatusSuspended:
			response.Forbidden(c, "租户已被暂停服务")
			c.Abort()
			return
		default:
			response.Unauthorized(c, "租户未激活")
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyTenantID, user.TenantID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequirePermission 权限守卫（OR语义），须在RequireLogin之后使用
func RequirePermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "未登录")
			c.Abort()
			return
		}

		userService := services.NewUserService(database.GetDB())
		if err := userService.RequirePermission(user, codes...); err != nil {
			handleGuardError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole 角色守卫（OR语义，名称不区分大小写），须在RequireLogin之后使用
func RequireRole(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "未登录")
			c.Abort()
			return
		}

		userService := services.NewUserService(database.GetDB())
		if err := userService.RequireRole(user, names...); err != nil {
			handleGuardError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func handleGuardError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.CodeForbidden {
		response.ForbiddenWithDetail(c, appErr.Message, appErr.Required, appErr.Roles)
		return
	}
	response.HandleError(c, err, "权限校验失败")
}

// parseBearer 解析并验证Authorization头中的Bearer令牌
func parseBearer(c *gin.Context) (*jwt.JWTClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "缺少认证令牌")
		c.Abort()
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		response.Unauthorized(c, "认证令牌格式错误")
		c.Abort()
		return nil, false
	}

	claims, err := jwt.GetJWTManager().VerifyToken(parts[1])
	if err != nil {
		response.Unauthorized(c, "令牌无效或已过期")
		c.Abort()
		return nil, false
	}
	return claims, true
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetCurrentTenantID 从上下文获取当前租户ID
func GetCurrentTenantID(c *gin.Context) uint {
	value, exists := c.Get(ContextKeyTenantID)
	if !exists {
		return 0
	}
	tenantID, ok := value.(uint)
	if !ok {
		return 0
	}
	return tenantID
}
