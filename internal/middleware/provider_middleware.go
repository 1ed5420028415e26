package middleware

import (
	"smp/internal/database"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 运营方上下文键
const (
	ContextKeyProviderUser = "provider_user"
	ContextKeyProviderID   = "provider_id"
)

// RequireProviderLogin 运营方登录守卫
// 仅接受type=provider的令牌，租户用户令牌一律拒绝
func RequireProviderLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}

		if !claims.IsProvider() {
			response.Unauthorized(c, "令牌类型不适用于此接口")
			c.Abort()
			return
		}

		providerService := services.NewProviderService(database.GetDB())
		user, err := providerService.GetUserByID(claims.PrincipalID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				response.Unauthorized(c, "操作员不存在或已被删除")
			} else {
				response.ServerError(c, "加载操作员信息失败")
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			response.Unauthorized(c, "账号已被禁用")
			c.Abort()
			return
		}
		// 运营方被软删除时预加载结果为nil，同样拒绝
		if user.Provider == nil || !user.Provider.IsActive {
			response.Forbidden(c, "运营方已被停用")
			c.Abort()
			return
		}

		c.Set(ContextKeyProviderUser, user)
		c.Set(ContextKeyProviderID, user.ProviderID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireProviderPermission 运营方权限守卫（OR语义），须在RequireProviderLogin之后使用
func RequireProviderPermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentProviderUser(c)
		if user == nil {
			response.Unauthorized(c, "未登录")
			c.Abort()
			return
		}

		if !user.HasAnyPermission(codes...) {
			response.ForbiddenWithDetail(c, "权限不足", codes, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentProviderUser 从上下文获取当前运营方操作员
func GetCurrentProviderUser(c *gin.Context) *models.ProviderUser {
	value, exists := c.Get(ContextKeyProviderUser)
	if !exists {
		return nil
	}
	user, ok := value.(*models.ProviderUser)
	if !ok {
		return nil
	}
	return user
}

// GetCurrentProviderID 从上下文获取当前运营方ID
func GetCurrentProviderID(c *gin.Context) uint {
	value, exists := c.Get(ContextKeyProviderID)
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}
