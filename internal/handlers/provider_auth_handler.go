package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/config"
	"smp/pkg/jwt"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProviderAuthHandler 运营方认证处理器
type ProviderAuthHandler struct {
	providerService *services.ProviderService
}

// NewProviderAuthHandler 创建运营方认证处理器实例
func NewProviderAuthHandler(providerService *services.ProviderService) *ProviderAuthHandler {
	return &ProviderAuthHandler{providerService: providerService}
}

// Login 运营方操作员登录
func (h *ProviderAuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.providerService.Authenticate(req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err, "登录失败")
		return
	}

	token, err := jwt.GetJWTManager().GenerateProviderToken(user.ID, user.Email)
	if err != nil {
		response.ServerError(c, "生成令牌失败")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me 当前登录操作员信息
func (h *ProviderAuthHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentProviderUser(c)
	if user == nil {
		response.Unauthorized(c, "未登录")
		return
	}
	response.Success(c, gin.H{
		"user":        user,
		"permissions": user.Permissions,
	})
}

// BootstrapRequest 首次部署引导请求
type BootstrapRequest struct {
	ProviderName string `json:"provider_name" binding:"required,max=100"`
	FirstName    string `json:"first_name" binding:"required,max=50"`
	LastName     string `json:"last_name" binding:"required,max=50"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// Bootstrap 首次部署引导：创建默认运营方与首个全权限操作员
// 受x-setup-secret头保护，且系统已有操作员时直接拒绝
func (h *ProviderAuthHandler) Bootstrap(c *gin.Context) {
	cfg := config.GetConfig()
	if cfg.Provider.SetupSecret == "" {
		response.Forbidden(c, "引导接口未启用")
		return
	}
	if c.GetHeader("x-setup-secret") != cfg.Provider.SetupSecret {
		response.Forbidden(c, "引导密钥错误")
		return
	}

	var req BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.providerService.Bootstrap(req.ProviderName, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err, "初始化失败")
		return
	}
	response.SuccessWithMessage(c, "初始化成功", user)
}
