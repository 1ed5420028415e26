package handlers

import (
	"smp/internal/middleware"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// GradingScaleHandler 评分等级表处理器
type GradingScaleHandler struct {
	scaleService *services.GradingScaleService
}

// NewGradingScaleHandler 创建评分等级表处理器实例
func NewGradingScaleHandler(scaleService *services.GradingScaleService) *GradingScaleHandler {
	return &GradingScaleHandler{scaleService: scaleService}
}

// Get 租户等级表（首次访问时自动种子默认表）
func (h *GradingScaleHandler) Get(c *gin.Context) {
	tenantID := middleware.GetCurrentTenantID(c)
	scale, err := h.scaleService.GetOrSeed(tenantID)
	if err != nil {
		response.ServerError(c, "查询评分等级表失败")
		return
	}
	response.Success(c, scale)
}

// UpdateScaleRequest 替换等级表请求
type UpdateScaleRequest struct {
	Name  string             `json:"name" binding:"max=100"`
	Bands []models.ScaleBand `json:"bands" binding:"required"`
}

// Update 替换租户等级表
func (h *GradingScaleHandler) Update(c *gin.Context) {
	var req UpdateScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	scale, err := h.scaleService.Update(tenantID, req.Name, req.Bands)
	if err != nil {
		response.HandleError(c, err, "更新评分等级表失败")
		return
	}
	response.Success(c, scale)
}
