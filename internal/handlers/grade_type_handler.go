package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// GradeTypeHandler 成绩类型管理处理器
type GradeTypeHandler struct {
	gradeTypeService *services.GradeTypeService
}

// NewGradeTypeHandler 创建成绩类型处理器实例
func NewGradeTypeHandler(gradeTypeService *services.GradeTypeService) *GradeTypeHandler {
	return &GradeTypeHandler{gradeTypeService: gradeTypeService}
}

// List 成绩类型列表（首次访问时自动种子默认类型）
func (h *GradeTypeHandler) List(c *gin.Context) {
	tenantID := middleware.GetCurrentTenantID(c)
	types, err := h.gradeTypeService.ListOrSeed(tenantID)
	if err != nil {
		response.ServerError(c, "查询成绩类型失败")
		return
	}
	response.Success(c, types)
}

// GradeTypeRequest 创建成绩类型请求
type GradeTypeRequest struct {
	Name     string   `json:"name" binding:"required,max=50"`
	Weight   *float64 `json:"weight"`
	MaxScore float64  `json:"max_score"`
}

// Create 创建成绩类型
func (h *GradeTypeHandler) Create(c *gin.Context) {
	var req GradeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	gt, err := h.gradeTypeService.Create(tenantID, req.Name, req.Weight, req.MaxScore)
	if err != nil {
		response.HandleError(c, err, "创建成绩类型失败")
		return
	}
	response.SuccessWithMessage(c, "成绩类型创建成功", gt)
}

// UpdateGradeTypeRequest 更新成绩类型请求
type UpdateGradeTypeRequest struct {
	Name     string   `json:"name" binding:"max=50"`
	Weight   *float64 `json:"weight"`
	MaxScore *float64 `json:"max_score"`
	IsActive *bool    `json:"is_active"`
}

// Update 更新成绩类型
func (h *GradeTypeHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的成绩类型ID")
		return
	}
	var req UpdateGradeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	gt, err := h.gradeTypeService.Update(tenantID, id, req.Name, req.Weight, req.MaxScore, req.IsActive)
	if err != nil {
		response.HandleError(c, err, "更新成绩类型失败")
		return
	}
	response.Success(c, gt)
}

// Delete 删除成绩类型
func (h *GradeTypeHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的成绩类型ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.gradeTypeService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除成绩类型失败")
		return
	}
	response.SuccessWithMessage(c, "成绩类型已删除", nil)
}
