package handlers

import (
	"time"

	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TermHandler 学期管理处理器
type TermHandler struct {
	termService *services.TermService
}

// NewTermHandler 创建学期处理器实例
func NewTermHandler(termService *services.TermService) *TermHandler {
	return &TermHandler{termService: termService}
}

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Name         string    `json:"name" binding:"required,max=100"`
	AcademicYear string    `json:"academic_year" binding:"max=20"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
}

// Create 创建学期
func (h *TermHandler) Create(c *gin.Context) {
	var req CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	term, err := h.termService.Create(tenantID, req.Name, req.AcademicYear, req.StartDate, req.EndDate)
	if err != nil {
		response.HandleError(c, err, "创建学期失败")
		return
	}
	response.SuccessWithMessage(c, "学期创建成功", term)
}

// List 学期列表
func (h *TermHandler) List(c *gin.Context) {
	tenantID := middleware.GetCurrentTenantID(c)
	terms, err := h.termService.List(tenantID)
	if err != nil {
		response.ServerError(c, "查询学期列表失败")
		return
	}
	response.Success(c, terms)
}

// Current 当前学期
func (h *TermHandler) Current(c *gin.Context) {
	tenantID := middleware.GetCurrentTenantID(c)
	term, err := h.termService.GetCurrent(tenantID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			response.NotFound(c, "尚未设置当前学期")
			return
		}
		response.ServerError(c, "查询当前学期失败")
		return
	}
	response.Success(c, term)
}

// UpdateTermRequest 更新学期请求
type UpdateTermRequest struct {
	Name         string     `json:"name" binding:"max=100"`
	AcademicYear string     `json:"academic_year" binding:"max=20"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// Update 更新学期
func (h *TermHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学期ID")
		return
	}
	var req UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	term, err := h.termService.Update(tenantID, id, req.Name, req.AcademicYear, req.StartDate, req.EndDate)
	if err != nil {
		response.HandleError(c, err, "更新学期失败")
		return
	}
	response.Success(c, term)
}

// SetCurrent 设为当前学期
func (h *TermHandler) SetCurrent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学期ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	term, err := h.termService.SetCurrent(tenantID, id)
	if err != nil {
		response.HandleError(c, err, "设置当前学期失败")
		return
	}
	response.Success(c, term)
}

// Delete 删除学期
func (h *TermHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学期ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.termService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除学期失败")
		return
	}
	response.SuccessWithMessage(c, "学期已删除", nil)
}
