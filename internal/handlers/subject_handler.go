package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SubjectHandler 科目管理处理器
type SubjectHandler struct {
	subjectService *services.SubjectService
}

// NewSubjectHandler 创建科目处理器实例
func NewSubjectHandler(subjectService *services.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// SubjectRequest 创建/更新科目请求
type SubjectRequest struct {
	Name string `json:"name" binding:"max=100"`
	Code string `json:"code" binding:"max=20"`
}

// Create 创建科目
func (h *SubjectHandler) Create(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	subject, err := h.subjectService.Create(tenantID, req.Name, req.Code)
	if err != nil {
		response.HandleError(c, err, "创建科目失败")
		return
	}
	response.SuccessWithMessage(c, "科目创建成功", subject)
}

// List 科目列表
func (h *SubjectHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	tenantID := middleware.GetCurrentTenantID(c)

	subjects, total, err := h.subjectService.List(tenantID, c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询科目列表失败")
		return
	}
	response.SuccessWithPage(c, subjects, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 科目详情
func (h *SubjectHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的科目ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	subject, err := h.subjectService.GetByID(tenantID, id)
	if err != nil {
		response.HandleError(c, err, "科目")
		return
	}
	response.Success(c, subject)
}

// Update 更新科目
func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的科目ID")
		return
	}
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	subject, err := h.subjectService.Update(tenantID, id, req.Name, req.Code)
	if err != nil {
		response.HandleError(c, err, "更新科目失败")
		return
	}
	response.Success(c, subject)
}

// Delete 删除科目（软删除）
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的科目ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.subjectService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除科目失败")
		return
	}
	response.SuccessWithMessage(c, "科目已删除", nil)
}
