package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// TermReportHandler 学期报告处理器
type TermReportHandler struct {
	termReportService *services.TermReportService
}

// NewTermReportHandler 创建学期报告处理器实例
func NewTermReportHandler(termReportService *services.TermReportService) *TermReportHandler {
	return &TermReportHandler{termReportService: termReportService}
}

// GenerateRequest 生成学期报告请求
type GenerateRequest struct {
	ClassID uint `json:"class_id" binding:"required"`
	TermID  uint `json:"term_id" binding:"required"`
}

// Generate 为整个班级生成学期报告（重复生成覆盖）
func (h *TermReportHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	reports, err := h.termReportService.GenerateForClass(user, req.ClassID, req.TermID)
	if err != nil {
		response.HandleError(c, err, "生成学期报告失败")
		return
	}
	response.SuccessWithMessage(c, "学期报告生成成功", reports)
}

// ListByClass 班级学期报告（按排名）
func (h *TermReportHandler) ListByClass(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		response.BadRequest(c, "无效的班级ID")
		return
	}
	termID, ok := parseUintParam(c, "termId")
	if !ok {
		response.BadRequest(c, "无效的学期ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	reports, err := h.termReportService.ListByClass(tenantID, classID, termID)
	if err != nil {
		response.ServerError(c, "查询学期报告失败")
		return
	}
	response.Success(c, reports)
}

// GetByStudent 学生的学期报告
func (h *TermReportHandler) GetByStudent(c *gin.Context) {
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}
	termID, ok := parseUintParam(c, "termId")
	if !ok {
		response.BadRequest(c, "无效的学期ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	report, err := h.termReportService.GetByStudent(tenantID, studentID, termID)
	if err != nil {
		response.HandleError(c, err, "学期报告")
		return
	}
	response.Success(c, report)
}

// UpdateRemarksRequest 补写评语请求
type UpdateRemarksRequest struct {
	Remarks string `json:"remarks" binding:"required,max=1000"`
}

// UpdateRemarks 补写班主任评语
func (h *TermReportHandler) UpdateRemarks(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的报告ID")
		return
	}
	var req UpdateRemarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	report, err := h.termReportService.UpdateRemarks(tenantID, id, req.Remarks)
	if err != nil {
		response.HandleError(c, err, "更新评语失败")
		return
	}
	response.Success(c, report)
}
