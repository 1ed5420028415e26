package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// BehaviorHandler 行为记录处理器
type BehaviorHandler struct {
	behaviorService *services.BehaviorService
}

// NewBehaviorHandler 创建行为记录处理器实例
func NewBehaviorHandler(behaviorService *services.BehaviorService) *BehaviorHandler {
	return &BehaviorHandler{behaviorService: behaviorService}
}

// CreateBehaviorRequest 录入行为记录请求
type CreateBehaviorRequest struct {
	StudentID   uint   `json:"student_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Points      int    `json:"points"`
	Description string `json:"description" binding:"required,max=500"`
}

// Create 录入行为记录
func (h *BehaviorHandler) Create(c *gin.Context) {
	var req CreateBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	record, err := h.behaviorService.Create(user, req.StudentID, req.Type, req.Points, req.Description)
	if err != nil {
		response.HandleError(c, err, "录入行为记录失败")
		return
	}
	response.SuccessWithMessage(c, "行为记录成功", record)
}

// ListByStudent 学生行为记录列表
func (h *BehaviorHandler) ListByStudent(c *gin.Context) {
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}
	params := pagination.ParsePageParams(c)
	tenantID := middleware.GetCurrentTenantID(c)

	records, total, err := h.behaviorService.ListByStudent(tenantID, studentID, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询行为记录失败")
		return
	}

	balance, err := h.behaviorService.PointsBalance(tenantID, studentID)
	if err != nil {
		response.ServerError(c, "统计行为积分失败")
		return
	}

	response.SuccessWithPage(c, gin.H{
		"records": records,
		"balance": balance,
	}, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Delete 删除行为记录
func (h *BehaviorHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的行为记录ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.behaviorService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除行为记录失败")
		return
	}
	response.SuccessWithMessage(c, "行为记录已删除", nil)
}
