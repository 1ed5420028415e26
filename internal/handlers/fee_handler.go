package handlers

import (
	"time"

	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// FeeHandler 费用与缴费处理器
type FeeHandler struct {
	feeService *services.FeeService
}

// NewFeeHandler 创建费用处理器实例
func NewFeeHandler(feeService *services.FeeService) *FeeHandler {
	return &FeeHandler{feeService: feeService}
}

// CreateFeeRequest 创建费用请求
type CreateFeeRequest struct {
	StudentID   uint       `json:"student_id" binding:"required"`
	TermID      *uint      `json:"term_id"`
	Category    string     `json:"category" binding:"max=50"`
	Description string     `json:"description" binding:"max=255"`
	Amount      float64    `json:"amount" binding:"required"`
	DueDate     *time.Time `json:"due_date"`
}

// Create 创建费用账单
func (h *FeeHandler) Create(c *gin.Context) {
	var req CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	fee, err := h.feeService.Create(tenantID, req.StudentID, req.TermID, req.Category, req.Description, req.Amount, req.DueDate)
	if err != nil {
		response.HandleError(c, err, "创建费用失败")
		return
	}
	response.SuccessWithMessage(c, "费用创建成功", fee)
}

// List 费用列表
func (h *FeeHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	tenantID := middleware.GetCurrentTenantID(c)

	fees, total, err := h.feeService.List(tenantID, parseUintQuery(c, "student_id"), c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询费用列表失败")
		return
	}
	response.SuccessWithPage(c, fees, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 费用详情
func (h *FeeHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的费用ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	fee, err := h.feeService.GetByID(tenantID, id)
	if err != nil {
		response.HandleError(c, err, "费用")
		return
	}
	response.Success(c, fee)
}

// RecordPaymentRequest 记录缴费请求
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required"`
	Method    string  `json:"method" binding:"max=30"`
	Reference string  `json:"reference" binding:"max=64"`
}

// RecordPayment 记录缴费流水
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的费用ID")
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	payment, err := h.feeService.RecordPayment(user.TenantID, id, req.Amount, req.Method, req.Reference, user.ID)
	if err != nil {
		response.HandleError(c, err, "记录缴费失败")
		return
	}
	response.SuccessWithMessage(c, "缴费记录成功", payment)
}

// ListPayments 费用的缴费流水
func (h *FeeHandler) ListPayments(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的费用ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	payments, err := h.feeService.ListPayments(tenantID, id)
	if err != nil {
		response.HandleError(c, err, "费用")
		return
	}
	response.Success(c, payments)
}

// Delete 删除费用
func (h *FeeHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的费用ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.feeService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除费用失败")
		return
	}
	response.SuccessWithMessage(c, "费用已删除", nil)
}
