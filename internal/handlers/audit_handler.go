package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuditHandler 审计日志处理器
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler 创建审计日志处理器实例
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List 审计日志查询
func (h *AuditHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	tenantID := middleware.GetCurrentTenantID(c)

	logs, total, err := h.auditService.List(tenantID, parseUintQuery(c, "user_id"), c.Query("resource"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询审计日志失败")
		return
	}
	response.SuccessWithPage(c, logs, pagination.NewPageInfo(params.Page, params.PageSize, total))
}
