package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// RoleHandler 角色管理处理器
type RoleHandler struct {
	roleService *services.RoleService
}

// NewRoleHandler 创建角色处理器实例
func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RoleRequest 创建/更新角色请求
type RoleRequest struct {
	Name        string   `json:"name" binding:"max=50"`
	Description string   `json:"description" binding:"max=255"`
	Permissions []string `json:"permissions"`
}

// Create 创建自定义角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	role, err := h.roleService.Create(tenantID, req.Name, req.Description, req.Permissions)
	if err != nil {
		response.HandleError(c, err, "创建角色失败")
		return
	}
	response.SuccessWithMessage(c, "角色创建成功", role)
}

// List 角色列表（首次访问时默认角色已随开通种子）
func (h *RoleHandler) List(c *gin.Context) {
	tenantID := middleware.GetCurrentTenantID(c)
	roles, err := h.roleService.GetByTenant(tenantID)
	if err != nil {
		response.ServerError(c, "查询角色列表失败")
		return
	}
	response.Success(c, roles)
}

// Get 角色详情
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的角色ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	role, err := h.roleService.GetByID(tenantID, id)
	if err != nil {
		response.HandleError(c, err, "角色")
		return
	}
	response.Success(c, role)
}

// Update 更新自定义角色
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的角色ID")
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	role, err := h.roleService.Update(tenantID, id, req.Name, req.Description, req.Permissions)
	if err != nil {
		response.HandleError(c, err, "更新角色失败")
		return
	}
	response.Success(c, role)
}

// Delete 删除自定义角色
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的角色ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.roleService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除角色失败")
		return
	}
	response.SuccessWithMessage(c, "角色已删除", nil)
}

// Permissions 全量租户权限码（前端编辑角色时用）
func (h *RoleHandler) Permissions(c *gin.Context) {
	response.Success(c, services.AllTenantPermissions())
}
