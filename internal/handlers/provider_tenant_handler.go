package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProviderTenantHandler 运营方租户管理处理器
// 所有操作先按provider_id重新确认租户归属，跨运营方一律404
type ProviderTenantHandler struct {
	tenantService *services.TenantService
	userService   *services.UserService
	roleService   *services.RoleService
}

// NewProviderTenantHandler 创建运营方租户管理处理器实例
func NewProviderTenantHandler(tenantService *services.TenantService, userService *services.UserService, roleService *services.RoleService) *ProviderTenantHandler {
	return &ProviderTenantHandler{
		tenantService: tenantService,
		userService:   userService,
		roleService:   roleService,
	}
}

// requireTenant 确认租户属于当前运营方，失败时已写响应
func (h *ProviderTenantHandler) requireTenant(c *gin.Context) (uint, bool) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return 0, false
	}
	providerID := middleware.GetCurrentProviderID(c)
	if _, err := h.tenantService.GetForProvider(providerID, tenantID); err != nil {
		response.HandleError(c, err, "租户")
		return 0, false
	}
	return tenantID, true
}

// ProvisionTenantRequest 开通租户请求
type ProvisionTenantRequest struct {
	Name             string `json:"name" binding:"required,max=100"`
	Slug             string `json:"slug" binding:"max=50"`
	SubscriptionPlan string `json:"subscription_plan" binding:"max=20"`
	AdminFirstName   string `json:"admin_first_name" binding:"required,max=50"`
	AdminLastName    string `json:"admin_last_name" binding:"required,max=50"`
	AdminEmail       string `json:"admin_email" binding:"required,email"`
	AdminPassword    string `json:"admin_password"`
}

// Create 开通租户（租户+默认角色+首个管理员）
func (h *ProviderTenantHandler) Create(c *gin.Context) {
	var req ProvisionTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	providerID := middleware.GetCurrentProviderID(c)
	result, err := h.tenantService.ProvisionWithAdmin(providerID, &services.ProvisionInput{
		Name:             req.Name,
		Slug:             req.Slug,
		SubscriptionPlan: req.SubscriptionPlan,
		AdminFirstName:   req.AdminFirstName,
		AdminLastName:    req.AdminLastName,
		AdminEmail:       req.AdminEmail,
		AdminPassword:    req.AdminPassword,
	})
	if err != nil {
		response.HandleError(c, err, "开通租户失败")
		return
	}
	response.SuccessWithMessage(c, "租户开通成功", result)
}

// List 运营方名下租户列表
func (h *ProviderTenantHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	providerID := middleware.GetCurrentProviderID(c)

	tenants, total, err := h.tenantService.GetWithFiltersAndPage(
		providerID, c.Query("status"), c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询租户列表失败")
		return
	}
	response.SuccessWithPage(c, tenants, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 租户详情
func (h *ProviderTenantHandler) Get(c *gin.Context) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return
	}
	providerID := middleware.GetCurrentProviderID(c)

	tenant, err := h.tenantService.GetForProvider(providerID, tenantID)
	if err != nil {
		response.HandleError(c, err, "租户")
		return
	}
	response.Success(c, tenant)
}

// UpdateTenantRequest 更新租户请求
type UpdateTenantRequest struct {
	Name             string                 `json:"name" binding:"max=100"`
	SubscriptionPlan string                 `json:"subscription_plan" binding:"max=20"`
	Settings         map[string]interface{} `json:"settings"`
}

// Update 更新租户
func (h *ProviderTenantHandler) Update(c *gin.Context) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return
	}
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	providerID := middleware.GetCurrentProviderID(c)
	tenant, err := h.tenantService.Update(providerID, tenantID, req.Name, req.SubscriptionPlan, req.Settings)
	if err != nil {
		response.HandleError(c, err, "更新租户失败")
		return
	}
	response.Success(c, tenant)
}

// UpdateStatusRequest 更新状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 更新租户状态
func (h *ProviderTenantHandler) UpdateStatus(c *gin.Context) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	providerID := middleware.GetCurrentProviderID(c)
	tenant, err := h.tenantService.UpdateStatus(providerID, tenantID, req.Status)
	if err != nil {
		response.HandleError(c, err, "更新租户状态失败")
		return
	}
	response.Success(c, tenant)
}

// Delete 删除租户
func (h *ProviderTenantHandler) Delete(c *gin.Context) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return
	}
	providerID := middleware.GetCurrentProviderID(c)

	if err := h.tenantService.Delete(providerID, tenantID); err != nil {
		response.HandleError(c, err, "删除租户失败")
		return
	}
	response.SuccessWithMessage(c, "租户已删除", nil)
}

// Metrics 租户用量统计
func (h *ProviderTenantHandler) Metrics(c *gin.Context) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return
	}
	providerID := middleware.GetCurrentProviderID(c)

	metrics, err := h.tenantService.GetMetrics(providerID, tenantID)
	if err != nil {
		response.HandleError(c, err, "租户")
		return
	}
	response.Success(c, metrics)
}

// ========== 租户用户管理 ==========

// ListUsers 租户用户列表
func (h *ProviderTenantHandler) ListUsers(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	params := pagination.ParsePageParams(c)

	users, total, err := h.userService.GetWithFiltersAndPage(tenantID, c.Query("keyword"), nil, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询用户列表失败")
		return
	}
	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// CreateTenantUserRequest 运营方侧创建租户用户请求
type CreateTenantUserRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=50"`
	LastName  string  `json:"last_name" binding:"required,max=50"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	Phone     *string `json:"phone"`
	RoleIDs   []uint  `json:"role_ids"`
}

// CreateUser 运营方侧创建租户用户
func (h *ProviderTenantHandler) CreateUser(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	var req CreateTenantUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.Create(tenantID, req.FirstName, req.LastName, req.Email, req.Password, req.Phone, req.RoleIDs)
	if err != nil {
		response.HandleError(c, err, "创建用户失败")
		return
	}
	response.SuccessWithMessage(c, "用户创建成功", user)
}

// UpdateUserStatusRequest 用户启停请求
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateUserStatus 启用/停用租户用户
func (h *ProviderTenantHandler) UpdateUserStatus(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.SetActive(tenantID, userID, *req.IsActive)
	if err != nil {
		response.HandleError(c, err, "用户")
		return
	}
	response.Success(c, user)
}

// ResetUserPasswordRequest 重置密码请求
type ResetUserPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetUserPassword 运营方侧重置租户用户密码
func (h *ProviderTenantHandler) ResetUserPassword(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	var req ResetUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.userService.ResetPassword(tenantID, userID, req.NewPassword); err != nil {
		response.HandleError(c, err, "重置密码失败")
		return
	}
	response.SuccessWithMessage(c, "密码重置成功", nil)
}

// ResetAdminPassword 重置租户开通时创建的主管理员密码
func (h *ProviderTenantHandler) ResetAdminPassword(c *gin.Context) {
	tenantID, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的租户ID")
		return
	}
	providerID := middleware.GetCurrentProviderID(c)
	tenant, err := h.tenantService.GetForProvider(providerID, tenantID)
	if err != nil {
		response.HandleError(c, err, "租户")
		return
	}
	if tenant.PrimaryAdminUserID == nil {
		response.BadRequest(c, "该租户没有主管理员")
		return
	}

	var req ResetUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.userService.ResetPassword(tenantID, *tenant.PrimaryAdminUserID, req.NewPassword); err != nil {
		response.HandleError(c, err, "重置密码失败")
		return
	}
	response.SuccessWithMessage(c, "密码重置成功", nil)
}

// ========== 租户角色管理 ==========

// ListRoles 租户角色列表
func (h *ProviderTenantHandler) ListRoles(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	roles, err := h.roleService.GetByTenant(tenantID)
	if err != nil {
		response.ServerError(c, "查询角色列表失败")
		return
	}
	response.Success(c, roles)
}

// UpdateRolePermissionsRequest 编辑角色权限请求
type UpdateRolePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// UpdateRolePermissions 编辑租户自定义角色的权限集（默认角色不可改）
func (h *ProviderTenantHandler) UpdateRolePermissions(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	roleID, ok := parseUintParam(c, "roleId")
	if !ok {
		response.BadRequest(c, "无效的角色ID")
		return
	}
	var req UpdateRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.roleService.Update(tenantID, roleID, "", "", req.Permissions)
	if err != nil {
		response.HandleError(c, err, "更新角色权限失败")
		return
	}
	response.Success(c, role)
}
