package handlers

import (
	"strconv"

	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 租户用户管理处理器
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=50"`
	LastName  string  `json:"last_name" binding:"required,max=50"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	Phone     *string `json:"phone"`
	RoleIDs   []uint  `json:"role_ids"`
}

// Create 创建用户（租户ID一律取自令牌，请求体不接受租户标识）
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	user, err := h.userService.Create(tenantID, req.FirstName, req.LastName, req.Email, req.Password, req.Phone, req.RoleIDs)
	if err != nil {
		response.HandleError(c, err, "创建用户失败")
		return
	}
	response.SuccessWithMessage(c, "用户创建成功", user)
}

// List 用户列表
func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	tenantID := middleware.GetCurrentTenantID(c)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			isActive = &value
		}
	}

	users, total, err := h.userService.GetWithFiltersAndPage(tenantID, c.Query("keyword"), isActive, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询用户列表失败")
		return
	}
	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 用户详情
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	user, err := h.userService.GetByIDInTenant(tenantID, id)
	if err != nil {
		response.HandleError(c, err, "用户")
		return
	}
	response.Success(c, user)
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	FirstName string  `json:"first_name" binding:"max=50"`
	LastName  string  `json:"last_name" binding:"max=50"`
	Phone     *string `json:"phone"`
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	user, err := h.userService.Update(tenantID, id, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		response.HandleError(c, err, "更新用户失败")
		return
	}
	response.Success(c, user)
}

// UpdateStatus 启用/停用用户
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	user, err := h.userService.SetActive(tenantID, id, *req.IsActive)
	if err != nil {
		response.HandleError(c, err, "用户")
		return
	}
	response.Success(c, user)
}

// AssignRolesRequest 指派角色请求
type AssignRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required"`
}

// AssignRoles 指派角色（整组替换）
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	current := middleware.GetCurrentUser(c)
	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.userService.AssignRoles(tenantID, id, req.RoleIDs, current.ID); err != nil {
		response.HandleError(c, err, "指派角色失败")
		return
	}
	response.SuccessWithMessage(c, "角色指派成功", nil)
}

// Delete 删除用户（软删除）
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	current := middleware.GetCurrentUser(c)
	if current != nil && current.ID == id {
		response.BadRequest(c, "不能删除自己的账号")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.userService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除用户失败")
		return
	}
	response.SuccessWithMessage(c, "用户已删除", nil)
}
