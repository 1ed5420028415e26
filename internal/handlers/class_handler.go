package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// ClassHandler 班级管理处理器
type ClassHandler struct {
	classService *services.ClassService
}

// NewClassHandler 创建班级处理器实例
func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ClassRequest 创建/更新班级请求
type ClassRequest struct {
	Name      string `json:"name" binding:"max=100"`
	Level     string `json:"level" binding:"max=50"`
	Section   string `json:"section" binding:"max=20"`
	TeacherID *uint  `json:"teacher_id"`
}

// Create 创建班级
func (h *ClassHandler) Create(c *gin.Context) {
	var req ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	class, err := h.classService.Create(tenantID, req.Name, req.Level, req.Section, req.TeacherID)
	if err != nil {
		response.HandleError(c, err, "创建班级失败")
		return
	}
	response.SuccessWithMessage(c, "班级创建成功", class)
}

// List 班级列表（教师只看到任课班级）
func (h *ClassHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	user := middleware.GetCurrentUser(c)

	classes, total, err := h.classService.ListForUser(user, c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err, "查询班级列表失败")
		return
	}
	response.SuccessWithPage(c, classes, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 班级详情
func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的班级ID")
		return
	}

	class, err := h.classService.GetForUser(middleware.GetCurrentUser(c), id)
	if err != nil {
		response.HandleError(c, err, "班级")
		return
	}
	response.Success(c, class)
}

// Students 班级学生名单
func (h *ClassHandler) Students(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的班级ID")
		return
	}

	students, err := h.classService.GetStudentsForUser(middleware.GetCurrentUser(c), id)
	if err != nil {
		response.HandleError(c, err, "班级")
		return
	}
	response.Success(c, students)
}

// Update 更新班级
func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的班级ID")
		return
	}
	var req ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	class, err := h.classService.Update(tenantID, id, req.Name, req.Level, req.Section, req.TeacherID)
	if err != nil {
		response.HandleError(c, err, "更新班级失败")
		return
	}
	response.Success(c, class)
}

// Delete 删除班级（软删除）
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的班级ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.classService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除班级失败")
		return
	}
	response.SuccessWithMessage(c, "班级已删除", nil)
}
