package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// ClassSubjectHandler 任课关联管理处理器
type ClassSubjectHandler struct {
	classSubjectService *services.ClassSubjectService
	subjectService      *services.SubjectService
}

// NewClassSubjectHandler 创建任课关联处理器实例
func NewClassSubjectHandler(classSubjectService *services.ClassSubjectService, subjectService *services.SubjectService) *ClassSubjectHandler {
	return &ClassSubjectHandler{
		classSubjectService: classSubjectService,
		subjectService:      subjectService,
	}
}

// AssignRequest 建立任课关联请求
type AssignRequest struct {
	ClassID   uint  `json:"class_id" binding:"required"`
	SubjectID uint  `json:"subject_id" binding:"required"`
	TeacherID *uint `json:"teacher_id"`
}

// Create 建立任课关联
func (h *ClassSubjectHandler) Create(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	cs, err := h.classSubjectService.Assign(tenantID, req.ClassID, req.SubjectID, req.TeacherID)
	if err != nil {
		response.HandleError(c, err, "建立任课关联失败")
		return
	}
	response.SuccessWithMessage(c, "任课关联建立成功", cs)
}

// List 任课关联列表
func (h *ClassSubjectHandler) List(c *gin.Context) {
	tenantID := middleware.GetCurrentTenantID(c)
	list, err := h.classSubjectService.List(tenantID,
		parseUintQuery(c, "class_id"), parseUintQuery(c, "subject_id"), parseUintQuery(c, "teacher_id"))
	if err != nil {
		response.ServerError(c, "查询任课关联失败")
		return
	}
	response.Success(c, list)
}

// UpdateTeacherRequest 换任课教师请求
type UpdateTeacherRequest struct {
	TeacherID *uint `json:"teacher_id"`
}

// UpdateTeacher 换任课教师
func (h *ClassSubjectHandler) UpdateTeacher(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的任课关联ID")
		return
	}
	var req UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	cs, err := h.classSubjectService.UpdateTeacher(tenantID, id, req.TeacherID)
	if err != nil {
		response.HandleError(c, err, "更新任课教师失败")
		return
	}
	response.Success(c, cs)
}

// Delete 解除任课关联
func (h *ClassSubjectHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的任课关联ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.classSubjectService.Remove(tenantID, id); err != nil {
		response.HandleError(c, err, "解除任课关联失败")
		return
	}
	response.SuccessWithMessage(c, "任课关联已解除", nil)
}

// ========== 教师本人视图 ==========

// MyAssignments 当前教师的任课关联
func (h *ClassSubjectHandler) MyAssignments(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	list, err := h.classSubjectService.List(user.TenantID, nil, nil, &user.ID)
	if err != nil {
		response.ServerError(c, "查询任课关联失败")
		return
	}
	response.Success(c, list)
}

// MySubjects 当前教师任课的科目
func (h *ClassSubjectHandler) MySubjects(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	subjects, err := h.subjectService.ListByTeacher(user.TenantID, user.ID, parseUintQuery(c, "class_id"))
	if err != nil {
		response.ServerError(c, "查询科目失败")
		return
	}
	response.Success(c, subjects)
}
