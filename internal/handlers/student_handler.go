package handlers

import (
	"time"

	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// StudentHandler 学生管理处理器
type StudentHandler struct {
	studentService *services.StudentService
}

// NewStudentHandler 创建学生处理器实例
func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// StudentRequest 创建/更新学生请求
type StudentRequest struct {
	FirstName       string     `json:"first_name" binding:"max=50"`
	LastName        string     `json:"last_name" binding:"max=50"`
	AdmissionNumber string     `json:"admission_number" binding:"max=50"`
	ClassID         *uint      `json:"class_id"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `json:"gender" binding:"max=10"`
	GuardianName    string     `json:"guardian_name" binding:"max=100"`
	GuardianPhone   string     `json:"guardian_phone" binding:"max=20"`
}

func (r *StudentRequest) toInput() *services.StudentInput {
	return &services.StudentInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		AdmissionNumber: r.AdmissionNumber,
		ClassID:         r.ClassID,
		DateOfBirth:     r.DateOfBirth,
		Gender:          r.Gender,
		GuardianName:    r.GuardianName,
		GuardianPhone:   r.GuardianPhone,
	}
}

// Create 创建学生
func (h *StudentHandler) Create(c *gin.Context) {
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	student, err := h.studentService.Create(tenantID, req.toInput())
	if err != nil {
		response.HandleError(c, err, "创建学生失败")
		return
	}
	response.SuccessWithMessage(c, "学生创建成功", student)
}

// List 学生列表（教师自动收敛到任课班级）
func (h *StudentHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	user := middleware.GetCurrentUser(c)

	students, total, err := h.studentService.ListForUser(user, parseUintQuery(c, "class_id"), c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err, "查询学生列表失败")
		return
	}
	response.SuccessWithPage(c, students, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 学生详情
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}

	user := middleware.GetCurrentUser(c)
	student, err := h.studentService.GetForUser(user, id)
	if err != nil {
		response.HandleError(c, err, "学生")
		return
	}
	response.Success(c, student)
}

// Update 更新学生
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	student, err := h.studentService.Update(tenantID, id, req.toInput())
	if err != nil {
		response.HandleError(c, err, "更新学生失败")
		return
	}
	response.Success(c, student)
}

// UpdateStatus 启用/停用学生
func (h *StudentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	student, err := h.studentService.SetActive(tenantID, id, *req.IsActive)
	if err != nil {
		response.HandleError(c, err, "学生")
		return
	}
	response.Success(c, student)
}

// Delete 删除学生（软删除）
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	if err := h.studentService.Delete(tenantID, id); err != nil {
		response.HandleError(c, err, "删除学生失败")
		return
	}
	response.SuccessWithMessage(c, "学生已删除", nil)
}
