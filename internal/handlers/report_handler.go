package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReportHandler 成绩聚合查询处理器
type ReportHandler struct {
	calcService    *services.GradeCalcService
	scopeService   *services.ClassSubjectService
	userService    *services.UserService
	studentService *services.StudentService
}

// NewReportHandler 创建聚合查询处理器实例
func NewReportHandler(calcService *services.GradeCalcService, scopeService *services.ClassSubjectService, userService *services.UserService, studentService *services.StudentService) *ReportHandler {
	return &ReportHandler{
		calcService:    calcService,
		scopeService:   scopeService,
		userService:    userService,
		studentService: studentService,
	}
}

// publishedOnlyFor 管理员与教师看全量，其他角色只看已发布成绩
func (h *ReportHandler) publishedOnlyFor(c *gin.Context) (bool, error) {
	user := middleware.GetCurrentUser(c)
	isAdmin, err := h.userService.IsAdmin(user)
	if err != nil {
		return true, err
	}
	if isAdmin {
		return false, nil
	}
	isTeacher, err := h.userService.IsTeacher(user)
	if err != nil {
		return true, err
	}
	return !isTeacher, nil
}

// StudentSubjectAverage 学生单科加权平均（含类型明细）
func (h *ReportHandler) StudentSubjectAverage(c *gin.Context) {
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}
	subjectID, ok := parseUintParam(c, "subjectId")
	if !ok {
		response.BadRequest(c, "无效的科目ID")
		return
	}

	// 非管理员须任教该学生所在班级
	user := middleware.GetCurrentUser(c)
	if _, err := h.studentService.GetForUser(user, studentID); err != nil {
		response.HandleError(c, err, "学生")
		return
	}

	publishedOnly, err := h.publishedOnlyFor(c)
	if err != nil {
		response.ServerError(c, "加载角色信息失败")
		return
	}

	result, err := h.calcService.StudentSubjectAverage(user.TenantID, studentID, subjectID, parseUintQuery(c, "term_id"), publishedOnly)
	if err != nil {
		response.HandleError(c, err, "计算学生单科平均失败")
		return
	}
	response.Success(c, result)
}

// StudentSummary 学生跨科目总览（逐科平均、GPA、分布、趋势）
func (h *ReportHandler) StudentSummary(c *gin.Context) {
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}

	// 非管理员须任教该学生所在班级
	user := middleware.GetCurrentUser(c)
	if _, err := h.studentService.GetForUser(user, studentID); err != nil {
		response.HandleError(c, err, "学生")
		return
	}

	publishedOnly, err := h.publishedOnlyFor(c)
	if err != nil {
		response.ServerError(c, "加载角色信息失败")
		return
	}

	summary, err := h.calcService.StudentSummaryReport(user.TenantID, studentID, parseUintQuery(c, "term_id"), publishedOnly)
	if err != nil {
		response.HandleError(c, err, "生成学生成绩总览失败")
		return
	}
	response.Success(c, summary)
}

// ClassSubjectStats 班级单科统计（管理口径，含未发布成绩）
func (h *ReportHandler) ClassSubjectStats(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		response.BadRequest(c, "无效的班级ID")
		return
	}
	subjectID, ok := parseUintParam(c, "subjectId")
	if !ok {
		response.BadRequest(c, "无效的科目ID")
		return
	}

	user := middleware.GetCurrentUser(c)
	if err := h.scopeService.RequireAssignment(user, classID, subjectID); err != nil {
		response.HandleError(c, err, "权限校验失败")
		return
	}

	stats, err := h.calcService.ClassSubjectAverage(user.TenantID, classID, subjectID, parseUintQuery(c, "term_id"))
	if err != nil {
		response.HandleError(c, err, "计算班级统计失败")
		return
	}
	response.Success(c, stats)
}
