package handlers

import (
	"time"

	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler 考勤管理处理器
type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceHandler 创建考勤处理器实例
func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// AttendanceEntryRequest 单条点名记录
type AttendanceEntryRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Remark    string `json:"remark" binding:"max=255"`
}

// RecordBatchRequest 整班点名请求
type RecordBatchRequest struct {
	ClassID uint                     `json:"class_id" binding:"required"`
	Date    time.Time                `json:"date" binding:"required"`
	Entries []AttendanceEntryRequest `json:"entries" binding:"required"`
}

// RecordBatch 整班点名（同日重复点名覆盖）
func (h *AttendanceHandler) RecordBatch(c *gin.Context) {
	var req RecordBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	entries := make([]services.AttendanceEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, services.AttendanceEntry{
			StudentID: e.StudentID,
			Status:    e.Status,
			Remark:    e.Remark,
		})
	}

	user := middleware.GetCurrentUser(c)
	records, err := h.attendanceService.RecordBatch(user, req.ClassID, req.Date, entries)
	if err != nil {
		response.HandleError(c, err, "点名失败")
		return
	}
	response.SuccessWithMessage(c, "点名成功", records)
}

// List 考勤查询
func (h *AttendanceHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	user := middleware.GetCurrentUser(c)

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			to = &t
		}
	}

	records, total, err := h.attendanceService.ListForUser(user,
		parseUintQuery(c, "class_id"), parseUintQuery(c, "student_id"), from, to, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err, "查询考勤失败")
		return
	}
	response.SuccessWithPage(c, records, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// StudentSummary 学生考勤汇总
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		response.BadRequest(c, "无效的学生ID")
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			to = &t
		}
	}

	tenantID := middleware.GetCurrentTenantID(c)
	summary, err := h.attendanceService.StudentSummary(tenantID, studentID, from, to)
	if err != nil {
		response.HandleError(c, err, "统计考勤失败")
		return
	}
	response.Success(c, summary)
}
