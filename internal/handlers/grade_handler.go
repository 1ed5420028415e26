package handlers

import (
	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/pagination"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// GradeHandler 成绩管理处理器
type GradeHandler struct {
	gradeService *services.GradeService
}

// NewGradeHandler 创建成绩处理器实例
func NewGradeHandler(gradeService *services.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

// CreateGradeRequest 录入成绩请求
type CreateGradeRequest struct {
	StudentID   uint    `json:"student_id" binding:"required"`
	ClassID     uint    `json:"class_id" binding:"required"`
	SubjectID   uint    `json:"subject_id" binding:"required"`
	GradeTypeID uint    `json:"grade_type_id" binding:"required"`
	TermID      *uint   `json:"term_id"`
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"max_score"`
	Comment     string  `json:"comment" binding:"max=500"`
}

// Create 录入成绩（教师要求对班级+科目有任课记录）
func (h *GradeHandler) Create(c *gin.Context) {
	var req CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	grade, err := h.gradeService.Create(user, &services.GradeInput{
		StudentID:   req.StudentID,
		ClassID:     req.ClassID,
		SubjectID:   req.SubjectID,
		GradeTypeID: req.GradeTypeID,
		TermID:      req.TermID,
		Score:       req.Score,
		MaxScore:    req.MaxScore,
		Comment:     req.Comment,
	})
	if err != nil {
		response.HandleError(c, err, "录入成绩失败")
		return
	}
	response.SuccessWithMessage(c, "成绩录入成功", grade)
}

// List 成绩列表（教师自动收敛到任课班级）
func (h *GradeHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	user := middleware.GetCurrentUser(c)

	filter := &services.GradeFilter{
		StudentID:     parseUintQuery(c, "student_id"),
		ClassID:       parseUintQuery(c, "class_id"),
		SubjectID:     parseUintQuery(c, "subject_id"),
		GradeTypeID:   parseUintQuery(c, "grade_type_id"),
		TermID:        parseUintQuery(c, "term_id"),
		PublishedOnly: c.Query("published") == "true",
	}
	grades, total, err := h.gradeService.ListForUser(user, filter, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err, "查询成绩失败")
		return
	}
	response.SuccessWithPage(c, grades, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 成绩详情
func (h *GradeHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的成绩ID")
		return
	}

	user := middleware.GetCurrentUser(c)
	grade, err := h.gradeService.GetForUser(user, id)
	if err != nil {
		response.HandleError(c, err, "成绩")
		return
	}
	response.Success(c, grade)
}

// UpdateGradeRequest 更新成绩请求
type UpdateGradeRequest struct {
	Score    *float64 `json:"score"`
	MaxScore *float64 `json:"max_score"`
	Comment  *string  `json:"comment"`
}

// Update 更新成绩
func (h *GradeHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的成绩ID")
		return
	}
	var req UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	grade, err := h.gradeService.Update(user, id, req.Score, req.MaxScore, req.Comment)
	if err != nil {
		response.HandleError(c, err, "更新成绩失败")
		return
	}
	response.Success(c, grade)
}

// PublishRequest 发布/撤回请求
type PublishRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

// Publish 发布或撤回单条成绩
func (h *GradeHandler) Publish(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的成绩ID")
		return
	}
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	grade, err := h.gradeService.SetPublished(user, id, *req.IsPublished)
	if err != nil {
		response.HandleError(c, err, "发布成绩失败")
		return
	}
	response.Success(c, grade)
}

// PublishBatchRequest 批量发布请求
type PublishBatchRequest struct {
	ClassID   uint  `json:"class_id" binding:"required"`
	SubjectID uint  `json:"subject_id" binding:"required"`
	TermID    *uint `json:"term_id"`
}

// PublishBatch 批量发布某班级某科目的成绩
func (h *GradeHandler) PublishBatch(c *gin.Context) {
	var req PublishBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user := middleware.GetCurrentUser(c)
	affected, err := h.gradeService.PublishBatch(user, req.ClassID, req.SubjectID, req.TermID)
	if err != nil {
		response.HandleError(c, err, "批量发布失败")
		return
	}
	response.Success(c, gin.H{"published": affected})
}

// Delete 删除成绩（软删除）
func (h *GradeHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的成绩ID")
		return
	}

	user := middleware.GetCurrentUser(c)
	if err := h.gradeService.Delete(user, id); err != nil {
		response.HandleError(c, err, "删除成绩失败")
		return
	}
	response.SuccessWithMessage(c, "成绩已删除", nil)
}
