package services

import (
	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type GradeService struct {
	db           *gorm.DB
	scopeService *ClassSubjectService
	scaleService *GradingScaleService
	typeService  *GradeTypeService
}

func NewGradeService(db *gorm.DB) *GradeService {
	return &GradeService{
		db:           db,
		scopeService: NewClassSubjectService(db),
		scaleService: NewGradingScaleService(db),
		typeService:  NewGradeTypeService(db),
	}
}

// GradeInput 成绩录入/更新输入
type GradeInput struct {
	StudentID   uint
	ClassID     uint
	SubjectID   uint
	GradeTypeID uint
	TermID      *uint
	Score       float64
	MaxScore    float64
	Comment     string
}

// Create 录入成绩：教师要求精确任课记录，学生必须属于该班级
func (s *GradeService) Create(user *models.User, input *GradeInput) (*models.Grade, error) {
	if err := s.scopeService.RequireAssignment(user, input.ClassID, input.SubjectID); err != nil {
		return nil, err
	}
	if err := s.validateInput(user.TenantID, input); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		TenantID:    user.TenantID,
		StudentID:   input.StudentID,
		ClassID:     input.ClassID,
		SubjectID:   input.SubjectID,
		TeacherID:   user.ID,
		GradeTypeID: input.GradeTypeID,
		TermID:      input.TermID,
		Score:       input.Score,
		MaxScore:    input.MaxScore,
		Comment:     input.Comment,
	}
	if err := s.db.Create(grade).Error; err != nil {
		return nil, err
	}

	// 落库后按租户等级表补齐等级字母
	s.applyLetter(user.TenantID, grade)
	return grade, nil
}

func (s *GradeService) validateInput(tenantID uint, input *GradeInput) error {
	if input.MaxScore <= 0 {
		input.MaxScore = 100
	}
	if input.Score < 0 || input.Score > input.MaxScore {
		return errors.NewValidation("分数必须在0到满分之间")
	}

	var student models.Student
	if err := s.db.Where("tenant_id = ?", tenantID).First(&student, input.StudentID).Error; err != nil {
		return err
	}
	if student.ClassID == nil || *student.ClassID != input.ClassID {
		return errors.NewValidation("学生不属于该班级")
	}

	if _, err := s.typeService.GetByID(tenantID, input.GradeTypeID); err != nil {
		return err
	}
	if input.TermID != nil {
		var term models.Term
		if err := s.db.Where("tenant_id = ?", tenantID).First(&term, *input.TermID).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyLetter 按租户等级表写入letter_grade，失败只记日志不阻断
func (s *GradeService) applyLetter(tenantID uint, grade *models.Grade) {
	scale, err := s.scaleService.GetOrSeed(tenantID)
	if err != nil {
		return
	}
	letter := scale.LetterFor(grade.Percentage)
	grade.LetterGrade = &letter
	s.db.Model(grade).Update("letter_grade", letter)
}

// GetByID 根据ID获取成绩
func (s *GradeService) GetByID(tenantID, id uint) (*models.Grade, error) {
	var grade models.Grade
	err := s.db.Preload("GradeType").Preload("Subject").
		Where("tenant_id = ?", tenantID).First(&grade, id).Error
	return &grade, err
}

// GetForUser 按访问者身份获取成绩：管理员全量，教师仅限任课班级科目
func (s *GradeService) GetForUser(user *models.User, id uint) (*models.Grade, error) {
	grade, err := s.GetByID(user.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopeService.RequireAssignment(user, grade.ClassID, grade.SubjectID); err != nil {
		return nil, err
	}
	return grade, nil
}

// GradeFilter 成绩查询过滤
type GradeFilter struct {
	StudentID     *uint
	ClassID       *uint
	SubjectID     *uint
	GradeTypeID   *uint
	TermID        *uint
	PublishedOnly bool
}

// ListForUser 成绩列表（分页），教师自动收敛到任课班级
func (s *GradeService) ListForUser(user *models.User, filter *GradeFilter, page, pageSize int) ([]*models.Grade, int64, error) {
	classIDs, unrestricted, err := s.scopeService.AllowedClassFilter(user, filter.ClassID)
	if err != nil {
		return nil, 0, err
	}

	var grades []*models.Grade
	var total int64

	query := s.db.Model(&models.Grade{}).Where("tenant_id = ?", user.TenantID)
	if !unrestricted {
		if len(classIDs) == 0 {
			return []*models.Grade{}, 0, nil
		}
		query = query.Where("class_id IN ?", classIDs)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.GradeTypeID != nil {
		query = query.Where("grade_type_id = ?", *filter.GradeTypeID)
	}
	if filter.TermID != nil {
		query = query.Where("term_id = ?", *filter.TermID)
	}
	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err = query.Preload("GradeType").Preload("Subject").
		Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&grades).Error
	if err != nil {
		return nil, 0, err
	}
	return grades, total, nil
}

// Update 更新成绩，分数变更后百分比和等级随之重算
func (s *GradeService) Update(user *models.User, id uint, score, maxScore *float64, comment *string) (*models.Grade, error) {
	grade, err := s.GetForUser(user, id)
	if err != nil {
		return nil, err
	}

	if score != nil {
		grade.Score = *score
	}
	if maxScore != nil {
		grade.MaxScore = *maxScore
	}
	if grade.MaxScore <= 0 {
		grade.MaxScore = 100
	}
	if grade.Score < 0 || grade.Score > grade.MaxScore {
		return nil, errors.NewValidation("分数必须在0到满分之间")
	}
	if comment != nil {
		grade.Comment = *comment
	}

	if err := s.db.Save(grade).Error; err != nil {
		return nil, err
	}
	s.applyLetter(user.TenantID, grade)
	return grade, nil
}

// SetPublished 发布/撤回成绩，发布后才进入学生侧聚合
func (s *GradeService) SetPublished(user *models.User, id uint, published bool) (*models.Grade, error) {
	grade, err := s.GetForUser(user, id)
	if err != nil {
		return nil, err
	}
	grade.IsPublished = published
	err = s.db.Save(grade).Error
	return grade, err
}

// PublishBatch 批量发布某班级某科目的全部成绩
func (s *GradeService) PublishBatch(user *models.User, classID, subjectID uint, termID *uint) (int64, error) {
	if err := s.scopeService.RequireAssignment(user, classID, subjectID); err != nil {
		return 0, err
	}

	query := s.db.Model(&models.Grade{}).
		Where("tenant_id = ? AND class_id = ? AND subject_id = ? AND is_published = ?",
			user.TenantID, classID, subjectID, false)
	if termID != nil {
		query = query.Where("term_id = ?", *termID)
	}
	result := query.Update("is_published", true)
	return result.RowsAffected, result.Error
}

// Delete 删除成绩（软删除）
func (s *GradeService) Delete(user *models.User, id uint) error {
	grade, err := s.GetForUser(user, id)
	if err != nil {
		return err
	}
	return s.db.Delete(grade).Error
}
