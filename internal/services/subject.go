package services

import (
	"fmt"
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type SubjectService struct {
	db *gorm.DB
}

func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

// Create 创建科目
func (s *SubjectService) Create(tenantID uint, name, code string) (*models.Subject, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("科目名称不能为空")
	}

	var count int64
	s.db.Model(&models.Subject{}).
		Where("tenant_id = ? AND LOWER(name) = ?", tenantID, strings.ToLower(name)).
		Count(&count)
	if count > 0 {
		return nil, errors.NewValidation("科目名称已存在")
	}

	subject := &models.Subject{
		TenantID: tenantID,
		Name:     name,
		Code:     strings.ToUpper(code),
	}
	if err := s.db.Create(subject).Error; err != nil {
		return nil, err
	}
	return subject, nil
}

// GetByID 根据ID获取科目
func (s *SubjectService) GetByID(tenantID, id uint) (*models.Subject, error) {
	var subject models.Subject
	err := s.db.Where("tenant_id = ?", tenantID).First(&subject, id).Error
	return &subject, err
}

// List 科目列表（分页）
func (s *SubjectService) List(tenantID uint, keyword string, page, pageSize int) ([]*models.Subject, int64, error) {
	var subjects []*models.Subject
	var total int64

	query := s.db.Model(&models.Subject{}).Where("tenant_id = ?", tenantID)
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&subjects).Error
	if err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

// ListByTeacher 教师任课科目列表，可选按班级收敛（"我在X班教什么"）
func (s *SubjectService) ListByTeacher(tenantID, teacherID uint, classID *uint) ([]*models.Subject, error) {
	sub := s.db.Model(&models.ClassSubject{}).Select("subject_id").
		Where("tenant_id = ? AND teacher_id = ?", tenantID, teacherID)
	if classID != nil {
		sub = sub.Where("class_id = ?", *classID)
	}

	var subjects []*models.Subject
	err := s.db.Where("tenant_id = ? AND id IN (?)", tenantID, sub).
		Order("name ASC").Find(&subjects).Error
	return subjects, err
}

// Update 更新科目
func (s *SubjectService) Update(tenantID, id uint, name, code string) (*models.Subject, error) {
	subject, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if name != "" && !strings.EqualFold(name, subject.Name) {
		var count int64
		s.db.Model(&models.Subject{}).
			Where("tenant_id = ? AND LOWER(name) = ? AND id != ?", tenantID, strings.ToLower(name), id).
			Count(&count)
		if count > 0 {
			return nil, errors.NewValidation("科目名称已存在")
		}
		subject.Name = name
	}
	if code != "" {
		subject.Code = strings.ToUpper(code)
	}

	err = s.db.Save(subject).Error
	return subject, err
}

// Delete 删除科目（软删除），存在任课关联或成绩时拒绝
func (s *SubjectService) Delete(tenantID, id uint) error {
	subject, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}

	var csCount int64
	s.db.Model(&models.ClassSubject{}).Where("tenant_id = ? AND subject_id = ?", tenantID, id).Count(&csCount)
	if csCount > 0 {
		return errors.NewValidation("科目仍关联班级，无法删除")
	}
	var gradeCount int64
	s.db.Model(&models.Grade{}).Where("tenant_id = ? AND subject_id = ?", tenantID, id).Count(&gradeCount)
	if gradeCount > 0 {
		return errors.NewValidation("科目下已有成绩记录，无法删除")
	}

	return s.db.Delete(subject).Error
}
