package services

import (
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type BehaviorService struct {
	db           *gorm.DB
	scopeService *ClassSubjectService
}

func NewBehaviorService(db *gorm.DB) *BehaviorService {
	return &BehaviorService{
		db:           db,
		scopeService: NewClassSubjectService(db),
	}
}

// 行为记录类型
const (
	BehaviorTypeMerit    = "merit"
	BehaviorTypeDemerit  = "demerit"
	BehaviorTypeIncident = "incident"
)

// Create 录入行为记录，教师要求任教学生所在班级
func (s *BehaviorService) Create(user *models.User, studentID uint, recordType string, points int, description string) (*models.BehaviorRecord, error) {
	switch recordType {
	case BehaviorTypeMerit, BehaviorTypeDemerit, BehaviorTypeIncident:
	default:
		return nil, errors.NewValidation("行为类型只能是merit、demerit或incident")
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.NewValidation("行为描述不能为空")
	}

	var student models.Student
	if err := s.db.Where("tenant_id = ?", user.TenantID).First(&student, studentID).Error; err != nil {
		return nil, err
	}
	if student.ClassID != nil {
		if err := s.scopeService.RequireClassAccess(user, *student.ClassID); err != nil {
			return nil, err
		}
	}

	record := &models.BehaviorRecord{
		TenantID:    user.TenantID,
		StudentID:   studentID,
		ClassID:     student.ClassID,
		Type:        recordType,
		Points:      points,
		Description: description,
		RecordedBy:  user.ID,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ListByStudent 学生行为记录列表
func (s *BehaviorService) ListByStudent(tenantID, studentID uint, page, pageSize int) ([]*models.BehaviorRecord, int64, error) {
	var records []*models.BehaviorRecord
	var total int64

	query := s.db.Model(&models.BehaviorRecord{}).
		Where("tenant_id = ? AND student_id = ?", tenantID, studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// PointsBalance 学生行为积分净值（merit加分，demerit减分）
func (s *BehaviorService) PointsBalance(tenantID, studentID uint) (int, error) {
	var records []*models.BehaviorRecord
	if err := s.db.Where("tenant_id = ? AND student_id = ?", tenantID, studentID).
		Find(&records).Error; err != nil {
		return 0, err
	}

	balance := 0
	for _, r := range records {
		switch r.Type {
		case BehaviorTypeMerit:
			balance += r.Points
		case BehaviorTypeDemerit:
			balance -= r.Points
		}
	}
	return balance, nil
}

// Delete 删除行为记录（软删除）
func (s *BehaviorService) Delete(tenantID, id uint) error {
	var record models.BehaviorRecord
	if err := s.db.Where("tenant_id = ?", tenantID).First(&record, id).Error; err != nil {
		return err
	}
	return s.db.Delete(&record).Error
}
