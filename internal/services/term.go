package services

import (
	"strings"
	"time"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type TermService struct {
	db *gorm.DB
}

func NewTermService(db *gorm.DB) *TermService {
	return &TermService{db: db}
}

// Create 创建学期
func (s *TermService) Create(tenantID uint, name, academicYear string, startDate, endDate time.Time) (*models.Term, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("学期名称不能为空")
	}
	if !endDate.After(startDate) {
		return nil, errors.NewValidation("结束日期必须晚于开始日期")
	}

	term := &models.Term{
		TenantID:     tenantID,
		Name:         name,
		AcademicYear: academicYear,
		StartDate:    startDate,
		EndDate:      endDate,
		IsActive:     true,
	}
	if err := s.db.Create(term).Error; err != nil {
		return nil, err
	}
	return term, nil
}

// GetByID 根据ID获取学期
func (s *TermService) GetByID(tenantID, id uint) (*models.Term, error) {
	var term models.Term
	err := s.db.Where("tenant_id = ?", tenantID).First(&term, id).Error
	return &term, err
}

// GetCurrent 获取当前学期
func (s *TermService) GetCurrent(tenantID uint) (*models.Term, error) {
	var term models.Term
	err := s.db.Where("tenant_id = ? AND is_current = ?", tenantID, true).First(&term).Error
	return &term, err
}

// List 学期列表
func (s *TermService) List(tenantID uint) ([]*models.Term, error) {
	var terms []*models.Term
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("start_date DESC").Find(&terms).Error
	return terms, err
}

// Update 更新学期
func (s *TermService) Update(tenantID, id uint, name, academicYear string, startDate, endDate *time.Time) (*models.Term, error) {
	term, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		term.Name = name
	}
	if academicYear != "" {
		term.AcademicYear = academicYear
	}
	if startDate != nil {
		term.StartDate = *startDate
	}
	if endDate != nil {
		term.EndDate = *endDate
	}
	if !term.EndDate.After(term.StartDate) {
		return nil, errors.NewValidation("结束日期必须晚于开始日期")
	}

	err = s.db.Save(term).Error
	return term, err
}

// SetCurrent 设为当前学期
// 先清后设放在同一事务里，并发调用也不会出现两个当前学期
func (s *TermService) SetCurrent(tenantID, id uint) (*models.Term, error) {
	term, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Term{}).
			Where("tenant_id = ? AND is_current = ?", tenantID, true).
			Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Term{}).Where("id = ?", term.ID).
			Update("is_current", true).Error
	})
	if err != nil {
		return nil, err
	}

	term.IsCurrent = true
	return term, nil
}

// Delete 删除学期（软删除），已有成绩引用时拒绝
func (s *TermService) Delete(tenantID, id uint) error {
	term, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}

	var gradeCount int64
	s.db.Model(&models.Grade{}).Where("tenant_id = ? AND term_id = ?", tenantID, id).Count(&gradeCount)
	if gradeCount > 0 {
		return errors.NewValidation("学期下已有成绩记录，无法删除")
	}

	return s.db.Delete(term).Error
}
