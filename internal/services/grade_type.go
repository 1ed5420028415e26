package services

import (
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type GradeTypeService struct {
	db *gorm.DB
}

func NewGradeTypeService(db *gorm.DB) *GradeTypeService {
	return &GradeTypeService{db: db}
}

// defaultGradeTypes 默认成绩类型及权重，权重合计1.0
func defaultGradeTypes() []models.GradeType {
	w := func(v float64) *float64 { return &v }
	return []models.GradeType{
		{Name: "Classwork", Weight: w(0.20), MaxScore: 100, IsActive: true},
		{Name: "Homework", Weight: w(0.10), MaxScore: 100, IsActive: true},
		{Name: "Quiz", Weight: w(0.15), MaxScore: 100, IsActive: true},
		{Name: "Test", Weight: w(0.25), MaxScore: 100, IsActive: true},
		{Name: "Exam", Weight: w(0.30), MaxScore: 100, IsActive: true},
	}
}

// SeedDefaults 为租户种子默认成绩类型（幂等）
func (s *GradeTypeService) SeedDefaults(tenantID uint) error {
	var count int64
	if err := s.db.Model(&models.GradeType{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, gt := range defaultGradeTypes() {
		gt.TenantID = tenantID
		if err := s.db.Create(&gt).Error; err != nil {
			if isDuplicateKeyError(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// ListOrSeed 成绩类型列表，租户首次访问时种子默认集
func (s *GradeTypeService) ListOrSeed(tenantID uint) ([]*models.GradeType, error) {
	if err := s.SeedDefaults(tenantID); err != nil {
		return nil, err
	}
	var types []*models.GradeType
	err := s.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&types).Error
	return types, err
}

// GetByID 根据ID获取成绩类型
func (s *GradeTypeService) GetByID(tenantID, id uint) (*models.GradeType, error) {
	var gt models.GradeType
	err := s.db.Where("tenant_id = ?", tenantID).First(&gt, id).Error
	return &gt, err
}

// Create 创建成绩类型
func (s *GradeTypeService) Create(tenantID uint, name string, weight *float64, maxScore float64) (*models.GradeType, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("成绩类型名称不能为空")
	}
	if weight != nil && (*weight < 0 || *weight > 1) {
		return nil, errors.NewValidation("权重必须在0到1之间")
	}
	if maxScore <= 0 {
		maxScore = 100
	}

	gt := &models.GradeType{
		TenantID: tenantID,
		Name:     name,
		Weight:   weight,
		MaxScore: maxScore,
		IsActive: true,
	}
	if err := s.db.Create(gt).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewValidation("成绩类型名称已存在")
		}
		return nil, err
	}
	return gt, nil
}

// Update 更新成绩类型
func (s *GradeTypeService) Update(tenantID, id uint, name string, weight *float64, maxScore *float64, isActive *bool) (*models.GradeType, error) {
	gt, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		gt.Name = name
	}
	if weight != nil {
		if *weight < 0 || *weight > 1 {
			return nil, errors.NewValidation("权重必须在0到1之间")
		}
		gt.Weight = weight
	}
	if maxScore != nil {
		if *maxScore <= 0 {
			return nil, errors.NewValidation("满分必须大于0")
		}
		gt.MaxScore = *maxScore
	}
	if isActive != nil {
		gt.IsActive = *isActive
	}

	if err := s.db.Save(gt).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewValidation("成绩类型名称已存在")
		}
		return nil, err
	}
	return gt, nil
}

// Delete 删除成绩类型（软删除），已有成绩引用时拒绝
func (s *GradeTypeService) Delete(tenantID, id uint) error {
	gt, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}

	var gradeCount int64
	s.db.Model(&models.Grade{}).Where("tenant_id = ? AND grade_type_id = ?", tenantID, id).Count(&gradeCount)
	if gradeCount > 0 {
		return errors.NewValidation("成绩类型已被成绩记录引用，无法删除")
	}

	return s.db.Delete(gt).Error
}
