package services

import (
	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GradingScaleService struct {
	db *gorm.DB
}

func NewGradingScaleService(db *gorm.DB) *GradingScaleService {
	return &GradingScaleService{db: db}
}

// DefaultScaleBands 默认美式13档等级表
// 区间上限取x9.99使相邻等级无缝衔接：90.00落A-，89.99落B+
func DefaultScaleBands() []models.ScaleBand {
	return []models.ScaleBand{
		{Letter: "A+", MinPercentage: 97, MaxPercentage: 100, GPA: 4.0},
		{Letter: "A", MinPercentage: 93, MaxPercentage: 96.99, GPA: 4.0},
		{Letter: "A-", MinPercentage: 90, MaxPercentage: 92.99, GPA: 3.7},
		{Letter: "B+", MinPercentage: 87, MaxPercentage: 89.99, GPA: 3.3},
		{Letter: "B", MinPercentage: 83, MaxPercentage: 86.99, GPA: 3.0},
		{Letter: "B-", MinPercentage: 80, MaxPercentage: 82.99, GPA: 2.7},
		{Letter: "C+", MinPercentage: 77, MaxPercentage: 79.99, GPA: 2.3},
		{Letter: "C", MinPercentage: 73, MaxPercentage: 76.99, GPA: 2.0},
		{Letter: "C-", MinPercentage: 70, MaxPercentage: 72.99, GPA: 1.7},
		{Letter: "D+", MinPercentage: 67, MaxPercentage: 69.99, GPA: 1.3},
		{Letter: "D", MinPercentage: 63, MaxPercentage: 66.99, GPA: 1.0},
		{Letter: "D-", MinPercentage: 60, MaxPercentage: 62.99, GPA: 0.7},
		{Letter: "F", MinPercentage: 0, MaxPercentage: 59.99, GPA: 0.0},
	}
}

// GetOrSeed 获取租户等级表，首次访问时写入默认表
func (s *GradingScaleService) GetOrSeed(tenantID uint) (*models.GradingScale, error) {
	var scale models.GradingScale
	err := s.db.Where("tenant_id = ?", tenantID).First(&scale).Error
	if err == nil {
		return &scale, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	scale = models.GradingScale{
		TenantID: tenantID,
		Name:     "Standard",
		Bands:    datatypes.NewJSONType(DefaultScaleBands()),
	}
	if err := s.db.Create(&scale).Error; err != nil {
		if isDuplicateKeyError(err) {
			// 并发种子时另一方已写入，重读即可
			err = s.db.Where("tenant_id = ?", tenantID).First(&scale).Error
			return &scale, err
		}
		return nil, err
	}
	return &scale, nil
}

// Update 替换租户等级表
func (s *GradingScaleService) Update(tenantID uint, name string, bands []models.ScaleBand) (*models.GradingScale, error) {
	if err := validateBands(bands); err != nil {
		return nil, err
	}

	scale, err := s.GetOrSeed(tenantID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		scale.Name = name
	}
	scale.Bands = datatypes.NewJSONType(bands)
	err = s.db.Save(scale).Error
	return scale, err
}

func validateBands(bands []models.ScaleBand) error {
	if len(bands) == 0 {
		return errors.NewValidation("等级表不能为空")
	}
	seen := make(map[string]bool, len(bands))
	for _, band := range bands {
		if band.Letter == "" {
			return errors.NewValidation("等级字母不能为空")
		}
		if seen[band.Letter] {
			return errors.NewValidation("等级字母重复: " + band.Letter)
		}
		seen[band.Letter] = true
		if band.MinPercentage < 0 || band.MaxPercentage > 100 || band.MinPercentage > band.MaxPercentage {
			return errors.NewValidation("等级区间不合法: " + band.Letter)
		}
		if band.GPA < 0 {
			return errors.NewValidation("绩点不能为负: " + band.Letter)
		}
	}
	return nil
}
