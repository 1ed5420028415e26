package services

import (
	"fmt"
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type ProviderService struct {
	db *gorm.DB
}

func NewProviderService(db *gorm.DB) *ProviderService {
	return &ProviderService{db: db}
}

// GetProviderByID 获取运营方
func (s *ProviderService) GetProviderByID(id uint) (*models.Provider, error) {
	var provider models.Provider
	err := s.db.First(&provider, id).Error
	return &provider, err
}

// GetDefaultProvider 获取默认运营方（单运营方部署场景）
func (s *ProviderService) GetDefaultProvider() (*models.Provider, error) {
	var provider models.Provider
	err := s.db.Order("id ASC").First(&provider).Error
	return &provider, err
}

// ========== 运营方操作员 ==========

// CreateUser 创建运营方操作员
func (s *ProviderService) CreateUser(providerID uint, firstName, lastName, email, password string, permissions []string) (*models.ProviderUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if firstName == "" || lastName == "" {
		return nil, errors.NewValidation("姓名不能为空")
	}
	if !strings.Contains(email, "@") {
		return nil, errors.NewValidation("邮箱格式不正确")
	}
	if len(password) < 6 || len(password) > 72 {
		return nil, errors.NewValidation("密码长度必须在6-72个字符之间")
	}

	var count int64
	s.db.Model(&models.ProviderUser{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, errors.NewValidation("邮箱已被使用")
	}

	user := &models.ProviderUser{
		ProviderID:  providerID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Permissions: permissions,
		IsActive:    true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewValidation("邮箱已被使用")
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID 获取运营方操作员
func (s *ProviderService) GetUserByID(id uint) (*models.ProviderUser, error) {
	var user models.ProviderUser
	err := s.db.Preload("Provider").First(&user, id).Error
	return &user, err
}

// GetUserByEmail 根据邮箱获取运营方操作员
func (s *ProviderService) GetUserByEmail(email string) (*models.ProviderUser, error) {
	var user models.ProviderUser
	err := s.db.Preload("Provider").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	return &user, err
}

// Authenticate 运营方操作员登录验证
func (s *ProviderService) Authenticate(email, password string) (*models.ProviderUser, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewUnauthorized("邮箱或密码错误")
		}
		return nil, err
	}
	// 先验密码再看状态，未通过认证的调用方探测不到账号停用状态
	if !user.CheckPassword(password) {
		return nil, errors.NewUnauthorized("邮箱或密码错误")
	}
	if !user.IsActive {
		return nil, errors.NewUnauthorized("账号已被禁用")
	}
	return user, nil
}

// CountUsers 统计运营方操作员数量（引导逻辑用）
func (s *ProviderService) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.ProviderUser{}).Count(&count).Error
	return count, err
}

// Bootstrap 首次部署引导：创建默认运营方及首个全权限操作员
// 已存在操作员时拒绝，引导接口只能用一次
func (s *ProviderService) Bootstrap(providerName, firstName, lastName, email, password string) (*models.ProviderUser, error) {
	count, err := s.CountUsers()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.NewForbidden("系统已完成初始化", nil, nil)
	}

	var user *models.ProviderUser
	err = s.db.Transaction(func(tx *gorm.DB) error {
		provider := &models.Provider{Name: providerName, IsActive: true}
		if err := tx.Where("name = ?", providerName).FirstOrCreate(provider).Error; err != nil {
			return err
		}

		inner := &ProviderService{db: tx}
		created, err := inner.CreateUser(provider.ID, firstName, lastName, email, password, models.AllProviderPermissions())
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
