package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建租户用户
// 邮箱全局唯一（跨租户），统一小写存储；唯一索引为并发下的最终防线，
// 此处的存在性预检只用于更友好的错误提示
func (s *UserService) Create(tenantID uint, firstName, lastName, email, password string, phone *string, roleIDs []uint) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.ValidateCreateParams(firstName, lastName, email, password); err != nil {
		return nil, err
	}

	var emailCount int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&emailCount)
	if emailCount > 0 {
		return nil, errors.NewValidation("邮箱已被使用")
	}

	user := &models.User{
		TenantID:  tenantID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		IsActive:  true,
	}

	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewValidation("邮箱已被使用")
		}
		return nil, err
	}

	if len(roleIDs) > 0 {
		if err := s.AssignRoles(tenantID, user.ID, roleIDs, user.ID); err != nil {
			return nil, err
		}
	}

	return s.GetByID(user.ID)
}

// GetByID 根据ID获取用户（带角色与租户）
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").Preload("Tenant").First(&user, id).Error
	return &user, err
}

// GetByIDInTenant 租户内按ID获取用户，跨租户按不存在处理
func (s *UserService) GetByIDInTenant(tenantID, id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").Where("tenant_id = ?", tenantID).First(&user, id).Error
	return &user, err
}

// GetByEmail 根据邮箱获取用户（登录用，邮箱比较统一小写）
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").Preload("Tenant").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	return &user, err
}

// GetWithFiltersAndPage 组合查询（分页版本，租户内）
func (s *UserService) GetWithFiltersAndPage(tenantID uint, keyword string, isActive *bool, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)

	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Roles").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update 更新用户
func (s *UserService) Update(tenantID, id uint, firstName, lastName string, phone *string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("tenant_id = ?", tenantID).First(&user, id).Error; err != nil {
		return nil, err
	}

	if !s.ValidateName(firstName) || !s.ValidateName(lastName) {
		return nil, errors.NewValidation("姓名长度必须在1-50个字符之间")
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Phone = phone

	err := s.db.Save(&user).Error
	return &user, err
}

// SetActive 启用/停用用户
func (s *UserService) SetActive(tenantID, id uint, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.Where("tenant_id = ?", tenantID).First(&user, id).Error; err != nil {
		return nil, err
	}

	user.IsActive = active
	err := s.db.Save(&user).Error
	return &user, err
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(tenantID, id uint, newPassword string) error {
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	if err := s.db.Where("tenant_id = ?", tenantID).First(&user, id).Error; err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("密码加密失败: %v", err)
	}

	return s.db.Save(&user).Error
}

// Delete 删除用户（软删除）
func (s *UserService) Delete(tenantID, id uint) error {
	var user models.User
	if err := s.db.Where("tenant_id = ?", tenantID).First(&user, id).Error; err != nil {
		return err
	}
	return s.db.Delete(&user).Error
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", now).Error
}

// ========== 角色管理方法 ==========

// AssignRoles 为用户分配角色（整体替换）
func (s *UserService) AssignRoles(tenantID, userID uint, roleIDs []uint, assignedBy uint) error {
	var user models.User
	if err := s.db.Where("tenant_id = ?", tenantID).First(&user, userID).Error; err != nil {
		return err
	}

	// 角色必须存在且属于同一租户
	var roles []models.Role
	if err := s.db.Where("id IN ? AND tenant_id = ?", roleIDs, tenantID).Find(&roles).Error; err != nil {
		return err
	}
	if len(roles) != len(roleIDs) {
		return errors.NewValidation("部分角色不存在或不属于该租户")
	}

	return s.db.Model(&user).Association("Roles").Replace(roles)
}

// ResolveRoles 确保用户的角色引用已展开为完整角色文档
// 调用方可能只携带角色ID引用，此处防御性补查
func (s *UserService) ResolveRoles(user *models.User) error {
	if len(user.Roles) > 0 {
		return nil
	}
	return s.db.Model(user).Association("Roles").Find(&user.Roles)
}

// EffectivePermissions 计算有效权限集：所有未删除角色权限集的并集
func (s *UserService) EffectivePermissions(user *models.User) (map[string]bool, error) {
	if err := s.ResolveRoles(user); err != nil {
		return nil, err
	}

	permissions := make(map[string]bool)
	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			permissions[perm] = true
		}
	}
	return permissions, nil
}

// HasAnyPermission 检查用户是否持有任一权限（OR语义）
func (s *UserService) HasAnyPermission(user *models.User, codes ...string) (bool, error) {
	permissions, err := s.EffectivePermissions(user)
	if err != nil {
		return false, err
	}
	for _, code := range codes {
		if permissions[code] {
			return true, nil
		}
	}
	return false, nil
}

// HasAnyRole 检查用户是否持有任一角色（名称比较不区分大小写，OR语义）
func (s *UserService) HasAnyRole(user *models.User, names ...string) (bool, error) {
	if err := s.ResolveRoles(user); err != nil {
		return false, err
	}
	for _, name := range names {
		if user.HasRoleName(name) {
			return true, nil
		}
	}
	return false, nil
}

// IsAdmin 是否持有ADMIN角色
func (s *UserService) IsAdmin(user *models.User) (bool, error) {
	return s.HasAnyRole(user, models.RoleAdmin)
}

// IsTeacher 是否持有TEACHER角色
func (s *UserService) IsTeacher(user *models.User) (bool, error) {
	return s.HasAnyRole(user, models.RoleTeacher)
}

// RequirePermission 要求任一权限，不满足返回403错误并回显所需权限与当前角色
func (s *UserService) RequirePermission(user *models.User, codes ...string) error {
	ok, err := s.HasAnyPermission(user, codes...)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewForbidden("权限不足", codes, user.RoleNames())
	}
	return nil
}

// RequireRole 要求任一角色，不满足返回403错误
func (s *UserService) RequireRole(user *models.User, names ...string) error {
	ok, err := s.HasAnyRole(user, names...)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewForbidden("角色不足", names, user.RoleNames())
	}
	return nil
}

// ========== 验证相关方法 ==========

// ValidateEmail 验证邮箱
func (s *UserService) ValidateEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".") && len(email) >= 5 && len(email) <= 100
}

// ValidatePassword 验证密码
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.NewValidation("密码长度不能少于6位")
	}
	if len(password) > 72 {
		return errors.NewValidation("密码长度不能超过72位")
	}
	return nil
}

// ValidateName 验证姓名（按字符数而非字节数）
func (s *UserService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 1 && runeCount <= 50
}

// ValidateCreateParams 验证创建用户的参数
func (s *UserService) ValidateCreateParams(firstName, lastName, email, password string) error {
	if !s.ValidateName(firstName) || !s.ValidateName(lastName) {
		return errors.NewValidation("姓名长度必须在1-50个字符之间")
	}
	if !s.ValidateEmail(email) {
		return errors.NewValidation("邮箱格式不正确")
	}
	return s.ValidatePassword(password)
}
