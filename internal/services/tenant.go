package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"smp/internal/models"
	"smp/pkg/errors"
	"smp/pkg/logger"

	"gorm.io/gorm"
)

type TenantService struct {
	db          *gorm.DB
	roleService *RoleService
	userService *UserService
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{
		db:          db,
		roleService: NewRoleService(db),
		userService: NewUserService(db),
	}
}

// TenantMetrics 租户用量统计
type TenantMetrics struct {
	Users    int64 `json:"users"`
	Students int64 `json:"students"`
	Classes  int64 `json:"classes"`
	Grades   int64 `json:"grades"`
}

// ProvisionInput 开通租户的输入
type ProvisionInput struct {
	Name             string
	Slug             string
	SubscriptionPlan string
	AdminFirstName   string
	AdminLastName    string
	AdminEmail       string
	AdminPassword    string // 留空时生成临时密码
}

// ProvisionResult 开通结果
// TempPassword仅在密码由系统生成时返回，调用方自带密码绝不回显
type ProvisionResult struct {
	Tenant       *models.Tenant `json:"tenant"`
	AdminUser    *models.User   `json:"admin_user"`
	TempPassword string         `json:"temp_password,omitempty"`
}

// ProvisionWithAdmin 开通租户：租户 + 四个默认角色 + 首个管理员，核心多实体流程
// 管理员创建失败时执行补偿回滚（租户软删+置inactive、角色软删），避免留下无管理员的孤儿租户
func (s *TenantService) ProvisionWithAdmin(providerID uint, input *ProvisionInput) (*ProvisionResult, error) {
	// 1. 必填校验
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewValidation("租户名称不能为空")
	}
	if strings.TrimSpace(input.AdminFirstName) == "" || strings.TrimSpace(input.AdminLastName) == "" {
		return nil, errors.NewValidation("管理员姓名不能为空")
	}
	adminEmail := strings.ToLower(strings.TrimSpace(input.AdminEmail))
	if !s.userService.ValidateEmail(adminEmail) {
		return nil, errors.NewValidation("管理员邮箱格式不正确")
	}
	if !s.ValidateName(input.Name) {
		return nil, errors.NewValidation("租户名称长度必须在2-100个字符之间")
	}

	// 2. 邮箱全局唯一
	var emailCount int64
	s.db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&emailCount)
	if emailCount > 0 {
		return nil, errors.NewValidation("管理员邮箱已被使用")
	}

	// 3. 推导slug并查重
	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		return nil, errors.NewValidation("无法从租户名称推导slug，请显式指定")
	}
	var slugCount int64
	s.db.Model(&models.Tenant{}).Where("slug = ?", slug).Count(&slugCount)
	if slugCount > 0 {
		return nil, errors.NewValidation("slug已被其他租户使用")
	}

	// 4. 创建租户
	plan := input.SubscriptionPlan
	if plan == "" {
		plan = "basic"
	}
	tenant := &models.Tenant{
		ProviderID:       providerID,
		Name:             input.Name,
		Slug:             slug,
		SubscriptionPlan: plan,
		Status:           models.TenantStatusActive,
	}
	if err := s.db.Create(tenant).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewValidation("slug已被其他租户使用")
		}
		return nil, err
	}

	// 5. 创建默认角色（幂等）
	if err := s.roleService.CreateDefaultRoles(s.db, tenant.ID); err != nil {
		s.rollbackProvision(tenant.ID)
		return nil, err
	}

	// 6. 定位ADMIN角色，按第5步逻辑不应缺失，防御性检查
	adminRole, err := s.roleService.GetByName(tenant.ID, models.RoleAdmin)
	if err != nil {
		s.rollbackProvision(tenant.ID)
		return nil, errors.NewIntegrity("开通后未找到ADMIN默认角色")
	}

	// 7. 创建管理员用户，未提供密码时生成12位临时密码
	password := input.AdminPassword
	tempPassword := ""
	if password == "" {
		tempPassword = GenerateTempPassword(12)
		password = tempPassword
	}

	adminUser, err := s.userService.Create(
		tenant.ID, input.AdminFirstName, input.AdminLastName,
		adminEmail, password, nil, []uint{adminRole.ID},
	)
	if err != nil {
		// 8. 补偿回滚后重新抛出原始错误
		s.rollbackProvision(tenant.ID)
		return nil, err
	}

	// 9. 记录首个管理员指针，后续管理员定位不再依赖角色名查询
	tenant.PrimaryAdminUserID = &adminUser.ID
	if err := s.db.Model(tenant).Update("primary_admin_user_id", adminUser.ID).Error; err != nil {
		logger.GetLogger().Errorf("记录租户 %d 首个管理员失败: %v", tenant.ID, err)
	}

	// 10. 返回结果，密码哈希不随用户对象外泄（json:"-"）
	return &ProvisionResult{
		Tenant:       tenant,
		AdminUser:    adminUser,
		TempPassword: tempPassword,
	}, nil
}

// rollbackProvision 补偿回滚：租户置inactive并软删，关联角色全部软删
func (s *TenantService) rollbackProvision(tenantID uint) {
	appLogger := logger.GetLogger()

	if err := s.db.Model(&models.Tenant{}).Where("id = ?", tenantID).
		Update("status", models.TenantStatusInactive).Error; err != nil {
		appLogger.Errorf("回滚租户 %d 状态失败: %v", tenantID, err)
	}
	if err := s.db.Where("id = ?", tenantID).Delete(&models.Tenant{}).Error; err != nil {
		appLogger.Errorf("回滚删除租户 %d 失败: %v", tenantID, err)
	}
	if err := s.db.Where("tenant_id = ?", tenantID).Delete(&models.Role{}).Error; err != nil {
		appLogger.Errorf("回滚删除租户 %d 角色失败: %v", tenantID, err)
	}
}

// ========== 运营方侧查询与管理 ==========

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	return &tenant, err
}

// GetForProvider 运营方内按ID获取租户
// 跨运营方访问一律按记录不存在处理（404），不向错误的运营方确认租户存在性
func (s *TenantService) GetForProvider(providerID, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Where("provider_id = ?", providerID).First(&tenant, id).Error
	return &tenant, err
}

// GetWithFiltersAndPage 运营方名下租户列表（分页）
func (s *TenantService) GetWithFiltersAndPage(providerID uint, status, keyword string, page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{}).Where("provider_id = ?", providerID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR slug LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Update 更新租户
func (s *TenantService) Update(providerID, id uint, name, subscriptionPlan string, settings map[string]interface{}) (*models.Tenant, error) {
	tenant, err := s.GetForProvider(providerID, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		if !s.ValidateName(name) {
			return nil, errors.NewValidation("租户名称长度必须在2-100个字符之间")
		}
		tenant.Name = name
	}
	if subscriptionPlan != "" {
		tenant.SubscriptionPlan = subscriptionPlan
	}
	if settings != nil {
		tenant.Settings = settings
	}

	err = s.db.Save(tenant).Error
	return tenant, err
}

// UpdateStatus 更新租户状态
func (s *TenantService) UpdateStatus(providerID, id uint, status string) (*models.Tenant, error) {
	if !s.IsValidStatus(status) {
		return nil, errors.NewValidation("状态只能是active、inactive或suspended")
	}

	tenant, err := s.GetForProvider(providerID, id)
	if err != nil {
		return nil, err
	}

	tenant.Status = status
	err = s.db.Save(tenant).Error
	return tenant, err
}

// Delete 删除租户（软删除，级联软删其全部角色）
func (s *TenantService) Delete(providerID, id uint) error {
	tenant, err := s.GetForProvider(providerID, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(tenant).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ?", tenant.ID).Delete(&models.Role{}).Error
	})
}

// GetMetrics 租户用量统计
func (s *TenantService) GetMetrics(providerID, id uint) (*TenantMetrics, error) {
	tenant, err := s.GetForProvider(providerID, id)
	if err != nil {
		return nil, err
	}

	metrics := &TenantMetrics{}
	s.db.Model(&models.User{}).Where("tenant_id = ?", tenant.ID).Count(&metrics.Users)
	s.db.Model(&models.Student{}).Where("tenant_id = ?", tenant.ID).Count(&metrics.Students)
	s.db.Model(&models.Class{}).Where("tenant_id = ?", tenant.ID).Count(&metrics.Classes)
	s.db.Model(&models.Grade{}).Where("tenant_id = ?", tenant.ID).Count(&metrics.Grades)

	return metrics, nil
}

// ========== 状态与校验 ==========

// IsActive 检查租户是否激活
func (s *TenantService) IsActive(tenant *models.Tenant) bool {
	return tenant.Status == models.TenantStatusActive
}

// IsValidStatus 检查租户状态是否有效
func (s *TenantService) IsValidStatus(status string) bool {
	switch status {
	case models.TenantStatusActive, models.TenantStatusInactive, models.TenantStatusSuspended:
		return true
	default:
		return false
	}
}

// ValidateName 验证租户名称（按字符数而非字节数）
func (s *TenantService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 100
}

// Slugify 从名称推导slug：小写、空格转连字符、去除[a-z0-9-]以外字符
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = strings.ReplaceAll(lower, " ", "-")

	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// 临时密码字符集（字母数字加符号的固定集合）
const tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789!@#$%&*"

// GenerateTempPassword 生成指定长度的随机临时密码
func GenerateTempPassword(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand不可用属于环境故障，退化为固定字符避免panic
			b[i] = 'x'
			continue
		}
		b[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(b)
}
