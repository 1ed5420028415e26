package services

import (
	stderrors "errors"
	"fmt"
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// 租户侧资源清单，权限字符串按 <resource>.<action> 生成
var tenantResources = []string{
	"users", "roles", "students", "classes", "subjects", "class_subjects",
	"grades", "grade_types", "grading_scale", "terms", "attendance",
	"fees", "payments", "behavior_records", "notifications", "term_reports",
	"reports", "audit_logs", "assets",
}

// AllTenantPermissions 租户侧权限全集（ADMIN角色的权限范围）
func AllTenantPermissions() []string {
	actions := []string{models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete}
	perms := make([]string, 0, len(tenantResources)*len(actions))
	for _, resource := range tenantResources {
		for _, action := range actions {
			perms = append(perms, resource+"."+action)
		}
	}
	return perms
}

// DefaultRolePermissions 默认角色的固定权限集
func DefaultRolePermissions(roleName string) []string {
	switch strings.ToUpper(roleName) {
	case models.RoleAdmin:
		return AllTenantPermissions()
	case models.RoleTeacher:
		return []string{
			"students.read", "classes.read", "subjects.read", "class_subjects.read",
			"grades.create", "grades.read", "grades.update", "grades.delete",
			"grade_types.read", "grading_scale.read", "terms.read",
			"attendance.create", "attendance.read", "attendance.update",
			"behavior_records.create", "behavior_records.read",
			"notifications.read", "reports.read", "term_reports.read",
		}
	case models.RoleStudent, models.RoleParent:
		return []string{
			"classes.read", "subjects.read", "grades.read", "terms.read",
			"attendance.read", "fees.read", "payments.read",
			"notifications.read", "reports.read", "term_reports.read",
		}
	default:
		return nil
	}
}

// CreateDefaultRoles 为新租户创建四个默认角色
// 幂等：单个角色的唯一键冲突视为已存在而忽略，其他错误向上传播
func (s *RoleService) CreateDefaultRoles(tx *gorm.DB, tenantID uint) error {
	defaults := []struct {
		name        string
		description string
	}{
		{models.RoleAdmin, "学校管理员，持有全部权限"},
		{models.RoleTeacher, "任课教师，可见范围由任课关联决定"},
		{models.RoleStudent, "学生，只读自身相关数据"},
		{models.RoleParent, "家长，只读子女相关数据"},
	}

	for _, d := range defaults {
		role := &models.Role{
			TenantID:    tenantID,
			Name:        d.name,
			Description: d.description,
			Permissions: datatypes.NewJSONSlice(DefaultRolePermissions(d.name)),
			IsDefault:   true,
		}
		if err := tx.Create(role).Error; err != nil {
			if isDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("创建默认角色 %s 失败: %v", d.name, err)
		}
	}
	return nil
}

// isDuplicateKeyError 判断唯一键冲突
func isDuplicateKeyError(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// ========== 基础CRUD方法 ==========

// Create 创建租户自定义角色
func (s *RoleService) Create(tenantID uint, name, description string, permissions []string) (*models.Role, error) {
	if err := s.ValidateName(name); err != nil {
		return nil, err
	}

	// 角色名在租户内唯一（比较不区分大小写），唯一索引为最终防线
	var count int64
	s.db.Model(&models.Role{}).Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).Count(&count)
	if count > 0 {
		return nil, errors.NewValidation("角色名称已存在")
	}

	role := &models.Role{
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		Permissions: datatypes.NewJSONSlice(permissions),
		IsDefault:   false,
	}

	err := s.db.Create(role).Error
	return role, err
}

// GetByID 根据ID获取角色（租户内）
func (s *RoleService) GetByID(tenantID, id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("tenant_id = ?", tenantID).First(&role, id).Error
	return &role, err
}

// GetByName 根据名称获取角色（比较不区分大小写）
func (s *RoleService) GetByName(tenantID uint, name string) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).First(&role).Error
	return &role, err
}

// GetByTenant 获取租户的角色列表
func (s *RoleService) GetByTenant(tenantID uint) ([]*models.Role, error) {
	var roles []*models.Role
	err := s.db.Where("tenant_id = ?", tenantID).Order("id").Find(&roles).Error
	return roles, err
}

// Update 更新角色描述与权限集
// 默认角色不允许改名或删除，但权限集保持只读；自定义角色可由管理员编辑权限
func (s *RoleService) Update(tenantID, id uint, name, description string, permissions []string) (*models.Role, error) {
	var role models.Role
	if err := s.db.Where("tenant_id = ?", tenantID).First(&role, id).Error; err != nil {
		return nil, err
	}

	if role.IsDefault {
		return nil, errors.NewValidation("默认角色不允许修改")
	}

	if name != "" && !strings.EqualFold(name, role.Name) {
		if err := s.ValidateName(name); err != nil {
			return nil, err
		}
		var count int64
		s.db.Model(&models.Role{}).
			Where("tenant_id = ? AND LOWER(name) = LOWER(?) AND id != ?", tenantID, name, id).
			Count(&count)
		if count > 0 {
			return nil, errors.NewValidation("角色名称已存在")
		}
		role.Name = name
	}
	if description != "" {
		role.Description = description
	}
	if permissions != nil {
		role.Permissions = datatypes.NewJSONSlice(permissions)
	}

	err := s.db.Save(&role).Error
	return &role, err
}

// Delete 删除角色（软删除）
func (s *RoleService) Delete(tenantID, id uint) error {
	var role models.Role
	if err := s.db.Where("tenant_id = ?", tenantID).First(&role, id).Error; err != nil {
		return err
	}

	if role.IsDefault {
		return errors.NewValidation("默认角色不允许删除")
	}

	return s.db.Delete(&role).Error
}

// ========== 验证相关方法 ==========

// ValidateName 验证角色名称
func (s *RoleService) ValidateName(name string) error {
	if len(name) < 2 || len(name) > 50 {
		return errors.NewValidation("角色名称长度必须在2-50个字符之间")
	}
	return nil
}
