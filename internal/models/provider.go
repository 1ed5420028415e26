package models

import (
	"gorm.io/datatypes"

	"golang.org/x/crypto/bcrypt"
)

// Provider 平台运营方模型 - SaaS供应商（可白标），下辖多个租户
type Provider struct {
	BaseModel
	Name      string `json:"name" gorm:"not null;size:100"`
	LegalName string `json:"legal_name" gorm:"size:200"`
	Email     string `json:"email" gorm:"size:100"`
	Domain    string `json:"domain" gorm:"size:100"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (p *Provider) TableName() string {
	return "providers"
}

// ProviderUser 运营方用户模型
// 与租户用户是完全独立的主体类型，权限直接挂在用户上，不经过角色
type ProviderUser struct {
	BaseModel
	ProviderID   uint                        `json:"provider_id" gorm:"not null;index"`
	FirstName    string                      `json:"first_name" gorm:"not null;size:50"`
	LastName     string                      `json:"last_name" gorm:"not null;size:50"`
	Email        string                      `json:"email" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string                      `json:"-" gorm:"not null;size:255"`
	Permissions  datatypes.JSONSlice[string] `json:"permissions" gorm:"type:jsonb"`
	IsActive     bool                        `json:"is_active" gorm:"default:true"`

	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

// TableName 表名
func (u *ProviderUser) TableName() string {
	return "provider_users"
}

// SetPassword 设置密码
func (u *ProviderUser) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码（bcrypt内部为常数时间比较）
func (u *ProviderUser) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HasAnyPermission 检查是否持有任一权限（OR语义）
func (u *ProviderUser) HasAnyPermission(codes ...string) bool {
	for _, code := range codes {
		for _, held := range u.Permissions {
			if held == code {
				return true
			}
		}
	}
	return false
}

// 运营方权限常量
const (
	ProviderPermTenantCreate  = "tenants.create"
	ProviderPermTenantRead    = "tenants.read"
	ProviderPermTenantUpdate  = "tenants.update"
	ProviderPermTenantDelete  = "tenants.delete"
	ProviderPermManageUsers   = "tenants.manage_users"
	ProviderPermManageRoles   = "tenants.manage_roles"
	ProviderPermTenantMetrics = "tenants.metrics"
)

// AllProviderPermissions 运营方权限全集
func AllProviderPermissions() []string {
	return []string{
		ProviderPermTenantCreate,
		ProviderPermTenantRead,
		ProviderPermTenantUpdate,
		ProviderPermTenantDelete,
		ProviderPermManageUsers,
		ProviderPermManageRoles,
		ProviderPermTenantMetrics,
	}
}
