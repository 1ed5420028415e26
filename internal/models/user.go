package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 租户用户模型
// 邮箱全局唯一：同一邮箱即使在不同租户下也不允许重复注册
type User struct {
	BaseModel
	TenantID     uint       `json:"tenant_id" gorm:"not null;index"`
	FirstName    string     `json:"first_name" gorm:"not null;size:50"`
	LastName     string     `json:"last_name" gorm:"not null;size:50"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Phone        *string    `json:"phone" gorm:"size:20"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Roles  []Role  `json:"roles,omitempty" gorm:"many2many:user_roles;"`
}

// UserRole 用户角色关联表
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	RoleID    uint      `gorm:"not null;index" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy uint      `json:"created_by"` // 谁分配的角色
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// SetPassword 设置密码
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码（bcrypt内部为常数时间比较）
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RoleNames 返回已加载角色的名称列表
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// HasRoleName 检查是否持有指定名称的角色（名称比较不区分大小写）
// 仅在Roles已解析时可靠，未解析时由服务层负责补查
func (u *User) HasRoleName(name string) bool {
	for _, role := range u.Roles {
		if strings.EqualFold(role.Name, name) {
			return true
		}
	}
	return false
}

// IsAdmin 是否持有ADMIN角色
func (u *User) IsAdmin() bool {
	return u.HasRoleName(RoleAdmin)
}

// IsTeacher 是否持有TEACHER角色
func (u *User) IsTeacher() bool {
	return u.HasRoleName(RoleTeacher)
}
