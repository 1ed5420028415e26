package models

import "gorm.io/datatypes"

// Role 角色模型 - 租户内的权限字符串集合
// 角色承担两种正交职责：按名称做身份判定（ADMIN/TEACHER），按权限集做细粒度CRUD门禁
type Role struct {
	BaseModel
	TenantID    uint                        `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_roles_tenant_name"`
	Name        string                      `json:"name" gorm:"not null;size:50;uniqueIndex:idx_roles_tenant_name"`
	Description string                      `json:"description" gorm:"size:255"`
	Permissions datatypes.JSONSlice[string] `json:"permissions" gorm:"type:jsonb"`
	IsDefault   bool                        `json:"is_default" gorm:"default:false"` // 开通时种子角色，不可改名/删除

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName 表名
func (r *Role) TableName() string {
	return "roles"
}

// 默认角色名称常量（存储保留大小写，比较不区分大小写）
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
	RoleParent  = "PARENT"
)

// 权限操作常量，权限字符串遵循 <resource>.<action> 约定
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
