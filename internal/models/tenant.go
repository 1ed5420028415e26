package models

import "gorm.io/datatypes"

// Tenant 租户（学校）模型 - 数据隔离的基本单位
type Tenant struct {
	BaseModel
	ProviderID         uint              `json:"provider_id" gorm:"not null;index"`
	Name               string            `json:"name" gorm:"not null;size:100"`
	Slug               string            `json:"slug" gorm:"uniqueIndex;not null;size:100"`
	SubscriptionPlan   string            `json:"subscription_plan" gorm:"default:'basic';size:50"`
	Status             string            `json:"status" gorm:"default:'active';size:20"`
	Settings           datatypes.JSONMap `json:"settings" gorm:"type:jsonb"` // 品牌、语言等租户级配置
	PrimaryAdminUserID *uint             `json:"primary_admin_user_id"`      // 开通时创建的管理员，冗余指针便于快速定位

	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusActive    = "active"
	TenantStatusInactive  = "inactive"
	TenantStatusSuspended = "suspended"
)
