package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 基础模型
// DeletedAt承载全局软删除语义：所有查询默认过滤已删除记录，删除只打标记不落物理删除
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
