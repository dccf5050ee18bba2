package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类表
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`             // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"` // 唯一标识
	Name        string         `gorm:"not null" json:"name"`             // 分类名称
	Description string         `json:"description"`                      // 描述
	Image       string         `json:"image"`                            // 分类图片
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
