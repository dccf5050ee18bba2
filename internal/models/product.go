package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`                              // 主键
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`                 // 分类ID
	UserID          uint           `gorm:"not null;index" json:"user_id"`                     // 提供方用户ID
	StoreName       string         `gorm:"not null;index" json:"store_name"`                  // 所属店铺名
	Name            string         `gorm:"not null" json:"name"`                              // 商品名称
	Description     string         `json:"description"`                                       // 描述
	Price           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	Images          StringArray    `gorm:"type:json" json:"images"`                           // 图片数组
	Stock           int            `gorm:"not null;default:0" json:"stock"`                   // 库存
	DeliveryStatus  string         `gorm:"index" json:"delivery_status,omitempty"`            // 最近一次配送终态标记
	LastDeliveredAt *time.Time     `json:"last_delivered_at,omitempty"`                       // 最近送达时间
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`               // 是否上架
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                 // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间

	// 关联
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
