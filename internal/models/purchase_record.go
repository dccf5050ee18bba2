package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// PurchaseItem 购买记录行项目快照
type PurchaseItem struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    Money  `json:"unit_price"`
	LineSubtotal Money  `json:"line_subtotal"`
	StoreName    string `json:"store_name"`
	Image        string `json:"image,omitempty"`
}

// PurchaseItems 行项目集合（整体存储为 JSON 文档）
type PurchaseItems []PurchaseItem

// Value 实现 driver.Valuer 接口
func (p PurchaseItems) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan 实现 sql.Scanner 接口
func (p *PurchaseItems) Scan(value interface{}) error {
	if value == nil {
		*p = PurchaseItems{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// ShippingAddress 收货地址快照
type ShippingAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
}

// Value 实现 driver.Valuer 接口
func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// PurchaseRecord 购买记录表（结账快照，创建后不再修改）
type PurchaseRecord struct {
	ID              uint            `gorm:"primarykey" json:"id"`                                   // 主键
	OrderID         string          `gorm:"uniqueIndex;not null" json:"order_id"`                   // 外部订单编号（调用方提供）
	UserID          uint            `gorm:"index;not null" json:"user_id"`                          // 购买用户ID
	Email           string          `gorm:"not null" json:"email"`                                  // 购买时邮箱快照
	Items           PurchaseItems   `gorm:"type:json;not null" json:"items"`                        // 行项目快照
	Subtotal        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`  // 小计
	Tax             Money           `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`       // 税费
	Total           Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total"`     // 总额
	ShippingAddress ShippingAddress `gorm:"type:json;not null" json:"shipping_address"`             // 收货地址快照
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (PurchaseRecord) TableName() string {
	return "purchase_records"
}
