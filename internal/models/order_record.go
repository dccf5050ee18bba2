package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// GroupItem 店铺分组内的行项目
type GroupItem struct {
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice Money `json:"unit_price"`
}

// StatusEvent 配送状态历史条目（只追加，不修改）
type StatusEvent struct {
	Status    string    `json:"status"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingInfo 配送跟踪信息
type TrackingInfo struct {
	Carrier           string        `json:"carrier,omitempty"`
	TrackingNumber    string        `json:"tracking_number,omitempty"`
	CurrentLocation   string        `json:"current_location,omitempty"`
	LastUpdated       time.Time     `json:"last_updated"`
	EstimatedDelivery *time.Time    `json:"estimated_delivery,omitempty"`
	StatusHistory     []StatusEvent `json:"status_history"`
}

// StoreGroup 店铺分组（一个订单按店铺拆分出的子包裹）
type StoreGroup struct {
	StoreName     string       `json:"store_name"`
	City          string       `json:"city"`
	Items         []GroupItem  `json:"items"`
	PackingID     string       `json:"packing_id"`
	PackingStatus string       `json:"packing_status"`
	Status        string       `json:"status"`
	TrackingInfo  TrackingInfo `json:"tracking_info"`
	DeliveredAt   *time.Time   `json:"delivered_at,omitempty"`
}

// StoreGroups 店铺分组集合（整体存储为 JSON 文档）
type StoreGroups []StoreGroup

// Value 实现 driver.Valuer 接口
func (g StoreGroups) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	return json.Marshal(g)
}

// Scan 实现 sql.Scanner 接口
func (g *StoreGroups) Scan(value interface{}) error {
	if value == nil {
		*g = StoreGroups{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, g)
}

// OrderNote 订单备注条目
type OrderNote struct {
	Message   string    `json:"message"`
	Type      string    `json:"type"` // system/user/admin
	Timestamp time.Time `json:"timestamp"`
}

// OrderNotes 订单备注集合（只追加）
type OrderNotes []OrderNote

// Value 实现 driver.Valuer 接口
func (n OrderNotes) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	return json.Marshal(n)
}

// Scan 实现 sql.Scanner 接口
func (n *OrderNotes) Scan(value interface{}) error {
	if value == nil {
		*n = OrderNotes{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, n)
}

// OrderRecord 订单记录表（由购买记录派生的可变跟踪视图）
type OrderRecord struct {
	ID          uint        `gorm:"primarykey" json:"id"`                                      // 主键
	OrderID     string      `gorm:"uniqueIndex;not null" json:"order_id"`                      // 订单编号（与购买记录一致）
	PurchaseID  uint        `gorm:"index;not null" json:"purchase_id"`                         // 购买记录回引
	UserID      uint        `gorm:"index;not null" json:"user_id"`                             // 购买用户ID
	StoreGroups StoreGroups `gorm:"type:json;not null" json:"store_groups"`                    // 店铺分组
	TotalAmount Money       `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额
	Notes       OrderNotes  `gorm:"type:json" json:"notes"`                                    // 备注日志
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time   `gorm:"index" json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (OrderRecord) TableName() string {
	return "order_records"
}
