package constants

// 配送状态常量（店铺分组粒度）
const (
	DeliveryStatusPending        = "pending"
	DeliveryStatusProcessing     = "processing"
	DeliveryStatusInTransit      = "in_transit"
	DeliveryStatusOutForDelivery = "out_for_delivery"
	DeliveryStatusDelivered      = "delivered"
	DeliveryStatusCancelled      = "cancelled"
)

// 打包状态常量（配送状态的粗粒度视图）
const (
	PackingStatusPending   = "pending"
	PackingStatusPacked    = "packed"
	PackingStatusInTransit = "in_transit"
	PackingStatusDelivered = "delivered"
)

// 订单备注类型常量
const (
	OrderNoteTypeSystem = "system"
	OrderNoteTypeUser   = "user"
	OrderNoteTypeAdmin  = "admin"
)

// 用户状态常量
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// 邮箱验证码用途常量
const (
	VerifyPurposeRegister = "register"
	VerifyPurposeReset    = "reset"
)

// 异步任务常量
const (
	QueueDefault            = "default"
	TaskDeliveryStatusEmail = "order:delivery_status_email"
)

// 打包编号前缀
const PackingIDPrefix = "PKG-"
