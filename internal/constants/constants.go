package constants

// 订单状态常量
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// 购物车归属类型常量
const (
	CartOwnerTypeUser  = "user"
	CartOwnerTypeGuest = "guest"
)

// 购物车规则常量
const (
	// CartMaxQuantity 目录商品单行数量上限（加入与累加均生效）
	CartMaxQuantity = 10
)

// 支付方式常量
const (
	PaymentMethodRazorpay = "razorpay"
)

// 结算快照模式常量
const (
	SnapshotModeDirect = "direct"
	SnapshotModeCustom = "custom"
)

// 客户端令牌（Cookie）常量
const (
	GuestCookieName    = "guest_id"
	SnapshotCookieName = "checkout_snapshot"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskOrderPaidEmail = "email:order_paid"
	TaskGuestIdentGC   = "guest:purge_expired"
)
