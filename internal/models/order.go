package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                      // 主键
	GatewayOrderID string         `gorm:"uniqueIndex;not null" json:"gateway_order_id"`              // 网关订单号（回调关联键）
	Receipt        string         `gorm:"uniqueIndex;not null" json:"receipt"`                       // 本地收据号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                             // 用户ID
	AddressID      uint           `gorm:"index;not null" json:"address_id"`                          // 收货地址ID
	Status         string         `gorm:"index;not null" json:"status"`                              // 订单状态（pending/paid）
	Currency       string         `gorm:"not null" json:"currency"`                                  // 币种
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 实付金额
	FromCart       bool           `gorm:"not null;default:false" json:"from_cart"`                   // 是否来源于购物车
	ClientIP       string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`               // 下单客户端IP
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`                                      // 支付时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
