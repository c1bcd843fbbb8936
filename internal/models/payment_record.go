package models

import "time"

// PaymentRecord 支付记录。仅在签名验证通过后写入，与已支付订单一一对应，
// 作为审计凭证不做更新。
type PaymentRecord struct {
	ID               uint      `gorm:"primarykey" json:"id"`                           // 主键
	OrderID          uint      `gorm:"uniqueIndex;not null" json:"order_id"`           // 订单ID
	GatewayOrderID   string    `gorm:"index;not null" json:"gateway_order_id"`         // 网关订单号
	GatewayPaymentID string    `gorm:"uniqueIndex;not null" json:"gateway_payment_id"` // 网关支付流水号
	GatewaySignature string    `gorm:"not null" json:"-"`                              // 回调签名原文
	Method           string    `gorm:"type:varchar(32);not null" json:"method"`        // 支付方式
	Amount           Money     `gorm:"type:decimal(20,2);not null" json:"amount"`      // 支付金额
	Currency         string    `gorm:"not null" json:"currency"`                       // 币种
	VerifiedAt       time.Time `gorm:"index;not null" json:"verified_at"`              // 验签通过时间
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                        // 创建时间
}

// TableName 指定表名
func (PaymentRecord) TableName() string {
	return "payment_records"
}
