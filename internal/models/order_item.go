package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表，下单时固化价格与名称快照
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID  *uint          `gorm:"index" json:"product_id"`                                  // 商品ID（目录商品行）
	Variant    string         `gorm:"type:varchar(64)" json:"variant"`                          // 规格
	Name       string         `gorm:"not null" json:"name"`                                     // 商品名称快照
	BasePrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_price"`  // 下单时标价
	OfferPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"offer_price"` // 下单时成交价
	Quantity   int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CustomJSON JSON           `gorm:"type:json" json:"custom"`                                  // 定制配置快照
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// IsCustom 判断是否为定制商品行
func (o OrderItem) IsCustom() bool {
	return o.ProductID == nil
}
