package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项。目录商品行填 ProductID+Variant，
// 定制商品行填 CustomJSON，两者互斥（由 service 层保证）。
type CartItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`            // 主键
	CartID     uint           `gorm:"index;not null" json:"cart_id"`   // 购物车ID
	ProductID  *uint          `gorm:"index" json:"product_id"`         // 商品ID（目录商品行）
	Variant    string         `gorm:"type:varchar(64)" json:"variant"` // 规格（目录商品行）
	Quantity   int            `gorm:"not null" json:"quantity"`        // 数量
	CustomJSON JSON           `gorm:"type:json" json:"custom"`         // 定制配置快照（定制商品行，含价格）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`         // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`         // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                  // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// IsCustom 判断是否为定制商品行
func (c CartItem) IsCustom() bool {
	return c.ProductID == nil
}
