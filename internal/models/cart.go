package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车表（游客与用户各至多一张）
type Cart struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                               // 主键
	OwnerType string         `gorm:"type:varchar(16);not null;uniqueIndex:idx_cart_owner" json:"owner_type"` // 归属类型（user/guest）
	OwnerRef  string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_owner" json:"owner_ref"`  // 归属标识（用户ID或游客UUID）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                                         // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}
