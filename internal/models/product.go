package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name        string         `gorm:"not null" json:"name"`                                      // 商品名称
	Description string         `gorm:"type:text" json:"description"`                              // 商品描述
	BasePrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_price"`  // 标价
	OfferPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"offer_price"` // 成交价（下单取此价）
	Images      StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Tags        StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	Variants    StringArray    `gorm:"type:json" json:"variants"`                                 // 可选规格（如颜色）
	Stock       int            `gorm:"not null;default:0" json:"stock"`                           // 库存数量
	Purchases   int64          `gorm:"not null;default:0" json:"purchases"`                       // 累计成交数量
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// HasVariant 判断商品是否包含指定规格
func (p Product) HasVariant(variant string) bool {
	if variant == "" {
		return len(p.Variants) == 0
	}
	for _, v := range p.Variants {
		if v == variant {
			return true
		}
	}
	return false
}
