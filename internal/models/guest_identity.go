package models

import "time"

// GuestIdentity 游客身份表（cookie 中的匿名标识）
type GuestIdentity struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"` // UUID 主键
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`      // 过期时间
	CreatedAt time.Time `gorm:"index" json:"created_at"`               // 创建时间
}

// TableName 指定表名
func (GuestIdentity) TableName() string {
	return "guest_identities"
}

// Expired 判断身份是否已过期
func (g GuestIdentity) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}
