package repository

import (
	"errors"
	"time"

	"github.com/sgtmake/storefront-api/internal/models"

	"gorm.io/gorm"
)

// GuestIdentityRepository 游客身份数据访问接口
type GuestIdentityRepository interface {
	Create(identity *models.GuestIdentity) error
	GetByID(id string) (*models.GuestIdentity, error)
	ConsumeByID(id string) (int64, error)
	DeleteExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormGuestIdentityRepository
}

// GormGuestIdentityRepository GORM 实现
type GormGuestIdentityRepository struct {
	db *gorm.DB
}

// NewGuestIdentityRepository 创建游客身份仓库
func NewGuestIdentityRepository(db *gorm.DB) *GormGuestIdentityRepository {
	return &GormGuestIdentityRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGuestIdentityRepository) WithTx(tx *gorm.DB) *GormGuestIdentityRepository {
	if tx == nil {
		return r
	}
	return &GormGuestIdentityRepository{db: tx}
}

// Create 创建游客身份
func (r *GormGuestIdentityRepository) Create(identity *models.GuestIdentity) error {
	return r.db.Create(identity).Error
}

// GetByID 根据 ID 获取游客身份
func (r *GormGuestIdentityRepository) GetByID(id string) (*models.GuestIdentity, error) {
	var identity models.GuestIdentity
	if err := r.db.First(&identity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

// ConsumeByID 条件删除游客身份，返回删除行数。
// 合并时以删除行数判断是否首个成功的合并（0 行表示已被并发合并消费）。
func (r *GormGuestIdentityRepository) ConsumeByID(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&models.GuestIdentity{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteExpired 清理已过期的游客身份，返回删除行数
func (r *GormGuestIdentityRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.GuestIdentity{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
