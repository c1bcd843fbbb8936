package repository

import (
	"errors"

	"github.com/sgtmake/storefront-api/internal/models"

	"gorm.io/gorm"
)

// PaymentRecordRepository 支付记录数据访问接口
type PaymentRecordRepository interface {
	Create(record *models.PaymentRecord) error
	GetByOrderID(orderID uint) (*models.PaymentRecord, error)
	WithTx(tx *gorm.DB) *GormPaymentRecordRepository
}

// GormPaymentRecordRepository GORM 实现
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewPaymentRecordRepository 创建支付记录仓库
func NewPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRecordRepository) WithTx(tx *gorm.DB) *GormPaymentRecordRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRecordRepository{db: tx}
}

// Create 写入支付记录
func (r *GormPaymentRecordRepository) Create(record *models.PaymentRecord) error {
	return r.db.Create(record).Error
}

// GetByOrderID 根据订单 ID 获取支付记录
func (r *GormPaymentRecordRepository) GetByOrderID(orderID uint) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.db.Where("order_id = ?", orderID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
