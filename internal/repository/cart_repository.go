package repository

import (
	"errors"

	"github.com/sgtmake/storefront-api/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByOwner(ownerType, ownerRef string) (*models.Cart, error)
	Create(cart *models.Cart) error
	GetItem(cartID, itemID uint) (*models.CartItem, error)
	FindCatalogItem(cartID, productID uint, variant string) (*models.CartItem, error)
	ListItems(cartID uint) ([]models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItemQuantity(itemID uint, quantity int) error
	MoveItem(itemID, toCartID uint) error
	DeleteItem(itemID uint) error
	ReassignOwner(cartID uint, ownerType, ownerRef string) error
	DeleteCart(cartID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByOwner 获取归属者的购物车（含购物车项与商品）
func (r *GormCartRepository) GetByOwner(ownerType, ownerRef string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Items.Product").
		Where("owner_type = ? AND owner_ref = ?", ownerType, ownerRef).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Create(cart).Error
}

// GetItem 获取指定购物车内的购物车项
func (r *GormCartRepository) GetItem(cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindCatalogItem 查找购物车内相同 (product_id, variant) 的目录商品行
func (r *GormCartRepository) FindCatalogItem(cartID, productID uint, variant string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ? AND variant = ?", cartID, productID, variant).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems 获取购物车项列表（按插入顺序）
func (r *GormCartRepository) ListItems(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem 创建购物车项
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateItemQuantity 更新购物车项数量
func (r *GormCartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

// MoveItem 把购物车项挪到另一张购物车
func (r *GormCartRepository) MoveItem(itemID, toCartID uint) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Update("cart_id", toCartID).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(itemID uint) error {
	return r.db.Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// ReassignOwner 整车改挂新的归属者
func (r *GormCartRepository) ReassignOwner(cartID uint, ownerType, ownerRef string) error {
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"owner_type": ownerType,
		"owner_ref":  ownerRef,
	}).Error
}

// DeleteCart 删除购物车及其全部购物车项
func (r *GormCartRepository) DeleteCart(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", cartID).Delete(&models.Cart{}).Error
}
