package service

import (
	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/repository"
)

// CartLineView 购物车行视图。目录商品行以目录实时价展示；
// 定制商品行展示内嵌快照。目录商品已下架时 Degraded 为 true。
type CartLineView struct {
	ID        uint            `json:"id"`
	ProductID *uint           `json:"product_id,omitempty"`
	Variant   string          `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	LineTotal models.Money    `json:"line_total"`
	Custom    models.JSON     `json:"custom,omitempty"`
	Product   *models.Product `json:"product,omitempty"`
	Degraded  bool            `json:"degraded,omitempty"`
}

// CartView 购物车视图
type CartView struct {
	CartID uint           `json:"cart_id"`
	Items  []CartLineView `json:"items"`
	Total  models.Money   `json:"total"`
}

// AddCatalogItemInput 添加目录商品输入
type AddCatalogItemInput struct {
	ProductID uint
	Variant   string
	Quantity  int
}

// AddCustomItemInput 添加定制商品输入
type AddCustomItemInput struct {
	Payload  models.JSON
	Quantity int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// lineShapeValid 校验购物车行的互斥形态：目录字段与定制快照必须恰有其一。
// service 层写入时由构造保证，读取时防御性复核，拦截越过 service 写入的脏行。
func lineShapeValid(item models.CartItem) bool {
	hasProduct := item.ProductID != nil
	hasCustom := len(item.CustomJSON) > 0
	return hasProduct != hasCustom
}

// ensureCart 获取归属者购物车，不存在时惰性创建
func (s *CartService) ensureCart(owner Owner) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{OwnerType: owner.Type, OwnerRef: owner.Ref}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddCatalogItem 添加目录商品行。相同 (product_id, variant) 不产生新行，
// 而是累加数量；创建与累加都受单行上限约束。
func (s *CartService) AddCatalogItem(owner Owner, input AddCatalogItemInput) error {
	if input.Quantity < 1 || input.Quantity > constants.CartMaxQuantity {
		return ErrQuantityInvalid
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}

	cart, err := s.ensureCart(owner)
	if err != nil {
		return err
	}

	existing, err := s.cartRepo.FindCatalogItem(cart.ID, input.ProductID, input.Variant)
	if err != nil {
		return err
	}
	if existing != nil {
		merged := existing.Quantity + input.Quantity
		if merged > constants.CartMaxQuantity {
			return ErrCartQuantityLimit
		}
		return s.cartRepo.UpdateItemQuantity(existing.ID, merged)
	}

	productID := input.ProductID
	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: &productID,
		Variant:   input.Variant,
		Quantity:  input.Quantity,
	}
	return s.cartRepo.CreateItem(item)
}

// AddCustomItem 添加定制商品行。定制行从不去重，每次都追加新行；
// 价格取自客户端提交的快照（payload 必须带 offer_price）。
func (s *CartService) AddCustomItem(owner Owner, input AddCustomItemInput) error {
	if input.Quantity < 1 {
		return ErrQuantityInvalid
	}
	if len(input.Payload) == 0 {
		return ErrCustomPayloadInvalid
	}
	if _, err := customPayloadPrice(input.Payload); err != nil {
		return err
	}

	cart, err := s.ensureCart(owner)
	if err != nil {
		return err
	}
	item := &models.CartItem{
		CartID:     cart.ID,
		Quantity:   input.Quantity,
		CustomJSON: input.Payload,
	}
	return s.cartRepo.CreateItem(item)
}

// SetQuantity 修改购物车行数量。数量越界时直接报错，原行保持不变。
// 定制行不受目录上限约束。
func (s *CartService) SetQuantity(owner Owner, itemID uint, quantity int) error {
	if quantity < 1 {
		return ErrQuantityInvalid
	}
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartItemNotFound
	}
	item, err := s.cartRepo.GetItem(cart.ID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	if !item.IsCustom() && quantity > constants.CartMaxQuantity {
		return ErrQuantityInvalid
	}
	return s.cartRepo.UpdateItemQuantity(item.ID, quantity)
}

// RemoveItem 删除购物车行。行不存在时报错而非静默成功，
// 调用方可区分"已删除"与"本次删除"。
func (s *CartService) RemoveItem(owner Owner, itemID uint) error {
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartItemNotFound
	}
	item, err := s.cartRepo.GetItem(cart.ID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.DeleteItem(item.ID)
}

// ReadCart 读取购物车并联表计价。目录行取目录实时价，
// 定制行取内嵌快照价；目录商品已删除/下架的行降级展示而不整体失败。
func (s *CartService) ReadCart(owner Owner) (*CartView, error) {
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: []CartLineView{}}
	if cart == nil {
		return view, nil
	}
	view.CartID = cart.ID

	total := models.Money{}
	for _, item := range cart.Items {
		if !lineShapeValid(item) {
			return nil, ErrCartItemShapeInvalid
		}
		line := CartLineView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			Custom:    item.CustomJSON,
		}
		if item.IsCustom() {
			price, err := customPayloadPrice(item.CustomJSON)
			if err == nil {
				line.UnitPrice = price
			}
		} else {
			product := item.Product
			if product == nil || product.ID == 0 || !product.IsActive {
				line.Degraded = true
			} else {
				line.UnitPrice = product.OfferPrice
				line.Product = product
			}
		}
		line.LineTotal = models.NewMoneyFromDecimal(line.UnitPrice.Decimal.Mul(quantityDecimal(item.Quantity)))
		total = models.NewMoneyFromDecimal(total.Decimal.Add(line.LineTotal.Decimal))
		view.Items = append(view.Items, line)
	}
	view.Total = total
	return view, nil
}

// Clear 清空并销毁归属者的购物车
func (s *CartService) Clear(owner Owner) error {
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.DeleteCart(cart.ID)
}
