package service

import (
	"context"
	"errors"

	"github.com/sgtmake/storefront-api/internal/checkout"
	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/payment/razorpay"
	"github.com/sgtmake/storefront-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentIntent 返回给客户端的支付参数。此时资金尚未发生流转。
type PaymentIntent struct {
	OrderID        uint         `json:"order_id"`
	GatewayOrderID string       `json:"gateway_order_id"`
	GatewayKeyID   string       `json:"gateway_key_id"`
	Amount         models.Money `json:"amount"`
	AmountSubunits int64        `json:"amount_subunits"`
	Currency       string       `json:"currency"`
	Receipt        string       `json:"receipt"`
}

// BuildOrderInput 下单输入。Selection 非空表示快照结算（立即购买），
// 为空表示以用户实时购物车结算。
type BuildOrderInput struct {
	UserID    uint
	AddressID uint
	ClientIP  string
	Selection *checkout.Selection
}

// OrderService 订单与支付意向构建服务
type OrderService struct {
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
}

// NewOrderService 创建订单服务
func NewOrderService(
	cfg *config.Config,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
) *OrderService {
	return &OrderService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
	}
}

func (s *OrderService) gatewayConfig() *razorpay.Config {
	return &razorpay.Config{
		KeyID:     s.cfg.Razorpay.KeyID,
		KeySecret: s.cfg.Razorpay.KeySecret,
		Currency:  s.cfg.Razorpay.Currency,
		BaseURL:   s.cfg.Razorpay.BaseURL,
		TimeoutMS: s.cfg.Razorpay.TimeoutMS,
	}
}

// BuildPendingOrder 构建待支付订单与网关支付意向。
// 目录行价格以此刻目录为准重新读取，从不信任客户端提交的目录价；
// 定制行使用内嵌快照价。网关下单失败则不落任何本地订单（fail closed）。
func (s *OrderService) BuildPendingOrder(ctx context.Context, input BuildOrderInput) (*PaymentIntent, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}
	if input.AddressID == 0 {
		return nil, ErrAddressRequired
	}
	address, err := s.addressRepo.GetByIDAndUser(input.AddressID, input.UserID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	var items []models.OrderItem
	fromCart := false
	if input.Selection != nil {
		items, err = s.resolveSelectionLines(*input.Selection)
	} else {
		fromCart = true
		items, err = s.resolveCartLines(input.UserID)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	total := models.Money{}
	for _, item := range items {
		total = models.NewMoneyFromDecimal(total.Decimal.Add(item.TotalPrice.Decimal))
	}

	receipt := "rcpt_" + uuid.NewString()
	gatewayResult, err := razorpay.CreateOrder(ctx, s.gatewayConfig(), razorpay.CreateInput{
		AmountSmallestUnit: total.SmallestUnit(),
		Currency:           s.cfg.Razorpay.Currency,
		Receipt:            receipt,
	})
	if err != nil {
		logger.Errorw("gateway_order_create_failed", "user_id", input.UserID, "receipt", receipt, "error", err)
		if errors.Is(err, razorpay.ErrResponseInvalid) {
			return nil, ErrGatewayResponseInvalid
		}
		return nil, ErrGatewayRequestFailed
	}

	order := &models.Order{
		GatewayOrderID: gatewayResult.OrderID,
		Receipt:        receipt,
		UserID:         input.UserID,
		AddressID:      address.ID,
		Status:         constants.OrderStatusPending,
		Currency:       gatewayResult.Currency,
		TotalAmount:    total,
		FromCart:       fromCart,
		ClientIP:       input.ClientIP,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items)
	})
	if err != nil {
		// 网关订单已创建而本地落库失败：留下孤儿网关订单，
		// 只能依赖客户端重试或网关失败回调事后回收
		logger.Errorw("order_persist_failed",
			"user_id", input.UserID,
			"gateway_order_id", gatewayResult.OrderID,
			"error", err,
		)
		return nil, err
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"gateway_order_id", order.GatewayOrderID,
		"user_id", input.UserID,
		"total", total.String(),
		"from_cart", fromCart,
	)

	return &PaymentIntent{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		GatewayKeyID:   s.cfg.Razorpay.KeyID,
		Amount:         total,
		AmountSubunits: total.SmallestUnit(),
		Currency:       order.Currency,
		Receipt:        receipt,
	}, nil
}

// resolveSelectionLines 把结算快照解析为订单行
func (s *OrderService) resolveSelectionLines(selection checkout.Selection) ([]models.OrderItem, error) {
	if err := selection.Validate(); err != nil {
		return nil, ErrQuantityInvalid
	}
	quantity := selection.Quantity
	if quantity < 1 {
		quantity = 1
	}

	if selection.Mode == constants.SnapshotModeCustom {
		payload := models.JSON(selection.Payload)
		price, err := customPayloadPrice(payload)
		if err != nil {
			return nil, err
		}
		return []models.OrderItem{{
			Name:       customPayloadTitle(payload),
			BasePrice:  price,
			OfferPrice: price,
			Quantity:   quantity,
			TotalPrice: models.NewMoneyFromDecimal(price.Decimal.Mul(quantityDecimal(quantity))),
			CustomJSON: payload,
		}}, nil
	}

	product, err := s.productRepo.GetByID(selection.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}
	productID := product.ID
	return []models.OrderItem{{
		ProductID:  &productID,
		Variant:    selection.Variant,
		Name:       product.Name,
		BasePrice:  product.BasePrice,
		OfferPrice: product.OfferPrice,
		Quantity:   quantity,
		TotalPrice: models.NewMoneyFromDecimal(product.OfferPrice.Decimal.Mul(quantityDecimal(quantity))),
	}}, nil
}

// resolveCartLines 把用户实时购物车解析为订单行
func (s *OrderService) resolveCartLines(userID uint) ([]models.OrderItem, error) {
	owner := UserOwner(userID)
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		if !lineShapeValid(line) {
			return nil, ErrCartItemShapeInvalid
		}
		quantity := line.Quantity
		if quantity < 1 {
			quantity = 1
		}
		if line.IsCustom() {
			price, err := customPayloadPrice(line.CustomJSON)
			if err != nil {
				return nil, err
			}
			items = append(items, models.OrderItem{
				Name:       customPayloadTitle(line.CustomJSON),
				BasePrice:  price,
				OfferPrice: price,
				Quantity:   quantity,
				TotalPrice: models.NewMoneyFromDecimal(price.Decimal.Mul(quantityDecimal(quantity))),
				CustomJSON: line.CustomJSON,
			})
			continue
		}
		product, err := s.productRepo.GetByID(*line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotAvailable
		}
		productID := product.ID
		items = append(items, models.OrderItem{
			ProductID:  &productID,
			Variant:    line.Variant,
			Name:       product.Name,
			BasePrice:  product.BasePrice,
			OfferPrice: product.OfferPrice,
			Quantity:   quantity,
			TotalPrice: models.NewMoneyFromDecimal(product.OfferPrice.Decimal.Mul(quantityDecimal(quantity))),
		})
	}
	return items, nil
}

// GetUserOrder 获取用户订单详情
func (s *OrderService) GetUserOrder(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders 查询用户订单列表
func (s *OrderService) ListUserOrders(userID uint, page, pageSize int, status string) ([]models.Order, int64, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   status,
	})
}