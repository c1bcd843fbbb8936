package service

import (
	"time"

	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/payment/razorpay"
	"github.com/sgtmake/storefront-api/internal/queue"
	"github.com/sgtmake/storefront-api/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VerifyResult 回调处理结果
type VerifyResult struct {
	OrderID        uint   `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Status         string `json:"status"`
	AlreadyHandled bool   `json:"already_handled"`
}

// PaymentService 支付校验服务。
// 订单状态机：pending -> {paid | deleted}，两个终态之外没有其他迁移。
type PaymentService struct {
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	recordRepo  repository.PaymentRecordRepository
	queueClient *queue.Client
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	cfg *config.Config,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	recordRepo repository.PaymentRecordRepository,
	queueClient *queue.Client,
) *PaymentService {
	return &PaymentService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		recordRepo:  recordRepo,
		queueClient: queueClient,
	}
}

func (s *PaymentService) gatewayConfig() *razorpay.Config {
	return &razorpay.Config{
		KeyID:     s.cfg.Razorpay.KeyID,
		KeySecret: s.cfg.Razorpay.KeySecret,
		Currency:  s.cfg.Razorpay.Currency,
		BaseURL:   s.cfg.Razorpay.BaseURL,
		TimeoutMS: s.cfg.Razorpay.TimeoutMS,
	}
}

// VerifyCallback 校验支付完成回调并落定订单。
// 验签不通过时订单保持 pending 不被触碰（伪造回调绝不能落定订单）。
// 回调可能重复投递：受保护的状态迁移保证库存等副作用只生效一次。
func (s *PaymentService) VerifyCallback(data *razorpay.CallbackData) (*VerifyResult, error) {
	if data == nil || data.OrderID == "" {
		return nil, ErrSignatureMismatch
	}

	log := logger.SW("gateway_order_id", data.OrderID, "gateway_payment_id", data.PaymentID)
	log.Infow("payment_callback_received")

	if err := razorpay.VerifyCallback(s.gatewayConfig(), data); err != nil {
		log.Warnw("payment_callback_signature_mismatch")
		return nil, ErrSignatureMismatch
	}

	order, err := s.orderRepo.GetByGatewayOrderID(data.OrderID)
	if err != nil {
		log.Errorw("payment_callback_order_fetch_failed", "error", err)
		return nil, err
	}
	if order == nil {
		log.Warnw("payment_callback_order_not_found")
		return nil, ErrOrderNotFound
	}

	now := time.Now()
	var transitioned bool
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		rows, err := s.orderRepo.WithTx(tx).MarkPaidIfPending(order.ID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// 重复投递：已处理过，不再产生任何副作用
			return nil
		}
		transitioned = true
		return s.recordRepo.WithTx(tx).Create(&models.PaymentRecord{
			OrderID:          order.ID,
			GatewayOrderID:   data.OrderID,
			GatewayPaymentID: data.PaymentID,
			GatewaySignature: data.Signature,
			Method:           constants.PaymentMethodRazorpay,
			Amount:           order.TotalAmount,
			Currency:         order.Currency,
			VerifiedAt:       now,
		})
	})
	if err != nil {
		log.Errorw("payment_callback_finalize_failed", "order_id", order.ID, "error", err)
		return nil, err
	}

	if !transitioned {
		log.Infow("payment_callback_already_handled", "order_id", order.ID)
		return &VerifyResult{
			OrderID:        order.ID,
			GatewayOrderID: order.GatewayOrderID,
			Status:         order.Status,
			AlreadyHandled: true,
		}, nil
	}

	s.consumeStock(order, log)
	s.clearSourceCart(order, log)
	s.enqueuePaidNotification(order, log)

	log.Infow("payment_callback_processed", "order_id", order.ID)
	return &VerifyResult{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		Status:         constants.OrderStatusPaid,
	}, nil
}

// consumeStock 逐项扣减目录商品库存。每项独立、尽力而为：
// 单项失败只记日志，不影响其他项，也不影响已落定的支付结果。
func (s *PaymentService) consumeStock(order *models.Order, log *zap.SugaredLogger) {
	for _, item := range order.Items {
		if item.IsCustom() {
			continue
		}
		rows, err := s.productRepo.ConsumeStock(*item.ProductID, item.Quantity)
		if err != nil {
			log.Warnw("stock_consume_failed", "product_id", *item.ProductID, "quantity", item.Quantity, "error", err)
			continue
		}
		if rows == 0 {
			log.Warnw("stock_consume_insufficient", "product_id", *item.ProductID, "quantity", item.Quantity)
		}
	}
}

// clearSourceCart 订单来源于实时购物车时，支付成功后销毁该购物车
func (s *PaymentService) clearSourceCart(order *models.Order, log *zap.SugaredLogger) {
	if !order.FromCart {
		return
	}
	owner := UserOwner(order.UserID)
	cart, err := s.cartRepo.GetByOwner(owner.Type, owner.Ref)
	if err != nil {
		log.Warnw("source_cart_fetch_failed", "user_id", order.UserID, "error", err)
		return
	}
	if cart == nil {
		return
	}
	if err := s.cartRepo.DeleteCart(cart.ID); err != nil {
		log.Warnw("source_cart_clear_failed", "cart_id", cart.ID, "error", err)
	}
}

// enqueuePaidNotification 投递支付成功通知任务。
// 通知属于尽力而为的旁路协作方，失败只记日志，从不回卷支付结果。
func (s *PaymentService) enqueuePaidNotification(order *models.Order, log *zap.SugaredLogger) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderPaidEmail(queue.OrderPaidEmailPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
	}); err != nil {
		log.Warnw("order_paid_email_enqueue_failed", "order_id", order.ID, "error", err)
	}
}

// ReportFailure 处理网关报告的支付失败：补偿删除待支付订单。
// 删除由 pending 状态条件保护：失败回报可能与成功回调并发到达，
// 回调抢先落定时删除命中 0 行，已支付订单绝不被摧毁。
// 删除不可恢复，此后只能重新发起结算。
func (s *PaymentService) ReportFailure(gatewayOrderID string) error {
	if gatewayOrderID == "" {
		return ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByGatewayOrderID(gatewayOrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	var rows int64
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		rows, err = s.orderRepo.WithTx(tx).DeletePendingWithItems(order.ID)
		return err
	})
	if err != nil {
		logger.Errorw("payment_failure_compensate_failed", "order_id", order.ID, "error", err)
		return err
	}
	if rows == 0 {
		logger.Warnw("payment_failure_on_settled_order",
			"order_id", order.ID,
			"status", order.Status,
		)
		return ErrOrderNotFound
	}
	logger.Infow("payment_failure_order_deleted", "order_id", order.ID, "gateway_order_id", gatewayOrderID)
	return nil
}
