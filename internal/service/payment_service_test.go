package service

import (
	"errors"
	"testing"

	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/payment/razorpay"
	"github.com/sgtmake/storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testGatewaySecret = "test_gateway_secret"

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:paymentsvc?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{}, &models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.PaymentRecord{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"payment_records", "order_items", "orders", "cart_items", "carts", "products"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset table %s failed: %v", table, err)
		}
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.Razorpay.KeyID = "rzp_test_key"
	cfg.Razorpay.KeySecret = testGatewaySecret
	cfg.Razorpay.Currency = "INR"

	svc := NewPaymentService(
		cfg,
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		repository.NewPaymentRecordRepository(db),
		nil,
	)
	return svc, db
}

func createPendingOrder(t *testing.T, db *gorm.DB, gatewayOrderID string, items []models.OrderItem) *models.Order {
	t.Helper()
	order := &models.Order{
		GatewayOrderID: gatewayOrderID,
		Receipt:        "rcpt_" + gatewayOrderID,
		UserID:         1,
		AddressID:      1,
		Status:         constants.OrderStatusPending,
		Currency:       "INR",
		TotalAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1999)),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			t.Fatalf("create order items failed: %v", err)
		}
	}
	return order
}

func signedCallback(orderID, paymentID string) *razorpay.CallbackData {
	return &razorpay.CallbackData{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: razorpay.Sign(orderID, paymentID, testGatewaySecret),
	}
}

func productStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product.Stock
}

func TestVerifyCallbackRejectsForgedSignature(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	product := createTestProduct(t, db, "pay-forged", 1999, true)
	productID := product.ID
	order := createPendingOrder(t, db, "order_forged", []models.OrderItem{
		{ProductID: &productID, Quantity: 2, TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(3998))},
	})

	data := &razorpay.CallbackData{
		OrderID:   "order_forged",
		PaymentID: "pay_x",
		Signature: razorpay.Sign("order_forged", "pay_x", "wrong_secret"),
	}
	if _, err := svc.VerifyCallback(data); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("want ErrSignatureMismatch got %v", err)
	}

	// 验签失败不得触碰订单和库存
	var got models.Order
	if err := db.First(&got, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.Status != constants.OrderStatusPending {
		t.Fatalf("order status want pending got %s", got.Status)
	}
	if stock := productStock(t, db, product.ID); stock != 100 {
		t.Fatalf("stock want 100 got %d", stock)
	}
}

func TestVerifyCallbackFinalizesOrderOnce(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	product := createTestProduct(t, db, "pay-once", 1999, true)
	productID := product.ID
	order := createPendingOrder(t, db, "order_once", []models.OrderItem{
		{ProductID: &productID, Quantity: 2, TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(3998))},
	})

	result, err := svc.VerifyCallback(signedCallback("order_once", "pay_1"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.AlreadyHandled {
		t.Fatalf("first callback should not be already handled")
	}
	if result.Status != constants.OrderStatusPaid {
		t.Fatalf("status want paid got %s", result.Status)
	}

	var got models.Order
	if err := db.First(&got, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.Status != constants.OrderStatusPaid || got.PaidAt == nil {
		t.Fatalf("order should be paid with paid_at set: %+v", got)
	}
	if stock := productStock(t, db, product.ID); stock != 98 {
		t.Fatalf("stock want 98 got %d", stock)
	}
	var records []models.PaymentRecord
	if err := db.Where("order_id = ?", order.ID).Find(&records).Error; err != nil {
		t.Fatalf("load records failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("payment record count want 1 got %d", len(records))
	}
	if records[0].Method != constants.PaymentMethodRazorpay {
		t.Fatalf("record method want razorpay got %q", records[0].Method)
	}
	if records[0].GatewayPaymentID != "pay_1" {
		t.Fatalf("record payment id want pay_1 got %q", records[0].GatewayPaymentID)
	}

	// 重复投递：幂等返回，库存不再扣减
	dup, err := svc.VerifyCallback(signedCallback("order_once", "pay_1"))
	if err != nil {
		t.Fatalf("duplicate verify failed: %v", err)
	}
	if !dup.AlreadyHandled {
		t.Fatalf("duplicate callback should report already handled")
	}
	if stock := productStock(t, db, product.ID); stock != 98 {
		t.Fatalf("stock after duplicate want 98 got %d", stock)
	}
}

func TestVerifyCallbackSkipsStockForCustomItems(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	product := createTestProduct(t, db, "pay-custom", 1999, true)
	createPendingOrder(t, db, "order_custom", []models.OrderItem{
		{Quantity: 3, CustomJSON: models.JSON{"title": "engraved", "offer_price": "500"}, TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1500))},
	})

	if _, err := svc.VerifyCallback(signedCallback("order_custom", "pay_2")); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if stock := productStock(t, db, product.ID); stock != 100 {
		t.Fatalf("custom items must not touch stock, want 100 got %d", stock)
	}
}

func TestVerifyCallbackClearsSourceCart(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	product := createTestProduct(t, db, "pay-cart", 1999, true)
	productID := product.ID

	owner := UserOwner(1)
	cart := &models.Cart{OwnerType: owner.Type, OwnerRef: owner.Ref}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if err := db.Create(&models.CartItem{CartID: cart.ID, ProductID: &productID, Quantity: 1}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	order := createPendingOrder(t, db, "order_cart", []models.OrderItem{
		{ProductID: &productID, Quantity: 1, TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1999))},
	})
	if err := db.Model(order).Update("from_cart", true).Error; err != nil {
		t.Fatalf("mark from_cart failed: %v", err)
	}

	if _, err := svc.VerifyCallback(signedCallback("order_cart", "pay_3")); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	var cartCount int64
	if err := db.Model(&models.Cart{}).Where("id = ?", cart.ID).Count(&cartCount).Error; err != nil {
		t.Fatalf("count carts failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("source cart should be destroyed after payment")
	}
}

func TestVerifyCallbackUnknownOrder(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t)
	if _, err := svc.VerifyCallback(signedCallback("order_missing", "pay_4")); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound got %v", err)
	}
}

func TestReportFailureDeletesPendingOrder(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	product := createTestProduct(t, db, "pay-fail", 1999, true)
	productID := product.ID
	order := createPendingOrder(t, db, "order_fail", []models.OrderItem{
		{ProductID: &productID, Quantity: 1, TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1999))},
	})

	if err := svc.ReportFailure("order_fail"); err != nil {
		t.Fatalf("report failure failed: %v", err)
	}

	var orderCount, itemCount, recordCount int64
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if err := db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if err := db.Model(&models.PaymentRecord{}).Where("order_id = ?", order.ID).Count(&recordCount).Error; err != nil {
		t.Fatalf("count records failed: %v", err)
	}
	if orderCount != 0 || itemCount != 0 || recordCount != 0 {
		t.Fatalf("order/items/records want 0/0/0 got %d/%d/%d", orderCount, itemCount, recordCount)
	}
	// 失败回报不扣库存
	if stock := productStock(t, db, product.ID); stock != 100 {
		t.Fatalf("stock want 100 got %d", stock)
	}
}

func TestReportFailureIgnoresSettledOrders(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	product := createTestProduct(t, db, "pay-settled", 1999, true)
	productID := product.ID
	order := createPendingOrder(t, db, "order_settled", []models.OrderItem{
		{ProductID: &productID, Quantity: 1, TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1999))},
	})

	if _, err := svc.VerifyCallback(signedCallback("order_settled", "pay_5")); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.ReportFailure("order_settled"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("failure on paid order want ErrOrderNotFound got %v", err)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("paid order must survive failure report")
	}
}
