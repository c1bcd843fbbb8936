package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sgtmake/storefront-api/internal/checkout"
	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// fakeGateway 按请求顺序签发网关订单号的假网关
func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	counter := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"order_fake_%d","amount":0,"currency":"INR","status":"created"}`, counter)
	}))
}

func setupOrderServiceTest(t *testing.T, gatewayURL string) (*OrderService, *CartService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:ordersvc?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{}, &models.Cart{}, &models.CartItem{},
		&models.Address{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"order_items", "orders", "cart_items", "carts", "addresses", "products"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset table %s failed: %v", table, err)
		}
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.Razorpay.KeyID = "rzp_test_key"
	cfg.Razorpay.KeySecret = "rzp_test_secret"
	cfg.Razorpay.Currency = "INR"
	cfg.Razorpay.BaseURL = gatewayURL

	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderSvc := NewOrderService(
		cfg,
		repository.NewOrderRepository(db),
		cartRepo,
		productRepo,
		repository.NewAddressRepository(db),
	)
	return orderSvc, NewCartService(cartRepo, productRepo), db
}

func createTestAddress(t *testing.T, db *gorm.DB, userID uint) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:     userID,
		Name:       "Asha",
		Phone:      "9999999999",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	return address
}

func TestBuildPendingOrderFromSelection(t *testing.T) {
	gateway := fakeGateway(t)
	defer gateway.Close()
	svc, _, db := setupOrderServiceTest(t, gateway.URL)
	product := createTestProduct(t, db, "order-direct", 1999, true)
	address := createTestAddress(t, db, 5)

	intent, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{
		UserID:    5,
		AddressID: address.ID,
		Selection: &checkout.Selection{Mode: constants.SnapshotModeDirect, ProductID: product.ID, Variant: "red", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("build order failed: %v", err)
	}
	if intent.GatewayOrderID == "" || intent.Receipt == "" {
		t.Fatalf("intent missing gateway fields: %+v", intent)
	}
	if intent.Amount.String() != "3998.00" {
		t.Fatalf("amount want 3998.00 got %s", intent.Amount.String())
	}
	if intent.AmountSubunits != 399800 {
		t.Fatalf("subunits want 399800 got %d", intent.AmountSubunits)
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, intent.OrderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("order status want pending got %s", order.Status)
	}
	if order.FromCart {
		t.Fatalf("selection order must not be marked from_cart")
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("order items mismatch: %+v", order.Items)
	}
}

func TestBuildPendingOrderIgnoresClientCatalogPrice(t *testing.T) {
	gateway := fakeGateway(t)
	defer gateway.Close()
	svc, _, db := setupOrderServiceTest(t, gateway.URL)
	product := createTestProduct(t, db, "order-reprice", 1999, true)
	address := createTestAddress(t, db, 6)

	// 快照里没有价格可带，目录行价格只能来自此刻的目录
	intent, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{
		UserID:    6,
		AddressID: address.ID,
		Selection: &checkout.Selection{Mode: constants.SnapshotModeDirect, ProductID: product.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("build order failed: %v", err)
	}
	if intent.Amount.String() != "1999.00" {
		t.Fatalf("amount want catalog price 1999.00 got %s", intent.Amount.String())
	}
}

func TestBuildPendingOrderFromCart(t *testing.T) {
	gateway := fakeGateway(t)
	defer gateway.Close()
	svc, cartSvc, db := setupOrderServiceTest(t, gateway.URL)
	product := createTestProduct(t, db, "order-cart", 500, true)
	address := createTestAddress(t, db, 7)

	owner := UserOwner(7)
	if err := cartSvc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add catalog failed: %v", err)
	}
	if err := cartSvc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{"title": "decal", "offer_price": "100"}, Quantity: 3}); err != nil {
		t.Fatalf("add custom failed: %v", err)
	}

	intent, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{
		UserID:    7,
		AddressID: address.ID,
	})
	if err != nil {
		t.Fatalf("build order failed: %v", err)
	}
	if intent.Amount.String() != "1300.00" {
		t.Fatalf("amount want 1300.00 got %s", intent.Amount.String())
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, intent.OrderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !order.FromCart {
		t.Fatalf("cart order must be marked from_cart")
	}
	if len(order.Items) != 2 {
		t.Fatalf("order item count want 2 got %d", len(order.Items))
	}

	// 下单本身不清空购物车，清空发生在支付成功后
	view, err := cartSvc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("cart must stay intact until payment, got %d lines", len(view.Items))
	}
}

func TestBuildPendingOrderValidation(t *testing.T) {
	gateway := fakeGateway(t)
	defer gateway.Close()
	svc, _, db := setupOrderServiceTest(t, gateway.URL)
	address := createTestAddress(t, db, 8)

	if _, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{AddressID: address.ID}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user want ErrUserNotFound got %v", err)
	}
	if _, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{UserID: 8}); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("missing address want ErrAddressRequired got %v", err)
	}
	if _, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{UserID: 8, AddressID: 9999}); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("unknown address want ErrAddressNotFound got %v", err)
	}
	// 他人的地址不可用
	if _, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{UserID: 99, AddressID: address.ID}); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("foreign address want ErrAddressNotFound got %v", err)
	}
	// 空购物车结算
	if _, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{UserID: 8, AddressID: address.ID}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty got %v", err)
	}
}

func TestBuildPendingOrderFailsClosedOnGatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()
	svc, _, db := setupOrderServiceTest(t, gateway.URL)
	product := createTestProduct(t, db, "order-gateway-down", 1999, true)
	address := createTestAddress(t, db, 9)

	_, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{
		UserID:    9,
		AddressID: address.ID,
		Selection: &checkout.Selection{Mode: constants.SnapshotModeDirect, ProductID: product.ID, Quantity: 1},
	})
	if !errors.Is(err, ErrGatewayRequestFailed) {
		t.Fatalf("want ErrGatewayRequestFailed got %v", err)
	}

	// fail closed：本地不得留下任何订单
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no local order may exist after gateway failure, got %d", count)
	}
}

func TestBuildPendingOrderRejectsInactiveProduct(t *testing.T) {
	gateway := fakeGateway(t)
	defer gateway.Close()
	svc, _, db := setupOrderServiceTest(t, gateway.URL)
	inactive := createTestProduct(t, db, "order-inactive", 1999, false)
	address := createTestAddress(t, db, 10)

	_, err := svc.BuildPendingOrder(context.Background(), BuildOrderInput{
		UserID:    10,
		AddressID: address.ID,
		Selection: &checkout.Selection{Mode: constants.SnapshotModeDirect, ProductID: inactive.ID, Quantity: 1},
	})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable got %v", err)
	}
}
