package repository

import (
	"testing"
	"time"

	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:repo?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"order_items", "orders", "products"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset table %s failed: %v", table, err)
		}
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, gatewayOrderID, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		GatewayOrderID: gatewayOrderID,
		Receipt:        "rcpt_" + gatewayOrderID,
		UserID:         1,
		AddressID:      1,
		Status:         status,
		Currency:       "INR",
		TotalAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := db.Create(&models.OrderItem{OrderID: order.ID, Quantity: 1, TotalPrice: order.TotalAmount}).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	return order
}

func TestMarkPaidIfPendingGuardsStatus(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	order := seedOrder(t, db, "order_guard", constants.OrderStatusPending)

	rows, err := repo.MarkPaidIfPending(order.ID, time.Now())
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first transition want 1 row got %d", rows)
	}

	// 已是 paid：再次迁移不得命中
	rows, err = repo.MarkPaidIfPending(order.ID, time.Now())
	if err != nil {
		t.Fatalf("second mark paid failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("repeated transition want 0 rows got %d", rows)
	}

	rows, err = repo.MarkPaidIfPending(9999, time.Now())
	if err != nil {
		t.Fatalf("mark paid unknown failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("unknown order want 0 rows got %d", rows)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil || got == nil {
		t.Fatalf("reload order failed: %v %v", got, err)
	}
	if got.Status != constants.OrderStatusPaid || got.PaidAt == nil {
		t.Fatalf("order should be paid with paid_at: %+v", got)
	}
}

func TestDeletePendingWithItemsRemovesOrderAndLines(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	order := seedOrder(t, db, "order_delete", constants.OrderStatusPending)

	rows, err := repo.DeletePendingWithItems(order.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("delete want 1 row got %d", rows)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if got != nil {
		t.Fatalf("order should be gone, got %+v", got)
	}
	var itemCount int64
	if err := db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("order items should be gone, got %d", itemCount)
	}
}

func TestDeletePendingWithItemsSparesSettledOrders(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	order := seedOrder(t, db, "order_race", constants.OrderStatusPending)

	// 成功回调抢先落定订单
	rows, err := repo.MarkPaidIfPending(order.ID, time.Now())
	if err != nil || rows != 1 {
		t.Fatalf("mark paid failed: rows=%d err=%v", rows, err)
	}

	// 迟到的失败回报：受保护删除不得命中
	rows, err = repo.DeletePendingWithItems(order.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("settled order delete want 0 rows got %d", rows)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil || got == nil {
		t.Fatalf("paid order must survive failure report: %v %v", got, err)
	}
	if got.Status != constants.OrderStatusPaid {
		t.Fatalf("order status want paid got %s", got.Status)
	}
	if len(got.Items) != 1 {
		t.Fatalf("order items must survive, got %d", len(got.Items))
	}
}

func TestGetByGatewayOrderIDMissingReturnsNil(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)

	got, err := repo.GetByGatewayOrderID("order_missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("missing order want nil got %+v", got)
	}
}

func TestConsumeStockGuardsAgainstOverdraw(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewProductRepository(db)
	product := &models.Product{
		Slug:       "stock-guard",
		Name:       "Stock Guard",
		OfferPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Stock:      3,
		IsActive:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	rows, err := repo.ConsumeStock(product.ID, 2)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("consume want 1 row got %d", rows)
	}

	// 剩 1 件，再扣 2 件不得命中
	rows, err = repo.ConsumeStock(product.ID, 2)
	if err != nil {
		t.Fatalf("overdraw consume failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("overdraw want 0 rows got %d", rows)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil || got == nil {
		t.Fatalf("reload product failed: %v %v", got, err)
	}
	if got.Stock != 1 || got.Purchases != 2 {
		t.Fatalf("stock/purchases want 1/2 got %d/%d", got.Stock, got.Purchases)
	}
}
