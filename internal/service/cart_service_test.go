package service

import (
	"errors"
	"testing"

	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:cartsvc?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"cart_items", "carts", "products"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset table %s failed: %v", table, err)
		}
	}
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	return NewCartService(cartRepo, productRepo), db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, offerPrice float64, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:       slug,
		Name:       "Test " + slug,
		BasePrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(offerPrice + 500)),
		OfferPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(offerPrice)),
		Variants:   models.StringArray{"red", "blue"},
		Stock:      100,
		IsActive:   active,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if !active {
		// gorm 默认值钩子可能覆盖零值，显式落盘
		if err := db.Model(product).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate product failed: %v", err)
		}
	}
	return product
}

func cartItemCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.CartItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	return count
}

func TestAddCatalogItemMergesDuplicateLines(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-merge", 1999, true)
	owner := GuestOwner("guest-merge-lines")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Variant: "red", Quantity: 2}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Variant: "red", Quantity: 3}); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	view, err := svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("line count want 1 got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", view.Items[0].Quantity)
	}
}

func TestAddCatalogItemVariantsAreDistinctLines(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-variants", 1999, true)
	owner := GuestOwner("guest-variant-lines")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Variant: "red", Quantity: 1}); err != nil {
		t.Fatalf("add red failed: %v", err)
	}
	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Variant: "blue", Quantity: 1}); err != nil {
		t.Fatalf("add blue failed: %v", err)
	}

	view, err := svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("line count want 2 got %d", len(view.Items))
	}
}

func TestAddCatalogItemQuantityCeiling(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-ceiling", 1999, true)
	owner := GuestOwner("guest-ceiling")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 11}); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("oversized add want ErrQuantityInvalid got %v", err)
	}

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 8}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// 累加越过上限整体拒绝，已有行保持不变
	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 5}); !errors.Is(err, ErrCartQuantityLimit) {
		t.Fatalf("merge over ceiling want ErrCartQuantityLimit got %v", err)
	}

	view, err := svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 8 {
		t.Fatalf("cart want single line qty 8 got %+v", view.Items)
	}
}

func TestAddCatalogItemRejectsUnavailableProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	inactive := createTestProduct(t, db, "sprocket-inactive", 1999, false)
	owner := GuestOwner("guest-unavailable")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: inactive.ID, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("inactive product want ErrProductNotAvailable got %v", err)
	}
	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: 99999, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("missing product want ErrProductNotAvailable got %v", err)
	}
}

func TestAddCustomItemAlwaysAppendsNewLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	owner := GuestOwner("guest-custom-lines")
	payload := models.JSON{"title": "engraved kit", "offer_price": "2499.00"}

	for i := 0; i < 3; i++ {
		if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: payload, Quantity: 1}); err != nil {
			t.Fatalf("add custom %d failed: %v", i, err)
		}
	}
	if count := cartItemCount(t, db); count != 3 {
		t.Fatalf("custom line count want 3 got %d", count)
	}
}

func TestAddCustomItemValidation(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	owner := GuestOwner("guest-custom-validation")

	if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{"offer_price": "10"}, Quantity: 0}); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("zero quantity want ErrQuantityInvalid got %v", err)
	}
	if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{}, Quantity: 1}); !errors.Is(err, ErrCustomPayloadInvalid) {
		t.Fatalf("empty payload want ErrCustomPayloadInvalid got %v", err)
	}
	if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{"title": "no price"}, Quantity: 1}); !errors.Is(err, ErrCustomPayloadInvalid) {
		t.Fatalf("missing price want ErrCustomPayloadInvalid got %v", err)
	}
	if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{"offer_price": "-5"}, Quantity: 1}); !errors.Is(err, ErrCustomPayloadInvalid) {
		t.Fatalf("negative price want ErrCustomPayloadInvalid got %v", err)
	}
}

func TestSetQuantityRules(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-setqty", 1999, true)
	owner := GuestOwner("guest-setqty")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add catalog failed: %v", err)
	}
	if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{"offer_price": "100"}, Quantity: 1}); err != nil {
		t.Fatalf("add custom failed: %v", err)
	}
	view, err := svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	catalogID, customID := view.Items[0].ID, view.Items[1].ID

	if err := svc.SetQuantity(owner, catalogID, 10); err != nil {
		t.Fatalf("set catalog to ceiling failed: %v", err)
	}
	if err := svc.SetQuantity(owner, catalogID, 11); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("catalog over ceiling want ErrQuantityInvalid got %v", err)
	}
	if err := svc.SetQuantity(owner, catalogID, 0); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("zero quantity want ErrQuantityInvalid got %v", err)
	}
	// 定制行不受目录上限约束
	if err := svc.SetQuantity(owner, customID, 25); err != nil {
		t.Fatalf("set custom quantity failed: %v", err)
	}
	if err := svc.SetQuantity(owner, 99999, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("missing item want ErrCartItemNotFound got %v", err)
	}

	view, err = svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("reread cart failed: %v", err)
	}
	if view.Items[0].Quantity != 10 {
		t.Fatalf("catalog quantity want 10 got %d", view.Items[0].Quantity)
	}
	if view.Items[1].Quantity != 25 {
		t.Fatalf("custom quantity want 25 got %d", view.Items[1].Quantity)
	}
}

func TestRemoveItemReportsMissingLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-remove", 1999, true)
	owner := GuestOwner("guest-remove")

	if err := svc.RemoveItem(owner, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("remove without cart want ErrCartItemNotFound got %v", err)
	}

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	view, err := svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	if err := svc.RemoveItem(owner, view.Items[0].ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := svc.RemoveItem(owner, view.Items[0].ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("double remove want ErrCartItemNotFound got %v", err)
	}
}

func TestReadCartPricingAndDegradedLines(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-pricing", 1999, true)
	owner := GuestOwner("guest-pricing")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add catalog failed: %v", err)
	}
	if err := svc.AddCustomItem(owner, AddCustomItemInput{Payload: models.JSON{"title": "decal set", "offer_price": "350.50"}, Quantity: 2}); err != nil {
		t.Fatalf("add custom failed: %v", err)
	}

	view, err := svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read cart failed: %v", err)
	}
	if got := view.Items[0].LineTotal.String(); got != "3998.00" {
		t.Fatalf("catalog line total want 3998.00 got %s", got)
	}
	if got := view.Items[1].LineTotal.String(); got != "701.00" {
		t.Fatalf("custom line total want 701.00 got %s", got)
	}
	if got := view.Total.String(); got != "4699.00" {
		t.Fatalf("cart total want 4699.00 got %s", got)
	}

	// 商品下架后该行降级展示，整车读取不失败
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	view, err = svc.ReadCart(owner)
	if err != nil {
		t.Fatalf("read degraded cart failed: %v", err)
	}
	if !view.Items[0].Degraded {
		t.Fatalf("catalog line should be degraded after deactivation")
	}
	if view.Items[1].Degraded {
		t.Fatalf("custom line should not be degraded")
	}
}

func TestClearCartDestroysCart(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-clear", 1999, true)
	owner := GuestOwner("guest-clear")

	if err := svc.Clear(owner); err != nil {
		t.Fatalf("clear without cart should be no-op: %v", err)
	}
	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Clear(owner); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	var cartCount int64
	if err := db.Model(&models.Cart{}).Count(&cartCount).Error; err != nil {
		t.Fatalf("count carts failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart count want 0 got %d", cartCount)
	}
	if count := cartItemCount(t, db); count != 0 {
		t.Fatalf("item count want 0 got %d", count)
	}
}

func TestReadCartRejectsMalformedLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "sprocket-shape", 1999, true)
	owner := GuestOwner("guest-shape")

	if err := svc.AddCatalogItem(owner, AddCatalogItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	cart, err := repository.NewCartRepository(db).GetByOwner(owner.Type, owner.Ref)
	if err != nil || cart == nil {
		t.Fatalf("load cart failed: %v %v", cart, err)
	}

	// 绕过 service 写入同时携带目录字段与定制快照的脏行
	productID := product.ID
	corrupt := &models.CartItem{
		CartID:     cart.ID,
		ProductID:  &productID,
		Quantity:   1,
		CustomJSON: models.JSON{"title": "smuggled", "offer_price": "1"},
	}
	if err := db.Create(corrupt).Error; err != nil {
		t.Fatalf("create corrupt line failed: %v", err)
	}

	if _, err := svc.ReadCart(owner); !errors.Is(err, ErrCartItemShapeInvalid) {
		t.Fatalf("read want ErrCartItemShapeInvalid got %v", err)
	}
}
