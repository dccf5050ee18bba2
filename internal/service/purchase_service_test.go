package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestRecordPurchaseRejectsInvalidPayload(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t)

	valid := buildPurchaseTestInput("ORD-VALIDATE-1")

	cases := []struct {
		name   string
		mutate func(input *RecordPurchaseInput)
	}{
		{"empty order id", func(input *RecordPurchaseInput) { input.OrderID = "  " }},
		{"missing user", func(input *RecordPurchaseInput) { input.UserID = 0 }},
		{"missing email", func(input *RecordPurchaseInput) { input.Email = "  " }},
		{"empty shipping address", func(input *RecordPurchaseInput) { input.ShippingAddress = models.ShippingAddress{} }},
		{"missing address city", func(input *RecordPurchaseInput) { input.ShippingAddress.City = "" }},
		{"missing address street", func(input *RecordPurchaseInput) { input.ShippingAddress.Street = "" }},
		{"missing address phone", func(input *RecordPurchaseInput) { input.ShippingAddress.Phone = "" }},
		{"no items", func(input *RecordPurchaseInput) { input.Items = nil }},
		{"zero quantity", func(input *RecordPurchaseInput) { input.Items[0].Quantity = 0 }},
		{"missing product id", func(input *RecordPurchaseInput) { input.Items[0].ProductID = 0 }},
		{"negative unit price", func(input *RecordPurchaseInput) { input.Items[0].UnitPrice = -1 }},
		{"negative total", func(input *RecordPurchaseInput) { input.Total = -10 }},
	}
	for _, tc := range cases {
		input := valid
		input.Items = append([]RecordPurchaseItemInput{}, valid.Items...)
		tc.mutate(&input)
		if _, err := svc.RecordPurchase(input); !errors.Is(err, ErrPurchasePayloadInvalid) {
			t.Fatalf("%s: expected ErrPurchasePayloadInvalid, got %v", tc.name, err)
		}
	}

	// 被拒绝的载荷一条都不落库
	var count int64
	if err := db.Model(&models.PurchaseRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count purchases failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no persisted purchases, got %d", count)
	}
}

func TestRecordPurchaseRejectsDuplicateOrderID(t *testing.T) {
	svc, _ := setupPurchaseServiceTest(t)

	input := buildPurchaseTestInput("ORD-DUP-1")
	if _, err := svc.RecordPurchase(input); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if _, err := svc.RecordPurchase(input); !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestRecordPurchaseBackfillsStoreNameFromProduct(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t)

	product := createPurchaseTestProduct(t, db, "TechHub Store", "Smart Watch", 199.99)

	input := buildPurchaseTestInput("ORD-BACKFILL-1")
	input.Items = []RecordPurchaseItemInput{
		{ProductID: product.ID, Name: "Smart Watch", Quantity: 2, UnitPrice: 199.99},
	}

	record, err := svc.RecordPurchase(input)
	if err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(record.Items))
	}
	if record.Items[0].StoreName != "TechHub Store" {
		t.Fatalf("expected store name backfilled, got %q", record.Items[0].StoreName)
	}
	if record.Items[0].LineSubtotal.String() != "399.98" {
		t.Fatalf("expected line subtotal 399.98, got %s", record.Items[0].LineSubtotal.String())
	}
}

func TestRecordPurchaseKeepsClientTotalsAsIs(t *testing.T) {
	svc, _ := setupPurchaseServiceTest(t)

	// 小计+税费与总额不一致也照单全收，金额校验不是本服务的职责
	input := buildPurchaseTestInput("ORD-TOTALS-1")
	input.Subtotal = 100
	input.Tax = 5
	input.Total = 999.99

	record, err := svc.RecordPurchase(input)
	if err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}
	if record.Subtotal.String() != "100.00" || record.Tax.String() != "5.00" || record.Total.String() != "999.99" {
		t.Fatalf("unexpected totals: subtotal=%s tax=%s total=%s",
			record.Subtotal.String(), record.Tax.String(), record.Total.String())
	}
}

func TestRecordPurchaseDecomposesIntoStoreGroups(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t)

	input := RecordPurchaseInput{
		OrderID: "ORD-DECOMP-1",
		UserID:  42,
		Email:   "buyer@example.com",
		Items: []RecordPurchaseItemInput{
			{ProductID: 1, Name: "Earphones", Quantity: 1, UnitPrice: 99.99, StoreName: "TechHub Store"},
			{ProductID: 2, Name: "Coffee Beans", Quantity: 3, UnitPrice: 24.50, StoreName: "FreshMart"},
			{ProductID: 3, Name: "Smart Watch", Quantity: 1, UnitPrice: 199.99, StoreName: "TechHub Store"},
		},
		Subtotal: 398.47,
		Tax:      31.88,
		Total:    430.35,
		ShippingAddress: models.ShippingAddress{
			Name:    "Abebe Kebede",
			Street:  "Hawelti Square 3",
			City:    "Mekelle",
			State:   "Tigray",
			ZipCode: "7000",
			Phone:   "+251914000000",
		},
	}

	if _, err := svc.RecordPurchase(input); err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}

	var order models.OrderRecord
	if err := db.Where("order_id = ?", input.OrderID).First(&order).Error; err != nil {
		t.Fatalf("load derived order failed: %v", err)
	}
	if order.UserID != 42 {
		t.Fatalf("expected user 42, got %d", order.UserID)
	}
	if order.TotalAmount.String() != "430.35" {
		t.Fatalf("expected total 430.35, got %s", order.TotalAmount.String())
	}
	if len(order.StoreGroups) != 2 {
		t.Fatalf("expected 2 store groups, got %d", len(order.StoreGroups))
	}
	// 分组顺序跟随行项目中店铺首次出现的顺序
	if order.StoreGroups[0].StoreName != "TechHub Store" || order.StoreGroups[1].StoreName != "FreshMart" {
		t.Fatalf("unexpected group order: %s, %s", order.StoreGroups[0].StoreName, order.StoreGroups[1].StoreName)
	}
	if order.StoreGroups[0].City != "Mekelle" || order.StoreGroups[1].City != "Mekelle" {
		t.Fatalf("expected city carried into groups, got %q, %q", order.StoreGroups[0].City, order.StoreGroups[1].City)
	}
	// 拆分不丢行项目
	itemCount := 0
	for _, group := range order.StoreGroups {
		itemCount += len(group.Items)
	}
	if itemCount != 3 {
		t.Fatalf("expected 3 items across groups, got %d", itemCount)
	}
	if len(order.Notes) != 1 {
		t.Fatalf("expected 1 system note, got %d", len(order.Notes))
	}
}

func TestListPurchasesByUser(t *testing.T) {
	svc, _ := setupPurchaseServiceTest(t)

	for i := 0; i < 3; i++ {
		input := buildPurchaseTestInput(fmt.Sprintf("ORD-LIST-%d", i))
		if _, err := svc.RecordPurchase(input); err != nil {
			t.Fatalf("record purchase %d failed: %v", i, err)
		}
	}
	other := buildPurchaseTestInput("ORD-LIST-OTHER")
	other.UserID = 99
	if _, err := svc.RecordPurchase(other); err != nil {
		t.Fatalf("record other purchase failed: %v", err)
	}

	records, total, err := svc.ListByUser(7, 1, 10)
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 3 || len(records) != 3 {
		t.Fatalf("expected 3 records for user 7, got total=%d len=%d", total, len(records))
	}
	for _, record := range records {
		if record.UserID != 7 {
			t.Fatalf("unexpected user id %d in listing", record.UserID)
		}
	}
}

func setupPurchaseServiceTest(t *testing.T) (*PurchaseService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:purchase_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Category{}, &models.PurchaseRecord{}, &models.OrderRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	purchaseRepo := repository.NewPurchaseRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderService := NewOrderService(repository.NewOrderRepository(db), purchaseRepo, productRepo, repository.NewUserRepository(db), nil)
	return NewPurchaseService(purchaseRepo, productRepo, orderService), db
}

func buildPurchaseTestInput(orderID string) RecordPurchaseInput {
	return RecordPurchaseInput{
		OrderID: orderID,
		UserID:  7,
		Email:   "buyer@example.com",
		Items: []RecordPurchaseItemInput{
			{ProductID: 1, Name: "Earphones", Quantity: 1, UnitPrice: 99.99, StoreName: "TechHub Store"},
		},
		Subtotal: 99.99,
		Tax:      8.00,
		Total:    107.99,
		ShippingAddress: models.ShippingAddress{
			Name:    "Abebe Kebede",
			Street:  "Bole Road 12",
			City:    "Addis Ababa",
			State:   "Addis Ababa",
			ZipCode: "1000",
			Phone:   "+251911000000",
		},
	}
}

func createPurchaseTestProduct(t *testing.T, db *gorm.DB, storeName, name string, price float64) models.Product {
	t.Helper()

	row := models.Product{
		CategoryID: 1,
		UserID:     1,
		StoreName:  storeName,
		Name:       name,
		Price:      models.NewMoneyFromFloat(price),
		Stock:      10,
		IsActive:   true,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return row
}
