package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mercato-api/internal/constants"
	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestDecomposeIntoOrderGroupsByFirstSeenStore(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-GROUP-1", 7, "Mekelle", models.PurchaseItems{
		{ProductID: 1, Name: "Earphones", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(99.99), StoreName: "TechHub Store"},
		{ProductID: 2, Name: "Coffee Beans", Quantity: 2, UnitPrice: models.NewMoneyFromFloat(24.50), StoreName: "FreshMart"},
		{ProductID: 3, Name: "Smart Watch", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(199.99), StoreName: "TechHub Store"},
	})

	record, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if len(record.StoreGroups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(record.StoreGroups))
	}
	first, second := record.StoreGroups[0], record.StoreGroups[1]
	if first.StoreName != "TechHub Store" || second.StoreName != "FreshMart" {
		t.Fatalf("unexpected group order: %s, %s", first.StoreName, second.StoreName)
	}
	if len(first.Items) != 2 || len(second.Items) != 1 {
		t.Fatalf("unexpected item split: %d, %d", len(first.Items), len(second.Items))
	}
	for _, group := range record.StoreGroups {
		if group.Status != constants.DeliveryStatusPending {
			t.Fatalf("expected pending delivery status, got %s", group.Status)
		}
		if group.PackingStatus != constants.PackingStatusPending {
			t.Fatalf("expected pending packing status, got %s", group.PackingStatus)
		}
		if group.City != "Mekelle" {
			t.Fatalf("expected city Mekelle, got %s", group.City)
		}
		if len(group.TrackingInfo.StatusHistory) != 0 {
			t.Fatalf("expected empty status history, got %d entries", len(group.TrackingInfo.StatusHistory))
		}
	}
	if first.PackingID == second.PackingID {
		t.Fatalf("expected distinct packing ids, got %s twice", first.PackingID)
	}
}

func TestDecomposeIntoOrderIsIdempotent(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-IDEM-1", 7, "Addis Ababa", defaultOrderTestItems())

	first, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("first decompose failed: %v", err)
	}
	second, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("second decompose failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same order record, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.OrderRecord{}).Where("order_id = ?", purchase.OrderID).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 order row, got %d", count)
	}
}

func TestGeneratePackingIDFormat(t *testing.T) {
	at := time.Now()
	id := generatePackingID("TechHub Store", "Addis Ababa", at)

	if !strings.HasPrefix(id, constants.PackingIDPrefix+"TECADD") {
		t.Fatalf("unexpected packing id prefix: %s", id)
	}
	if !strings.Contains(id, fmt.Sprintf("%d", at.UnixMilli())) {
		t.Fatalf("expected millisecond timestamp in packing id: %s", id)
	}
	// 同一时刻不同店铺的编号必须不同（短哈希部分兜底）
	other := generatePackingID("FreshMart", "Addis Ababa", at)
	if id == other {
		t.Fatalf("expected distinct ids for distinct stores, got %s twice", id)
	}
}

func TestAbbreviate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"TechHub Store", "TEC"},
		{"st", "STX"},
		{"", "XXX"},
		{"a-1b", "A1B"},
		{"  fresh", "FRE"},
	}
	for _, tc := range cases {
		if got := abbreviate(tc.in); got != tc.want {
			t.Fatalf("abbreviate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUpdateTrackingAppendsHistory(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	product := createOrderTestProduct(t, db, "TechHub Store", "Earphones")
	purchase := createOrderTestPurchase(t, db, "ORD-TRACK-1", 7, "Addis Ababa", models.PurchaseItems{
		{ProductID: product.ID, Name: "Earphones", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(99.99), StoreName: "TechHub Store"},
	})
	record, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	packingID := record.StoreGroups[0].PackingID

	steps := []struct {
		status  string
		packing string
	}{
		{constants.DeliveryStatusProcessing, constants.PackingStatusPacked},
		{constants.DeliveryStatusInTransit, constants.PackingStatusInTransit},
		{constants.DeliveryStatusDelivered, constants.PackingStatusDelivered},
	}
	for _, step := range steps {
		if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
			PackingID: packingID,
			Status:    step.status,
			Location:  "Hub 12",
		}); err != nil {
			t.Fatalf("update to %s failed: %v", step.status, err)
		}
	}

	reloaded, err := svc.GetByID(record.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	group := reloaded.StoreGroups[0]
	if group.Status != constants.DeliveryStatusDelivered {
		t.Fatalf("expected delivered, got %s", group.Status)
	}
	if group.PackingStatus != constants.PackingStatusDelivered {
		t.Fatalf("expected delivered packing status, got %s", group.PackingStatus)
	}
	if len(group.TrackingInfo.StatusHistory) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(group.TrackingInfo.StatusHistory))
	}
	if group.TrackingInfo.StatusHistory[2].Status != constants.DeliveryStatusDelivered {
		t.Fatalf("unexpected last history status: %s", group.TrackingInfo.StatusHistory[2].Status)
	}
	if group.DeliveredAt == nil {
		t.Fatalf("expected delivered_at set")
	}

	var delivered models.Product
	if err := db.First(&delivered, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if delivered.DeliveryStatus != constants.DeliveryStatusDelivered || delivered.LastDeliveredAt == nil {
		t.Fatalf("expected product marked delivered, got status=%q last_delivered_at=%v",
			delivered.DeliveryStatus, delivered.LastDeliveredAt)
	}
}

func TestUpdateTrackingRejectsAfterDelivered(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-TERM-1", 7, "Addis Ababa", defaultOrderTestItems())
	record, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	packingID := record.StoreGroups[0].PackingID

	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusDelivered,
		Location:  "Bole depot",
	}); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	// 终态后的任何更新都被拒绝，历史不再增长
	_, err = svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusInTransit,
	})
	if !errors.Is(err, ErrOrderAlreadyDelivered) {
		t.Fatalf("expected ErrOrderAlreadyDelivered, got %v", err)
	}

	// 冲突错误携带既有送达信息
	var delivered *AlreadyDeliveredError
	if !errors.As(err, &delivered) {
		t.Fatalf("expected AlreadyDeliveredError, got %T", err)
	}
	if delivered.PackingID != packingID {
		t.Fatalf("expected packing id %s in conflict payload, got %s", packingID, delivered.PackingID)
	}
	if delivered.DeliveredAt == nil {
		t.Fatalf("expected delivered_at in conflict payload")
	}
	if delivered.Location != "Bole depot" {
		t.Fatalf("expected last location in conflict payload, got %q", delivered.Location)
	}

	reloaded, err := svc.GetByID(record.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got := len(reloaded.StoreGroups[0].TrackingInfo.StatusHistory); got != 1 {
		t.Fatalf("expected history unchanged at 1, got %d", got)
	}
}

func TestUpdateTrackingGuards(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-GUARD-1", 7, "Addis Ababa", defaultOrderTestItems())
	record, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	packingID := record.StoreGroups[0].PackingID

	if _, err := svc.UpdateTracking(7, record.ID+1000, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusProcessing,
	}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if _, err := svc.UpdateTracking(8, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusProcessing,
	}); !errors.Is(err, ErrTrackingForbidden) {
		t.Fatalf("expected ErrTrackingForbidden, got %v", err)
	}

	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID: "PKG-NOPE",
		Status:    constants.DeliveryStatusProcessing,
	}); !errors.Is(err, ErrStoreGroupNotFound) {
		t.Fatalf("expected ErrStoreGroupNotFound, got %v", err)
	}

	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    "teleported",
	}); !errors.Is(err, ErrTrackingStatusInvalid) {
		t.Fatalf("expected ErrTrackingStatusInvalid, got %v", err)
	}

	// userID=0 是管理端入口，跳过归属校验
	if _, err := svc.UpdateTracking(0, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusProcessing,
	}); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
}

func TestUpdateTrackingAddressesGroupByIndex(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-INDEX-1", 7, "Addis Ababa", models.PurchaseItems{
		{ProductID: 1, Name: "Earphones", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(99.99), StoreName: "TechHub Store"},
		{ProductID: 2, Name: "Coffee Beans", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(24.50), StoreName: "FreshMart"},
	})
	record, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}

	secondGroup := 1
	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		StoreIndex: &secondGroup,
		Status:     constants.DeliveryStatusProcessing,
	}); err != nil {
		t.Fatalf("update by index failed: %v", err)
	}

	reloaded, err := svc.GetByID(record.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got := reloaded.StoreGroups[1].Status; got != constants.DeliveryStatusProcessing {
		t.Fatalf("expected indexed group processing, got %s", got)
	}
	if got := reloaded.StoreGroups[0].Status; got != constants.DeliveryStatusPending {
		t.Fatalf("expected other group untouched, got %s", got)
	}

	outOfRange := 5
	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		StoreIndex: &outOfRange,
		Status:     constants.DeliveryStatusProcessing,
	}); !errors.Is(err, ErrStoreGroupNotFound) {
		t.Fatalf("expected ErrStoreGroupNotFound for out-of-range index, got %v", err)
	}

	// 打包编号与下标都缺失时无法定位分组
	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		Status: constants.DeliveryStatusProcessing,
	}); !errors.Is(err, ErrStoreGroupNotFound) {
		t.Fatalf("expected ErrStoreGroupNotFound without addressing, got %v", err)
	}

	// 两者同时给出时打包编号优先
	firstIndexConflict := 1
	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID:  record.StoreGroups[0].PackingID,
		StoreIndex: &firstIndexConflict,
		Status:     constants.DeliveryStatusProcessing,
	}); err != nil {
		t.Fatalf("update with both addresses failed: %v", err)
	}
	reloaded, err = svc.GetByID(record.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got := reloaded.StoreGroups[0].Status; got != constants.DeliveryStatusProcessing {
		t.Fatalf("expected packing id to take precedence, got first group %s", got)
	}
}

func TestUpdateTrackingCancelledKeepsPackingStatus(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-CANCEL-1", 7, "Addis Ababa", defaultOrderTestItems())
	record, err := svc.DecomposeIntoOrder(purchase)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	packingID := record.StoreGroups[0].PackingID

	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusProcessing,
	}); err != nil {
		t.Fatalf("processing update failed: %v", err)
	}
	if _, err := svc.UpdateTracking(7, record.ID, UpdateTrackingInput{
		PackingID: packingID,
		Status:    constants.DeliveryStatusCancelled,
	}); err != nil {
		t.Fatalf("cancel update failed: %v", err)
	}

	reloaded, err := svc.GetByID(record.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	group := reloaded.StoreGroups[0]
	if group.Status != constants.DeliveryStatusCancelled {
		t.Fatalf("expected cancelled, got %s", group.Status)
	}
	if group.PackingStatus != constants.PackingStatusPacked {
		t.Fatalf("expected packing status unchanged at packed, got %s", group.PackingStatus)
	}
}

func TestDerivePackingStatus(t *testing.T) {
	cases := []struct {
		status string
		want   string
		ok     bool
	}{
		{constants.DeliveryStatusPending, constants.PackingStatusPending, true},
		{constants.DeliveryStatusProcessing, constants.PackingStatusPacked, true},
		{constants.DeliveryStatusInTransit, constants.PackingStatusInTransit, true},
		{constants.DeliveryStatusOutForDelivery, constants.PackingStatusInTransit, true},
		{constants.DeliveryStatusDelivered, constants.PackingStatusDelivered, true},
		{constants.DeliveryStatusCancelled, "", false},
	}
	for _, tc := range cases {
		got, ok := derivePackingStatus(tc.status)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("derivePackingStatus(%s) = (%q, %v), want (%q, %v)", tc.status, got, ok, tc.want, tc.ok)
		}
	}
}

func TestListTrackingViewsFlattensGroups(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-VIEW-1", 7, "Addis Ababa", models.PurchaseItems{
		{ProductID: 1, Name: "Earphones", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(99.99), StoreName: "TechHub Store"},
		{ProductID: 2, Name: "Coffee Beans", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(24.50), StoreName: "FreshMart"},
	})
	if _, err := svc.DecomposeIntoOrder(purchase); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}

	views, total, err := svc.ListTrackingViews(7, 1, 10)
	if err != nil {
		t.Fatalf("list tracking views failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 order record, got %d", total)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 flattened views, got %d", len(views))
	}
	stores := map[string]bool{}
	for _, view := range views {
		stores[view.StoreName] = true
		if view.OrderID != "ORD-VIEW-1" {
			t.Fatalf("unexpected order id %s", view.OrderID)
		}
		if view.PackingID == "" {
			t.Fatalf("expected packing id in view")
		}
	}
	if !stores["TechHub Store"] || !stores["FreshMart"] {
		t.Fatalf("expected one view per store, got %v", stores)
	}
}

func TestListStoreSalesComputesAmounts(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	purchase := createOrderTestPurchase(t, db, "ORD-SALES-1", 7, "Addis Ababa", models.PurchaseItems{
		{ProductID: 1, Name: "Earphones", Quantity: 2, UnitPrice: models.NewMoneyFromFloat(99.99), StoreName: "TechHub Store"},
		{ProductID: 2, Name: "Smart Watch", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(199.99), StoreName: "TechHub Store"},
		{ProductID: 3, Name: "Coffee Beans", Quantity: 4, UnitPrice: models.NewMoneyFromFloat(24.50), StoreName: "FreshMart"},
	})
	if _, err := svc.DecomposeIntoOrder(purchase); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}

	sales, _, err := svc.ListStoreSales("TechHub Store", 1, 10)
	if err != nil {
		t.Fatalf("list store sales failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale entry, got %d", len(sales))
	}
	sale := sales[0]
	if sale.UserID != 7 || sale.OrderID != "ORD-SALES-1" {
		t.Fatalf("unexpected sale identity: %+v", sale)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("expected 2 items for the store, got %d", len(sale.Items))
	}
	if sale.Amount.String() != "399.97" {
		t.Fatalf("expected amount 399.97, got %s", sale.Amount.String())
	}

	if _, _, err := svc.ListStoreSales("  ", 1, 10); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:order_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.PurchaseRecord{}, &models.OrderRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
		nil,
	), db
}

func defaultOrderTestItems() models.PurchaseItems {
	return models.PurchaseItems{
		{ProductID: 1, Name: "Earphones", Quantity: 1, UnitPrice: models.NewMoneyFromFloat(99.99), StoreName: "TechHub Store"},
	}
}

func createOrderTestPurchase(t *testing.T, db *gorm.DB, orderID string, userID uint, city string, items models.PurchaseItems) *models.PurchaseRecord {
	t.Helper()

	row := models.PurchaseRecord{
		OrderID:         orderID,
		UserID:          userID,
		Email:           "buyer@example.com",
		Items:           items,
		Subtotal:        models.NewMoneyFromFloat(100),
		Tax:             models.NewMoneyFromFloat(8),
		Total:           models.NewMoneyFromFloat(108),
		ShippingAddress: models.ShippingAddress{Name: "Abebe", City: city},
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create purchase record failed: %v", err)
	}
	return &row
}

func createOrderTestProduct(t *testing.T, db *gorm.DB, storeName, name string) models.Product {
	t.Helper()

	row := models.Product{
		CategoryID: 1,
		UserID:     1,
		StoreName:  storeName,
		Name:       name,
		Price:      models.NewMoneyFromFloat(99.99),
		Stock:      5,
		IsActive:   true,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return row
}
