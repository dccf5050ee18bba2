package service

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"github.com/mercato-api/internal/constants"
	"github.com/mercato-api/internal/logger"
	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/queue"
	"github.com/mercato-api/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderService 订单记录服务（拆单与配送跟踪）
type OrderService struct {
	orderRepo    repository.OrderRepository
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	queueClient  *queue.Client
}

// NewOrderService 创建订单记录服务
func NewOrderService(orderRepo repository.OrderRepository, purchaseRepo repository.PurchaseRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		queueClient:  queueClient,
	}
}

// DecomposeIntoOrder 将购买记录按店铺拆分为订单记录。
// 分组顺序与行项目中店铺首次出现的顺序一致。
func (s *OrderService) DecomposeIntoOrder(purchase *models.PurchaseRecord) (*models.OrderRecord, error) {
	if purchase == nil || len(purchase.Items) == 0 {
		return nil, ErrPurchasePayloadInvalid
	}

	existing, err := s.orderRepo.GetByOrderID(purchase.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	city := strings.TrimSpace(purchase.ShippingAddress.City)
	now := time.Now()

	groupIndex := map[string]int{}
	groups := models.StoreGroups{}
	for _, item := range purchase.Items {
		storeName := strings.TrimSpace(item.StoreName)
		idx, ok := groupIndex[storeName]
		if !ok {
			idx = len(groups)
			groupIndex[storeName] = idx
			groups = append(groups, models.StoreGroup{
				StoreName:     storeName,
				City:          city,
				Items:         []models.GroupItem{},
				PackingID:     generatePackingID(storeName, city, now),
				PackingStatus: constants.PackingStatusPending,
				Status:        constants.DeliveryStatusPending,
				TrackingInfo: models.TrackingInfo{
					LastUpdated:   now,
					StatusHistory: []models.StatusEvent{},
				},
			})
		}
		groups[idx].Items = append(groups[idx].Items, models.GroupItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	record := &models.OrderRecord{
		OrderID:     purchase.OrderID,
		PurchaseID:  purchase.ID,
		UserID:      purchase.UserID,
		StoreGroups: groups,
		TotalAmount: purchase.Total,
		Notes: models.OrderNotes{
			{
				Message:   fmt.Sprintf("order created with %d store group(s)", len(groups)),
				Type:      constants.OrderNoteTypeSystem,
				Timestamp: now,
			},
		},
	}

	if err := s.orderRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateTrackingInput 配送跟踪更新输入。
// 分组寻址支持打包编号与 storeIndex 下标两种方式，packing_id 优先。
type UpdateTrackingInput struct {
	PackingID         string     `json:"packing_id"`
	StoreIndex        *int       `json:"storeIndex"`
	Status            string     `json:"status" binding:"required"`
	Location          string     `json:"location"`
	Carrier           string     `json:"carrier"`
	TrackingNumber    string     `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Note              string     `json:"note"`
}

// AlreadyDeliveredError 终态冲突错误，携带既有送达信息供调用方对齐状态。
type AlreadyDeliveredError struct {
	PackingID   string     `json:"packing_id"`
	Location    string     `json:"location,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

func (e *AlreadyDeliveredError) Error() string {
	return "store group already delivered"
}

func (e *AlreadyDeliveredError) Unwrap() error {
	return ErrOrderAlreadyDelivered
}

// UpdateTracking 更新店铺分组的配送状态。
// 已送达的分组为终态，任何后续更新都会被拒绝且不写入历史。
func (s *OrderService) UpdateTracking(userID, orderRecordID uint, input UpdateTrackingInput) (*models.OrderRecord, error) {
	record, err := s.orderRepo.GetByID(orderRecordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrOrderNotFound
	}
	if userID != 0 && record.UserID != userID {
		return nil, ErrTrackingForbidden
	}

	idx := resolveStoreGroup(record.StoreGroups, input)
	if idx < 0 {
		return nil, ErrStoreGroupNotFound
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if !isDeliveryStatusValid(status) {
		return nil, ErrTrackingStatusInvalid
	}

	group := &record.StoreGroups[idx]
	if group.Status == constants.DeliveryStatusDelivered {
		return nil, &AlreadyDeliveredError{
			PackingID:   group.PackingID,
			Location:    group.TrackingInfo.CurrentLocation,
			DeliveredAt: group.DeliveredAt,
		}
	}

	now := time.Now()
	group.Status = status
	if packing, ok := derivePackingStatus(status); ok {
		group.PackingStatus = packing
	}
	if location := strings.TrimSpace(input.Location); location != "" {
		group.TrackingInfo.CurrentLocation = location
	}
	if carrier := strings.TrimSpace(input.Carrier); carrier != "" {
		group.TrackingInfo.Carrier = carrier
	}
	if trackingNumber := strings.TrimSpace(input.TrackingNumber); trackingNumber != "" {
		group.TrackingInfo.TrackingNumber = trackingNumber
	}
	if input.EstimatedDelivery != nil {
		group.TrackingInfo.EstimatedDelivery = input.EstimatedDelivery
	}
	group.TrackingInfo.LastUpdated = now
	group.TrackingInfo.StatusHistory = append(group.TrackingInfo.StatusHistory, models.StatusEvent{
		Status:    status,
		Location:  strings.TrimSpace(input.Location),
		Timestamp: now,
	})

	if status == constants.DeliveryStatusDelivered && group.DeliveredAt == nil {
		group.DeliveredAt = &now
		s.markGroupProductsDelivered(group, now)
	}

	noteMessage := fmt.Sprintf("tracking updated: %s -> %s", group.PackingID, status)
	if note := strings.TrimSpace(input.Note); note != "" {
		noteMessage = note
	}
	record.Notes = append(record.Notes, models.OrderNote{
		Message:   noteMessage,
		Type:      constants.OrderNoteTypeSystem,
		Timestamp: now,
	})

	if err := s.orderRepo.UpdateGroups(record.ID, record.StoreGroups, record.Notes); err != nil {
		return nil, err
	}
	record.UpdatedAt = now

	if status == constants.DeliveryStatusDelivered {
		s.enqueueDeliveryStatusEmail(record, group)
	}

	return record, nil
}

// TrackingView 配送跟踪视图（按店铺分组展平）
type TrackingView struct {
	OrderRecordID uint                `json:"order_record_id"`
	OrderID       string              `json:"order_id"`
	StoreName     string              `json:"store_name"`
	City          string              `json:"city"`
	PackingID     string              `json:"packing_id"`
	PackingStatus string              `json:"packing_status"`
	Status        string              `json:"status"`
	Items         []models.GroupItem  `json:"items"`
	TrackingInfo  models.TrackingInfo `json:"tracking_info"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ListTrackingViews 获取用户的配送跟踪列表（每个店铺分组一条）
func (s *OrderService) ListTrackingViews(userID uint, page, pageSize int) ([]TrackingView, int64, error) {
	records, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		return nil, 0, err
	}

	views := make([]TrackingView, 0, len(records))
	for _, record := range records {
		for _, group := range record.StoreGroups {
			views = append(views, TrackingView{
				OrderRecordID: record.ID,
				OrderID:       record.OrderID,
				StoreName:     group.StoreName,
				City:          group.City,
				PackingID:     group.PackingID,
				PackingStatus: group.PackingStatus,
				Status:        group.Status,
				Items:         group.Items,
				TrackingInfo:  group.TrackingInfo,
				DeliveredAt:   group.DeliveredAt,
				CreatedAt:     record.CreatedAt,
				UpdatedAt:     record.UpdatedAt,
			})
		}
	}
	return views, total, nil
}

// GetByID 获取订单记录
func (s *OrderService) GetByID(id uint) (*models.OrderRecord, error) {
	record, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrOrderNotFound
	}
	return record, nil
}

// StoreSale 商家销售视图条目
type StoreSale struct {
	OrderRecordID uint               `json:"order_record_id"`
	OrderID       string             `json:"order_id"`
	UserID        uint               `json:"user_id"`
	PackingID     string             `json:"packing_id"`
	Status        string             `json:"status"`
	Items         []models.GroupItem `json:"items"`
	Amount        models.Money       `json:"amount"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ListStoreSales 获取店铺的销售记录（商家视图）。
// JSON 文档过滤只能粗筛，精确匹配在内存中完成。
func (s *OrderService) ListStoreSales(storeName string, page, pageSize int) ([]StoreSale, int64, error) {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		return nil, 0, ErrStoreRequired
	}

	records, total, err := s.orderRepo.ListByStore(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		StoreName: storeName,
	})
	if err != nil {
		return nil, 0, err
	}

	sales := make([]StoreSale, 0, len(records))
	for _, record := range records {
		for _, group := range record.StoreGroups {
			if group.StoreName != storeName {
				continue
			}
			amount := decimal.Zero
			for _, item := range group.Items {
				amount = amount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			sales = append(sales, StoreSale{
				OrderRecordID: record.ID,
				OrderID:       record.OrderID,
				UserID:        record.UserID,
				PackingID:     group.PackingID,
				Status:        group.Status,
				Items:         group.Items,
				Amount:        models.NewMoneyFromDecimal(amount),
				CreatedAt:     record.CreatedAt,
			})
		}
	}
	return sales, total, nil
}

// ListAdmin 管理端订单记录列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.OrderRecord, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

func (s *OrderService) markGroupProductsDelivered(group *models.StoreGroup, at time.Time) {
	if s.productRepo == nil || group == nil {
		return
	}
	ids := make([]uint, 0, len(group.Items))
	for _, item := range group.Items {
		if item.ProductID != 0 {
			ids = append(ids, item.ProductID)
		}
	}
	if err := s.productRepo.MarkDelivered(ids, at); err != nil {
		logger.Warnw("mark_products_delivered_failed",
			"packing_id", group.PackingID,
			"error", err,
		)
	}
}

func (s *OrderService) enqueueDeliveryStatusEmail(record *models.OrderRecord, group *models.StoreGroup) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	email := s.resolveReceiverEmail(record)
	if email == "" {
		return
	}
	payload := queue.DeliveryStatusEmailPayload{
		OrderID:   record.OrderID,
		PackingID: group.PackingID,
		StoreName: group.StoreName,
		Status:    group.Status,
		ToEmail:   email,
	}
	if err := s.queueClient.EnqueueDeliveryStatusEmail(payload); err != nil {
		logger.Warnw("enqueue_delivery_status_email_failed",
			"order_id", record.OrderID,
			"packing_id", group.PackingID,
			"error", err,
		)
	}
}

func (s *OrderService) resolveReceiverEmail(record *models.OrderRecord) string {
	if s.purchaseRepo != nil {
		purchase, err := s.purchaseRepo.GetByOrderID(record.OrderID)
		if err == nil && purchase != nil && strings.TrimSpace(purchase.Email) != "" {
			return strings.TrimSpace(purchase.Email)
		}
	}
	if s.userRepo != nil && record.UserID != 0 {
		user, err := s.userRepo.GetByID(record.UserID)
		if err == nil && user != nil {
			return strings.TrimSpace(user.Email)
		}
	}
	return ""
}

// resolveStoreGroup 解析目标分组：打包编号优先，其次 storeIndex 下标。
func resolveStoreGroup(groups models.StoreGroups, input UpdateTrackingInput) int {
	if packingID := strings.TrimSpace(input.PackingID); packingID != "" {
		return findStoreGroup(groups, packingID)
	}
	if input.StoreIndex != nil && *input.StoreIndex >= 0 && *input.StoreIndex < len(groups) {
		return *input.StoreIndex
	}
	return -1
}

func findStoreGroup(groups models.StoreGroups, packingID string) int {
	packingID = strings.TrimSpace(packingID)
	if packingID == "" {
		return -1
	}
	for i := range groups {
		if groups[i].PackingID == packingID {
			return i
		}
	}
	return -1
}

func isDeliveryStatusValid(status string) bool {
	switch status {
	case constants.DeliveryStatusPending,
		constants.DeliveryStatusProcessing,
		constants.DeliveryStatusInTransit,
		constants.DeliveryStatusOutForDelivery,
		constants.DeliveryStatusDelivered,
		constants.DeliveryStatusCancelled:
		return true
	default:
		return false
	}
}

// derivePackingStatus 从配送状态推导打包状态，取消状态不改变打包状态。
func derivePackingStatus(status string) (string, bool) {
	switch status {
	case constants.DeliveryStatusPending:
		return constants.PackingStatusPending, true
	case constants.DeliveryStatusProcessing:
		return constants.PackingStatusPacked, true
	case constants.DeliveryStatusInTransit, constants.DeliveryStatusOutForDelivery:
		return constants.PackingStatusInTransit, true
	case constants.DeliveryStatusDelivered:
		return constants.PackingStatusDelivered, true
	default:
		return "", false
	}
}

// generatePackingID 生成打包编号：前缀 + 店铺/城市缩写 + 毫秒时间戳 + 短哈希。
func generatePackingID(storeName, city string, at time.Time) string {
	seed := strings.ToUpper(storeName + ":" + city)
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("%s%s%s%d%04X",
		constants.PackingIDPrefix,
		abbreviate(storeName),
		abbreviate(city),
		at.UnixMilli(),
		h.Sum32()&0xFFFF,
	)
}

// abbreviate 取前 3 个字母数字字符并大写，不足补 X。
func abbreviate(s string) string {
	runes := make([]rune, 0, 3)
	for _, r := range s {
		if len(runes) >= 3 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			runes = append(runes, unicode.ToUpper(r))
		}
	}
	for len(runes) < 3 {
		runes = append(runes, 'X')
	}
	return string(runes)
}
