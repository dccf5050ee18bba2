package service

import (
	"strings"

	"github.com/mercato-api/internal/logger"
	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/repository"

	"github.com/shopspring/decimal"
)

// PurchaseService 购买记录服务
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	orderService *OrderService
}

// NewPurchaseService 创建购买记录服务
func NewPurchaseService(purchaseRepo repository.PurchaseRepository, productRepo repository.ProductRepository, orderService *OrderService) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		orderService: orderService,
	}
}

// RecordPurchaseItemInput 购买行项目输入
type RecordPurchaseItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
	StoreName string  `json:"store_name"`
	Image     string  `json:"image"`
}

// RecordPurchaseInput 创建购买记录输入
type RecordPurchaseInput struct {
	OrderID         string                    `json:"order_id" binding:"required"`
	UserID          uint                      `json:"user_id"`
	Email           string                    `json:"email" binding:"required"`
	Items           []RecordPurchaseItemInput `json:"items" binding:"required"`
	Subtotal        float64                   `json:"subtotal"`
	Tax             float64                   `json:"tax"`
	Total           float64                   `json:"total"`
	ShippingAddress models.ShippingAddress    `json:"shipping_address" binding:"required"`
}

// RecordPurchase 创建购买记录（结账快照），并同步派生订单记录。
// 派生失败只记录日志，购买记录本身保持已落库状态。
func (s *PurchaseService) RecordPurchase(input RecordPurchaseInput) (*models.PurchaseRecord, error) {
	if err := validatePurchaseInput(input); err != nil {
		return nil, err
	}

	exists, err := s.purchaseRepo.ExistsByOrderID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateOrder
	}

	items, err := s.buildPurchaseItems(input.Items)
	if err != nil {
		return nil, err
	}

	record := &models.PurchaseRecord{
		OrderID:         strings.TrimSpace(input.OrderID),
		UserID:          input.UserID,
		Email:           strings.TrimSpace(input.Email),
		Items:           items,
		Subtotal:        models.NewMoneyFromFloat(input.Subtotal),
		Tax:             models.NewMoneyFromFloat(input.Tax),
		Total:           models.NewMoneyFromFloat(input.Total),
		ShippingAddress: input.ShippingAddress,
	}

	if err := s.purchaseRepo.Create(record); err != nil {
		return nil, err
	}

	if s.orderService != nil {
		if _, err := s.orderService.DecomposeIntoOrder(record); err != nil {
			logger.Errorw("order_decompose_failed",
				"order_id", record.OrderID,
				"user_id", record.UserID,
				"error", err,
			)
		}
	}

	return record, nil
}

// GetByOrderID 根据订单编号获取购买记录
func (s *PurchaseService) GetByOrderID(orderID string) (*models.PurchaseRecord, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrNotFound
	}
	record, err := s.purchaseRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// ListByUser 获取用户购买记录列表
func (s *PurchaseService) ListByUser(userID uint, page, pageSize int) ([]models.PurchaseRecord, int64, error) {
	return s.purchaseRepo.ListByUser(repository.PurchaseListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// ListAdmin 管理端购买记录列表
func (s *PurchaseService) ListAdmin(filter repository.PurchaseListFilter) ([]models.PurchaseRecord, int64, error) {
	return s.purchaseRepo.ListAdmin(filter)
}

// buildPurchaseItems 构建行项目快照，店铺名缺失时从商品表回填。
func (s *PurchaseService) buildPurchaseItems(inputs []RecordPurchaseItemInput) (models.PurchaseItems, error) {
	missing := make([]uint, 0, len(inputs))
	for _, item := range inputs {
		if strings.TrimSpace(item.StoreName) == "" {
			missing = append(missing, item.ProductID)
		}
	}

	storeNames := map[uint]string{}
	if len(missing) > 0 && s.productRepo != nil {
		products, err := s.productRepo.ListByIDs(missing)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			storeNames[p.ID] = p.StoreName
		}
	}

	items := make(models.PurchaseItems, 0, len(inputs))
	for _, item := range inputs {
		unitPrice := decimal.NewFromFloat(item.UnitPrice)
		storeName := strings.TrimSpace(item.StoreName)
		if storeName == "" {
			storeName = storeNames[item.ProductID]
		}
		items = append(items, models.PurchaseItem{
			ProductID:    item.ProductID,
			Name:         strings.TrimSpace(item.Name),
			Quantity:     item.Quantity,
			UnitPrice:    models.NewMoneyFromDecimal(unitPrice),
			LineSubtotal: models.NewMoneyFromDecimal(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			StoreName:    storeName,
			Image:        strings.TrimSpace(item.Image),
		})
	}
	return items, nil
}

func validatePurchaseInput(input RecordPurchaseInput) error {
	if strings.TrimSpace(input.OrderID) == "" {
		return ErrPurchasePayloadInvalid
	}
	if input.UserID == 0 {
		return ErrPurchasePayloadInvalid
	}
	if strings.TrimSpace(input.Email) == "" {
		return ErrPurchasePayloadInvalid
	}
	if !isShippingAddressComplete(input.ShippingAddress) {
		return ErrPurchasePayloadInvalid
	}
	if len(input.Items) == 0 {
		return ErrPurchasePayloadInvalid
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 || item.UnitPrice < 0 {
			return ErrPurchasePayloadInvalid
		}
	}
	if input.Subtotal < 0 || input.Tax < 0 || input.Total < 0 {
		return ErrPurchasePayloadInvalid
	}
	return nil
}

// isShippingAddressComplete 收货地址六个字段全部必填
func isShippingAddressComplete(addr models.ShippingAddress) bool {
	fields := []string{addr.Name, addr.Street, addr.City, addr.State, addr.ZipCode, addr.Phone}
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
