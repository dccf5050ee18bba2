package repository

import (
	"errors"
	"time"

	"github.com/mercato-api/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单记录数据访问接口
type OrderRepository interface {
	Create(record *models.OrderRecord) error
	GetByID(id uint) (*models.OrderRecord, error)
	GetByOrderID(orderID string) (*models.OrderRecord, error)
	ListByUser(filter OrderListFilter) ([]models.OrderRecord, int64, error)
	ListByStore(filter OrderListFilter) ([]models.OrderRecord, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.OrderRecord, int64, error)
	UpdateGroups(id uint, groups models.StoreGroups, notes models.OrderNotes) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单记录仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单记录
func (r *GormOrderRepository) Create(record *models.OrderRecord) error {
	return r.db.Create(record).Error
}

// GetByID 根据 ID 获取订单记录
func (r *GormOrderRepository) GetByID(id uint) (*models.OrderRecord, error) {
	var record models.OrderRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByOrderID 根据订单编号获取订单记录
func (r *GormOrderRepository) GetByOrderID(orderID string) (*models.OrderRecord, error) {
	var record models.OrderRecord
	if err := r.db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByUser 获取用户订单记录列表（按创建时间倒序）
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.OrderRecord, int64, error) {
	var records []models.OrderRecord
	query := r.db.Model(&models.OrderRecord{}).Where("user_id = ?", filter.UserID)

	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByStore 获取包含指定店铺分组的订单记录（商家销售视图）。
// 店铺分组整体存为 JSON 文档，这里用 LIKE 粗筛后由服务层精确过滤。
func (r *GormOrderRepository) ListByStore(filter OrderListFilter) ([]models.OrderRecord, int64, error) {
	var records []models.OrderRecord
	query := r.db.Model(&models.OrderRecord{}).
		Where("store_groups LIKE ?", "%\"store_name\":\""+filter.StoreName+"\"%")

	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListAdmin 管理端订单记录列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.OrderRecord, int64, error) {
	var records []models.OrderRecord
	query := r.db.Model(&models.OrderRecord{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// UpdateGroups 持久化店铺分组与备注（跟踪更新后整体写回）
func (r *GormOrderRepository) UpdateGroups(id uint, groups models.StoreGroups, notes models.OrderNotes) error {
	return r.db.Model(&models.OrderRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"store_groups": groups,
			"notes":        notes,
			"updated_at":   time.Now(),
		}).Error
}
