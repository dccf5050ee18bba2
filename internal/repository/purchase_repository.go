package repository

import (
	"errors"

	"github.com/mercato-api/internal/models"

	"gorm.io/gorm"
)

// PurchaseRepository 购买记录数据访问接口
type PurchaseRepository interface {
	Create(record *models.PurchaseRecord) error
	GetByID(id uint) (*models.PurchaseRecord, error)
	GetByOrderID(orderID string) (*models.PurchaseRecord, error)
	ExistsByOrderID(orderID string) (bool, error)
	ListByUser(filter PurchaseListFilter) ([]models.PurchaseRecord, int64, error)
	ListAdmin(filter PurchaseListFilter) ([]models.PurchaseRecord, int64, error)
	WithTx(tx *gorm.DB) *GormPurchaseRepository
}

// GormPurchaseRepository GORM 实现
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建购买记录仓库
func NewPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPurchaseRepository) WithTx(tx *gorm.DB) *GormPurchaseRepository {
	if tx == nil {
		return r
	}
	return &GormPurchaseRepository{db: tx}
}

// Create 创建购买记录
func (r *GormPurchaseRepository) Create(record *models.PurchaseRecord) error {
	return r.db.Create(record).Error
}

// GetByID 根据 ID 获取购买记录
func (r *GormPurchaseRepository) GetByID(id uint) (*models.PurchaseRecord, error) {
	var record models.PurchaseRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByOrderID 根据订单编号获取购买记录
func (r *GormPurchaseRepository) GetByOrderID(orderID string) (*models.PurchaseRecord, error) {
	var record models.PurchaseRecord
	if err := r.db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ExistsByOrderID 判断订单编号是否已存在
func (r *GormPurchaseRepository) ExistsByOrderID(orderID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.PurchaseRecord{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser 获取用户购买记录列表（按创建时间倒序）
func (r *GormPurchaseRepository) ListByUser(filter PurchaseListFilter) ([]models.PurchaseRecord, int64, error) {
	var records []models.PurchaseRecord
	query := r.db.Model(&models.PurchaseRecord{}).Where("user_id = ?", filter.UserID)

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

// ListAdmin 管理端购买记录列表
func (r *GormPurchaseRepository) ListAdmin(filter PurchaseListFilter) ([]models.PurchaseRecord, int64, error) {
	var records []models.PurchaseRecord
	query := r.db.Model(&models.PurchaseRecord{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
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
