package service

import (
	"strings"
	"time"

	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetByID 获取商品详情
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// SaveProductInput 创建/更新商品输入
type SaveProductInput struct {
	CategoryID  uint               `json:"category_id" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Images      models.StringArray `json:"images"`
	Stock       int                `json:"stock"`
	IsActive    *bool              `json:"is_active"`
	SortOrder   int                `json:"sort_order"`
}

// Create 创建商品（商家账号，店铺名取自用户档案）
func (s *ProductService) Create(user *models.User, input SaveProductInput) (*models.Product, error) {
	if user == nil || strings.TrimSpace(user.StoreName) == "" {
		return nil, ErrStoreRequired
	}
	if err := s.ensureCategory(input.CategoryID); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &models.Product{
		CategoryID:  input.CategoryID,
		UserID:      user.ID,
		StoreName:   strings.TrimSpace(user.StoreName),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromFloat(input.Price),
		Images:      input.Images,
		Stock:       input.Stock,
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品（仅限商品所属商家）
func (s *ProductService) Update(user *models.User, id uint, input SaveProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if user != nil && product.UserID != user.ID {
		return nil, ErrTrackingForbidden
	}
	if input.CategoryID != 0 && input.CategoryID != product.CategoryID {
		if err := s.ensureCategory(input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = models.NewMoneyFromFloat(input.Price)
	product.Images = input.Images
	product.Stock = input.Stock
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.SortOrder = input.SortOrder
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品（仅限商品所属商家）
func (s *ProductService) Delete(user *models.User, id uint) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if user != nil && product.UserID != user.ID {
		return ErrTrackingForbidden
	}
	return s.productRepo.Delete(id)
}

func (s *ProductService) ensureCategory(categoryID uint) error {
	if s.categoryRepo == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}
