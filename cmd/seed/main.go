package main

import (
	"fmt"
	"time"

	"github.com/mercato-api/internal/config"
	"github.com/mercato-api/internal/constants"
	"github.com/mercato-api/internal/logger"
	"github.com/mercato-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", Description: "Phones, audio and smart devices", IsActive: true, SortOrder: 300},
		{Slug: "groceries", Name: "Groceries", Description: "Everyday food and household goods", IsActive: true, SortOrder: 200},
		{Slug: "fashion", Name: "Fashion", Description: "Clothing and accessories", IsActive: true, SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "groceries", "fashion"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商家账号（含店铺名）
	now := time.Now()
	sellers := []models.User{
		{Email: "seller.techhub@example.com", DisplayName: "TechHub", StoreName: "TechHub Store"},
		{Email: "seller.freshmart@example.com", DisplayName: "FreshMart", StoreName: "FreshMart"},
	}
	sellerIDs := map[string]uint{}
	for i := range sellers {
		seller := &sellers[i]
		var existing models.User
		if err := models.DB.Where("email = ?", seller.Email).First(&existing).Error; err != nil {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte("seed-password-123"), bcrypt.DefaultCost)
			if hashErr != nil {
				stdLog.Printf("Failed to hash seed password: %v", hashErr)
				continue
			}
			seller.PasswordHash = string(hash)
			seller.Status = constants.UserStatusActive
			seller.EmailVerifiedAt = &now
			if err := models.DB.Create(seller).Error; err != nil {
				stdLog.Printf("Failed to create seller %s: %v", seller.Email, err)
				continue
			}
			stdLog.Printf("Created seller: %s", seller.Email)
			sellerIDs[seller.StoreName] = seller.ID
		} else {
			stdLog.Printf("Seller already exists: %s", seller.Email)
			sellerIDs[existing.StoreName] = existing.ID
		}
	}

	// 添加商品
	products := []models.Product{
		{
			CategoryID:  categoryIDs["electronics"],
			UserID:      sellerIDs["TechHub Store"],
			StoreName:   "TechHub Store",
			Name:        "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Images:      models.StringArray{"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800"},
			Stock:       120,
			IsActive:    true,
			SortOrder:   300,
		},
		{
			CategoryID:  categoryIDs["electronics"],
			UserID:      sellerIDs["TechHub Store"],
			StoreName:   "TechHub Store",
			Name:        "Smart Watch",
			Description: "Health monitoring, fitness tracking, message notifications",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			Images:      models.StringArray{"https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800"},
			Stock:       60,
			IsActive:    true,
			SortOrder:   280,
		},
		{
			CategoryID:  categoryIDs["groceries"],
			UserID:      sellerIDs["FreshMart"],
			StoreName:   "FreshMart",
			Name:        "Organic Coffee Beans 1kg",
			Description: "Single origin, medium roast, freshly packed",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(24.50)),
			Images:      models.StringArray{"https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=800"},
			Stock:       200,
			IsActive:    true,
			SortOrder:   260,
		},
		{
			CategoryID:  categoryIDs["fashion"],
			UserID:      sellerIDs["FreshMart"],
			StoreName:   "FreshMart",
			Name:        "Canvas Tote Bag",
			Description: "Durable everyday bag with inner pocket",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(15.00)),
			Images:      models.StringArray{"https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800"},
			Stock:       80,
			IsActive:    true,
			SortOrder:   240,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 || prod.UserID == 0 {
			stdLog.Printf("Skip product %s: category or seller missing", prod.Name)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("store_name = ? AND name = ?", prod.StoreName, prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Name)
			}
		} else {
			existing.CategoryID = prod.CategoryID
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.Images = prod.Images
			existing.Stock = prod.Stock
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Name)
			}
		}
	}

	fmt.Println("\nSeed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 2 Sellers (password: seed-password-123)")
	fmt.Println("- 4 Products")
}
