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

func TestCreateProductRequiresStore(t *testing.T) {
	svc, db := setupProductServiceTest(t)

	category := createProductTestCategory(t, db, "electronics")
	buyer := models.User{ID: 1, Email: "buyer@example.com"}

	_, err := svc.Create(&buyer, SaveProductInput{CategoryID: category.ID, Name: "Earphones", Price: 99.99})
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestCreateProductUsesSellerStoreName(t *testing.T) {
	svc, db := setupProductServiceTest(t)

	category := createProductTestCategory(t, db, "electronics")
	seller := models.User{ID: 5, Email: "seller@example.com", StoreName: "TechHub Store"}

	product, err := svc.Create(&seller, SaveProductInput{
		CategoryID: category.ID,
		Name:       "  Earphones  ",
		Price:      99.99,
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.StoreName != "TechHub Store" {
		t.Fatalf("expected store name from seller profile, got %q", product.StoreName)
	}
	if product.Name != "Earphones" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if !product.IsActive {
		t.Fatalf("expected product active by default")
	}

	_, err = svc.Create(&seller, SaveProductInput{CategoryID: category.ID + 100, Name: "Watch", Price: 10})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	svc, db := setupProductServiceTest(t)

	category := createProductTestCategory(t, db, "electronics")
	owner := models.User{ID: 5, Email: "owner@example.com", StoreName: "TechHub Store"}
	product, err := svc.Create(&owner, SaveProductInput{CategoryID: category.ID, Name: "Earphones", Price: 99.99})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	other := models.User{ID: 6, Email: "other@example.com", StoreName: "FreshMart"}
	if _, err := svc.Update(&other, product.ID, SaveProductInput{CategoryID: category.ID, Name: "Hijacked", Price: 1}); !errors.Is(err, ErrTrackingForbidden) {
		t.Fatalf("expected ErrTrackingForbidden, got %v", err)
	}
	if err := svc.Delete(&other, product.ID); !errors.Is(err, ErrTrackingForbidden) {
		t.Fatalf("expected ErrTrackingForbidden on delete, got %v", err)
	}

	updated, err := svc.Update(&owner, product.ID, SaveProductInput{
		CategoryID: category.ID,
		Name:       "Earphones Pro",
		Price:      129.99,
		Stock:      3,
	})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != "Earphones Pro" || updated.Price.String() != "129.99" {
		t.Fatalf("unexpected updated product: name=%q price=%s", updated.Name, updated.Price.String())
	}

	if err := svc.Delete(&owner, product.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := svc.GetByID(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestCategoryServiceSlugUniqueness(t *testing.T) {
	_, db := setupProductServiceTest(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	created, err := svc.Create(SaveCategoryInput{Slug: "electronics", Name: "Electronics"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if _, err := svc.Create(SaveCategoryInput{Slug: "electronics", Name: "Dup"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	other, err := svc.Create(SaveCategoryInput{Slug: "fashion", Name: "Fashion"})
	if err != nil {
		t.Fatalf("create second category failed: %v", err)
	}
	if _, err := svc.Update(other.ID, SaveCategoryInput{Slug: "electronics", Name: "Fashion"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists on update, got %v", err)
	}

	loaded, err := svc.GetBySlug(created.Slug, true)
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if loaded.ID != created.ID {
		t.Fatalf("expected category %d, got %d", created.ID, loaded.ID)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	if _, err := svc.GetBySlug(created.Slug, false); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after delete, got %v", err)
	}
}

func setupProductServiceTest(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:product_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	return NewProductService(repository.NewProductRepository(db), repository.NewCategoryRepository(db)), db
}

func createProductTestCategory(t *testing.T, db *gorm.DB, slug string) models.Category {
	t.Helper()

	row := models.Category{Slug: slug, Name: slug, IsActive: true}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return row
}
