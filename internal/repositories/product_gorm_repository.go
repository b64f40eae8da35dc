package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopadmin/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("products.is_deleted = ?", false)
}

// List retrieves all live products.
func (r *GORMProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.live(ctx).Preload("Category").Order("products.created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single live product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.live(ctx).Preload("Category").First(&product, "products.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByNameInCategory retrieves a live product by its (name, category) pair.
func (r *GORMProductRepository) GetByNameInCategory(ctx context.Context, name, categoryID string) (*models.Product, error) {
	var product models.Product
	err := r.live(ctx).
		Where("products.product_name = ? AND products.category_id = ?", name, categoryID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q in category %s: %w", name, categoryID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %q: %w", name, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes every mutable column of a live product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.live(ctx).Where("products.id = ?", product.ID).Updates(map[string]interface{}{
		"category_id":         product.CategoryID,
		"product_name":        product.ProductName,
		"product_description": product.ProductDescription,
		"product_price":       product.ProductPrice,
		"currency":            product.Currency,
		"stock_quantity":      product.StockQuantity,
		"sku":                 product.SKU,
		"image_url":           product.ImageURL,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// SoftDelete flags a live product as deleted.
func (r *GORMProductRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.live(ctx).Where("products.id = ?", id).Update("is_deleted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
