package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/models"
	"shopadmin/internal/repositories"
)

// ProductInput carries the fields of a product create or partial update. Nil fields are left unchanged
// on update and take their defaults on create.
type ProductInput struct {
	CategoryID         *string
	ProductName        *string
	ProductDescription *string
	ProductPrice       *decimal.Decimal
	Currency           *string
	StockQuantity      *int
	SKU                *string
	ImageURL           *string
}

// ProductService handles business logic related to products.
type ProductService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	log        *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(products repositories.ProductRepository, categories repositories.CategoryRepository, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		products:   products,
		categories: categories,
		log:        log,
	}
}

// List returns every product that is not soft-deleted.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Could not list products", err)
	}
	return products, nil
}

// Get returns one live product.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "Could not get product")
	}
	return product, nil
}

// Create adds a product to a live category.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		ProductPrice: decimal.Zero,
		Currency:     models.DefaultCurrency,
	}
	if in.CategoryID == nil || strings.TrimSpace(*in.CategoryID) == "" {
		return nil, apperrors.ValidationFields("category is required", map[string]string{
			"category": "This field is required.",
		})
	}
	if in.ProductName == nil || strings.TrimSpace(*in.ProductName) == "" {
		return nil, apperrors.ValidationFields("product_name is required", map[string]string{
			"product_name": "This field is required.",
		})
	}
	if err := s.apply(ctx, product, in); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Internal("Could not create product", err)
	}
	s.log.Info("Product created", zap.String("product_id", product.ID), zap.String("category_id", product.CategoryID))
	return product, nil
}

// Update applies a partial update to a live product.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "Could not update product")
	}
	if err := s.apply(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "Product not found", "Could not update product")
	}
	return product, nil
}

// Delete soft-deletes a live product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return notFoundOr(err, "Product not found", "Could not delete product")
	}
	s.log.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// apply validates in and copies its present fields onto product.
func (s *ProductService) apply(ctx context.Context, product *models.Product, in ProductInput) error {
	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		category, err := s.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ValidationFields("Category not found", map[string]string{
					"category": "Invalid category - object does not exist.",
				})
			}
			return apperrors.Internal("Could not look up category", err)
		}
		product.CategoryID = category.ID
		product.Category = category
	}
	if in.ProductName != nil {
		name := strings.TrimSpace(*in.ProductName)
		if name == "" {
			return apperrors.ValidationFields("product_name may not be blank", map[string]string{
				"product_name": "This field may not be blank.",
			})
		}
		product.ProductName = name
	}
	if in.ProductDescription != nil {
		product.ProductDescription = *in.ProductDescription
	}
	if in.ProductPrice != nil {
		if in.ProductPrice.IsNegative() {
			return apperrors.ValidationFields("product_price must not be negative", map[string]string{
				"product_price": "Ensure this value is greater than or equal to 0.",
			})
		}
		product.ProductPrice = in.ProductPrice.Round(2)
	}
	if in.Currency != nil {
		currency, err := normalizeCurrency(*in.Currency)
		if err != nil {
			return err
		}
		product.Currency = currency
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return apperrors.ValidationFields("stock_quantity must not be negative", map[string]string{
				"stock_quantity": "Ensure this value is greater than or equal to 0.",
			})
		}
		product.StockQuantity = *in.StockQuantity
	}
	if in.SKU != nil {
		product.SKU = *in.SKU
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	return nil
}

// normalizeCurrency upper-cases a three letter currency code; blank means the default.
func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.DefaultCurrency, nil
	}
	if len(code) != 3 {
		return "", apperrors.ValidationFields("currency must be a three letter code", map[string]string{
			"currency": "Ensure this field has no more than 3 characters.",
		})
	}
	return code, nil
}
