package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/auth"
	"shopadmin/internal/metrics"
	"shopadmin/internal/models"
	"shopadmin/internal/repositories"
)

// BulkImportRequest is the loosely typed payload of a bulk upload.
type BulkImportRequest struct {
	Categories []map[string]interface{} `json:"categories"`
	Products   []map[string]interface{} `json:"products"`
}

// BulkImportResult lists the names of entities that did not exist before the import.
type BulkImportResult struct {
	CreatedCategories []string `json:"created_categories"`
	CreatedProducts   []string `json:"created_products"`
}

// BulkImportService creates categories and products that are not yet present.
// Categories and products are committed as two separate transactions, categories first.
type BulkImportService struct {
	tx      repositories.Transactor
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewBulkImportService creates a new BulkImportService.
func NewBulkImportService(tx repositories.Transactor, m *metrics.Metrics, log *zap.Logger) *BulkImportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BulkImportService{tx: tx, metrics: m, log: log}
}

// Import runs the category batch and then the product batch. Re-running an import is safe:
// existing categories (by name) and products (by name within category) are skipped.
// If the product batch fails, the categories it follows stay committed.
func (s *BulkImportService) Import(ctx context.Context, caller *auth.Principal, req BulkImportRequest) (*BulkImportResult, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}

	result := &BulkImportResult{
		CreatedCategories: []string{},
		CreatedProducts:   []string{},
	}

	if len(req.Categories) > 0 {
		err := s.tx.WithinTransaction(ctx, func(tx repositories.CatalogTx) error {
			created, err := importCategories(ctx, tx.Categories, req.Categories)
			if err != nil {
				return err
			}
			result.CreatedCategories = created
			return nil
		})
		if err != nil {
			return nil, s.batchError("categories", err)
		}
	}

	if len(req.Products) > 0 {
		err := s.tx.WithinTransaction(ctx, func(tx repositories.CatalogTx) error {
			created, err := importProducts(ctx, tx, req.Products)
			if err != nil {
				return err
			}
			result.CreatedProducts = created
			return nil
		})
		if err != nil {
			s.log.Warn("Bulk import product batch rolled back after categories committed",
				zap.Int("committed_categories", len(result.CreatedCategories)))
			return nil, s.batchError("products", err)
		}
	}

	s.metrics.ObserveBulkImport(len(result.CreatedCategories), len(result.CreatedProducts))
	s.log.Info("Bulk import completed",
		zap.String("user_id", caller.UserID),
		zap.Int("created_categories", len(result.CreatedCategories)),
		zap.Int("created_products", len(result.CreatedProducts)))
	return result, nil
}

// batchError keeps validation errors as they are and hides store failures behind a validation error.
func (s *BulkImportService) batchError(batch string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindValidation {
		return appErr
	}
	s.log.Error("Bulk import batch failed", zap.String("batch", batch), zap.Error(err))
	return apperrors.Validation(fmt.Sprintf("Bulk upload failed while importing %s", batch))
}

func importCategories(ctx context.Context, repo repositories.CategoryRepository, records []map[string]interface{}) ([]string, error) {
	created := []string{}
	for i, record := range records {
		name, err := stringField(record, "category_name")
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperrors.Validation(fmt.Sprintf("category_name is required for categories (record %d)", i))
		}

		_, err = repo.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}

		description, err := stringField(record, "description")
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, &models.Category{CategoryName: name, Description: description}); err != nil {
			return nil, err
		}
		created = append(created, name)
	}
	return created, nil
}

func importProducts(ctx context.Context, tx repositories.CatalogTx, records []map[string]interface{}) ([]string, error) {
	created := []string{}
	for _, record := range records {
		categoryName, err := stringField(record, "category_name")
		if err != nil {
			return nil, err
		}
		categoryName = strings.TrimSpace(categoryName)
		if categoryName == "" {
			return nil, apperrors.Validation("category_name is required for products")
		}

		category, err := tx.Categories.GetByName(ctx, categoryName)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.Validation(fmt.Sprintf("Category '%s' not found", categoryName))
			}
			return nil, err
		}

		name, err := stringField(record, "product_name")
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperrors.Validation("product_name is required for products")
		}

		_, err = tx.Products.GetByNameInCategory(ctx, name, category.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}

		product, err := productFromRecord(record)
		if err != nil {
			return nil, err
		}
		product.ProductName = name
		product.CategoryID = category.ID
		if err := tx.Products.Create(ctx, product); err != nil {
			return nil, err
		}
		created = append(created, name)
	}
	return created, nil
}

// productFromRecord builds a product with defaults overridden by whatever the record carries.
func productFromRecord(record map[string]interface{}) (*models.Product, error) {
	product := &models.Product{
		ProductPrice: decimal.Zero,
		Currency:     models.DefaultCurrency,
	}

	description, err := stringField(record, "product_description")
	if err != nil {
		return nil, err
	}
	if _, ok := record["product_description"]; !ok {
		if description, err = stringField(record, "description"); err != nil {
			return nil, err
		}
	}
	product.ProductDescription = description

	if raw, ok := record["product_price"]; ok && raw != nil {
		price, err := decimalValue(raw)
		if err != nil || price.IsNegative() {
			return nil, apperrors.Validation("product_price must be a non-negative number")
		}
		product.ProductPrice = price.Round(2)
	}

	currency, err := stringField(record, "currency")
	if err != nil {
		return nil, err
	}
	if product.Currency, err = normalizeCurrency(currency); err != nil {
		return nil, err
	}

	if raw, ok := record["stock_quantity"]; ok && raw != nil {
		stock, err := intValue(raw)
		if err != nil || stock < 0 {
			return nil, apperrors.Validation("stock_quantity must be a non-negative integer")
		}
		product.StockQuantity = stock
	}

	if product.SKU, err = stringField(record, "sku"); err != nil {
		return nil, err
	}
	if product.ImageURL, err = stringField(record, "image_url"); err != nil {
		return nil, err
	}
	return product, nil
}

// stringField returns record[key] as a string; absent or null yields "".
func stringField(record map[string]interface{}, key string) (string, error) {
	raw, ok := record[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.Validation(fmt.Sprintf("%s must be a string", key))
	}
	return s, nil
}

func decimalValue(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %T", raw)
	}
}

func intValue(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("unsupported quantity type %T", raw)
	}
}
