package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/models"
	"shopadmin/internal/repositories"
	"shopadmin/internal/services"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestCategoryService_CRUD(t *testing.T) {
	ctx := context.Background()
	catalog := repositories.NewMemoryCatalog()
	service := services.NewCategoryService(catalog.Categories(), nil)

	books, err := service.Create(ctx, " Books ", "Printed matter")
	require.NoError(t, err)
	assert.Equal(t, "Books", books.CategoryName)
	assert.NotEmpty(t, books.ID)

	_, err = service.Create(ctx, "Books", "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "duplicate live name")

	_, err = service.Create(ctx, "  ", "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	// partial update leaves the description alone
	updated, err := service.Update(ctx, books.ID, services.CategoryPatch{CategoryName: strPtr("Novels")})
	require.NoError(t, err)
	assert.Equal(t, "Novels", updated.CategoryName)
	assert.Equal(t, "Printed matter", updated.Description)

	music, err := service.Create(ctx, "Music", "")
	require.NoError(t, err)
	_, err = service.Update(ctx, music.ID, services.CategoryPatch{CategoryName: strPtr("Novels")})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "rename onto a taken name")

	_, err = service.Update(ctx, "missing", services.CategoryPatch{Description: strPtr("x")})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	require.NoError(t, service.Delete(ctx, books.ID))
	_, err = service.Get(ctx, books.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "soft-deleted rows are invisible")
	assert.True(t, apperrors.Is(service.Delete(ctx, books.ID), apperrors.KindNotFound))

	list, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Music", list[0].CategoryName)

	// the name of a deleted category is free again
	_, err = service.Create(ctx, "Novels", "")
	assert.NoError(t, err)
}

func TestProductService_CRUD(t *testing.T) {
	ctx := context.Background()
	catalog := repositories.NewMemoryCatalog()
	categories := services.NewCategoryService(catalog.Categories(), nil)
	service := services.NewProductService(catalog.Products(), catalog.Categories(), nil)

	books, err := categories.Create(ctx, "Books", "")
	require.NoError(t, err)

	price := decimal.RequireFromString("499.999")
	atlas, err := service.Create(ctx, services.ProductInput{
		CategoryID:   strPtr(books.ID),
		ProductName:  strPtr("Atlas"),
		ProductPrice: &price,
		Currency:     strPtr("usd"),
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", atlas.Currency)
	assert.True(t, atlas.ProductPrice.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, 0, atlas.StockQuantity)
	assert.Equal(t, "Books", atlas.CategoryName())

	defaults, err := service.Create(ctx, services.ProductInput{CategoryID: strPtr(books.ID), ProductName: strPtr("Globe")})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCurrency, defaults.Currency)
	assert.True(t, defaults.ProductPrice.IsZero())

	_, err = service.Create(ctx, services.ProductInput{CategoryID: strPtr("nope"), ProductName: strPtr("Ghost")})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "category must exist")

	_, err = service.Create(ctx, services.ProductInput{ProductName: strPtr("Orphan")})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	negative := decimal.NewFromInt(-1)
	_, err = service.Create(ctx, services.ProductInput{CategoryID: strPtr(books.ID), ProductName: strPtr("Debt"), ProductPrice: &negative})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	// partial update
	updated, err := service.Update(ctx, atlas.ID, services.ProductInput{StockQuantity: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.StockQuantity)
	assert.Equal(t, "Atlas", updated.ProductName)
	assert.Equal(t, "USD", updated.Currency)

	_, err = service.Update(ctx, atlas.ID, services.ProductInput{StockQuantity: intPtr(-3)})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	got, err := service.Get(ctx, atlas.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.StockQuantity)

	require.NoError(t, service.Delete(ctx, atlas.ID))
	_, err = service.Get(ctx, atlas.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	list, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Globe", list[0].ProductName)

	// deleting the category does not cascade
	require.NoError(t, categories.Delete(ctx, books.ID))
	_, err = service.Get(ctx, defaults.ID)
	assert.NoError(t, err)
}

func TestNotFoundVersusInternal(t *testing.T) {
	ctx := context.Background()
	service := services.NewCategoryService(failingCategories{}, nil)

	_, err := service.List(ctx)
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
	_, err = service.Get(ctx, "x")
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
}

type failingCategories struct {
	repositories.CategoryRepository
}

func (failingCategories) List(context.Context) ([]models.Category, error) {
	return nil, errors.New("db down")
}

func (failingCategories) GetByID(context.Context, string) (*models.Category, error) {
	return nil, errors.New("db down")
}
