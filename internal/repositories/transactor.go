package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMTransactor runs catalog and credential work inside a database transaction.
type GORMTransactor struct {
	db *gorm.DB
}

// NewGORMTransactor creates a new instance of GORMTransactor.
func NewGORMTransactor(db *gorm.DB) *GORMTransactor {
	return &GORMTransactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (t *GORMTransactor) WithinTransaction(ctx context.Context, fn func(tx CatalogTx) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(CatalogTx{
			Categories: NewGORMCategoryRepository(tx),
			Products:   NewGORMProductRepository(tx),
		})
	})
}

// WithinAccountTransaction commits when fn returns nil and rolls back otherwise.
func (t *GORMTransactor) WithinAccountTransaction(ctx context.Context, fn func(tx AccountTx) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(AccountTx{
			Users:       NewGORMUserRepository(tx),
			ResetTokens: NewGORMResetTokenRepository(tx),
		})
	})
}
