package repositories

import (
	"context"
	"errors"
	"time"

	"shopadmin/internal/models"
)

// ErrNotFound is wrapped by every lookup that matches no live row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is wrapped by writes rejected by a unique index.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository defines the interface for credential data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// CategoryRepository defines the interface for category data access.
// Every read is scoped to rows that are not soft-deleted.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	SoftDelete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product data access.
// Every read is scoped to rows that are not soft-deleted and preloads the category.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByNameInCategory(ctx context.Context, name, categoryID string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, id string) error
}

// CatalogTx exposes catalog repositories bound to one transaction.
type CatalogTx struct {
	Categories CategoryRepository
	Products   ProductRepository
}

// Transactor runs fn atomically: everything fn writes commits, or nothing does.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx CatalogTx) error) error
}

// ResetTokenRepository stores password reset token digests.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error)
	// MarkUsed consumes an unused token; it returns ErrNotFound if the token was already consumed.
	MarkUsed(ctx context.Context, id string, at time.Time) error
	InvalidateForUser(ctx context.Context, userID string, at time.Time) error
}

// AccountTx exposes credential repositories bound to one transaction.
type AccountTx struct {
	Users       UserRepository
	ResetTokens ResetTokenRepository
}

// AccountTransactor runs credential changes atomically.
type AccountTransactor interface {
	WithinAccountTransaction(ctx context.Context, fn func(tx AccountTx) error) error
}
