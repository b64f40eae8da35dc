package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopadmin/internal/models"
)

// GORMRevocationStore keeps revoked token ids in the revoked_tokens table.
type GORMRevocationStore struct {
	db *gorm.DB
}

// NewGORMRevocationStore creates a new instance of GORMRevocationStore.
func NewGORMRevocationStore(db *gorm.DB) *GORMRevocationStore {
	return &GORMRevocationStore{db: db}
}

// Revoke records jti as revoked. Revoking twice is not an error.
func (s *GORMRevocationStore) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	row := models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (s *GORMRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return count > 0, nil
}

// PurgeExpired removes rows whose token could no longer be used anyway.
func (s *GORMRevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GORMResetTokenRepository is a GORM implementation of ResetTokenRepository.
type GORMResetTokenRepository struct {
	db *gorm.DB
}

// NewGORMResetTokenRepository creates a new instance of GORMResetTokenRepository.
func NewGORMResetTokenRepository(db *gorm.DB) *GORMResetTokenRepository {
	return &GORMResetTokenRepository{db: db}
}

// Create stores a new reset token digest.
func (r *GORMResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetByHash retrieves a reset token by digest.
func (r *GORMResetTokenRepository) GetByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	if err := r.db.WithContext(ctx).First(&token, "token_hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reset token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return &token, nil
}

// MarkUsed consumes the token only if nobody consumed it first.
func (r *GORMResetTokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to consume reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reset token %s: %w", id, ErrNotFound)
	}
	return nil
}

// InvalidateForUser consumes every outstanding token of a user.
func (r *GORMResetTokenRepository) InvalidateForUser(ctx context.Context, userID string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}
	return nil
}
