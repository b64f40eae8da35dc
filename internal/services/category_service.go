package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/models"
	"shopadmin/internal/repositories"
)

// CategoryPatch carries the fields of a partial category update. Nil fields are left unchanged.
type CategoryPatch struct {
	CategoryName *string
	Description  *string
}

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo repositories.CategoryRepository
	log  *zap.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{repo: repo, log: log}
}

// List returns every category that is not soft-deleted.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Could not list categories", err)
	}
	return categories, nil
}

// Get returns one live category.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category not found", "Could not get category")
	}
	return category, nil
}

// Create adds a category. Names must be unique among live categories.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationFields("category_name is required", map[string]string{
			"category_name": "This field may not be blank.",
		})
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{CategoryName: name, Description: description}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, apperrors.Internal("Could not create category", err)
	}
	s.log.Info("Category created", zap.String("category_id", category.ID))
	return category, nil
}

// Update applies a partial update to a live category.
func (s *CategoryService) Update(ctx context.Context, id string, patch CategoryPatch) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category not found", "Could not update category")
	}

	if patch.CategoryName != nil {
		name := strings.TrimSpace(*patch.CategoryName)
		if name == "" {
			return nil, apperrors.ValidationFields("category_name may not be blank", map[string]string{
				"category_name": "This field may not be blank.",
			})
		}
		if name != category.CategoryName {
			if err := s.ensureNameFree(ctx, name, category.ID); err != nil {
				return nil, err
			}
		}
		category.CategoryName = name
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, notFoundOr(err, "Category not found", "Could not update category")
	}
	return category, nil
}

// Delete soft-deletes a live category. Its products are left untouched.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(err, "Category not found", "Could not delete category")
	}
	s.log.Info("Category deleted", zap.String("category_id", id))
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.ValidationFields("Category with this name already exists.", map[string]string{
			"category_name": "category with this category name already exists.",
		})
	case err == nil, errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return apperrors.Internal("Could not check category name", err)
	}
}

// notFoundOr maps repository misses to a NotFound error and everything else to an internal one.
func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(notFoundMsg)
	}
	return apperrors.Internal(internalMsg, err)
}
