package service

import (
	"context"
	"fmt"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

// GetAll retrieves all categories.
func (s *categoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Create inserts a new category.
func (s *categoryService) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	if c.Name == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Category name is required")
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	if err := s.categoryRepo.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("name", c.Name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Str("category_id", c.ID.String()).Str("name", c.Name).Msg("category created")

	return c, nil
}

// Update replaces a category's name, slug and parent.
func (s *categoryService) Update(ctx context.Context, c *model.Category) error {
	if c.Name == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Category name is required")
	}

	if err := s.categoryRepo.Update(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info().Str("category_id", c.ID.String()).Msg("category updated")

	return nil
}

// Delete removes a category. Products referencing it keep a NULL category and
// child categories are detached, both handled at the storage layer.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")

	return nil
}
