package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/media"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	imageStore   media.ImageStore
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	imageStore media.ImageStore,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		imageStore:   imageStore,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products matching the filter, newest first. A category filter
// matches the named category and all of its direct children; a subcategory
// filter narrows to the named child. An unknown category name yields an empty
// page rather than an error.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, *model.Pagination, error) {
	query := repository.ProductQuery{
		Featured: filter.Featured,
	}

	if filter.Category != "" {
		ids, ok, err := s.resolveCategoryIDs(ctx, filter.Category, filter.Subcategory)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			s.logger.Debug().Str("category", filter.Category).Msg("unknown category, returning empty listing")
			page := filter.Page
			if page < 1 {
				page = 1
			}
			return []model.Product{}, &model.Pagination{
				CurrentPage: page,
				Limit:       filter.Limit,
			}, nil
		}
		query.CategoryIDs = ids
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	if filter.Limit > 0 {
		query.Limit = filter.Limit
		query.Offset = (page - 1) * filter.Limit
	}

	products, total, err := s.productRepo.List(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, nil, fmt.Errorf("failed to list products: %w", err)
	}

	pagination := &model.Pagination{
		CurrentPage: page,
		TotalCount:  total,
		Limit:       filter.Limit,
	}
	if filter.Limit > 0 {
		pagination.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
		pagination.HasMore = page < pagination.TotalPages
	} else if total > 0 {
		pagination.TotalPages = 1
	}

	return products, pagination, nil
}

// resolveCategoryIDs maps category/subcategory names to the category IDs a
// listing should match. The second return value is false when the category
// name resolves to nothing.
func (s *productService) resolveCategoryIDs(ctx context.Context, categoryName, subcategoryName string) ([]uuid.UUID, bool, error) {
	category, err := s.categoryRepo.GetByName(ctx, categoryName)
	if err != nil {
		s.logger.Error().Err(err).Str("category", categoryName).Msg("failed to resolve category")
		return nil, false, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, false, nil
	}

	children, err := s.categoryRepo.GetChildren(ctx, category.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("category", categoryName).Msg("failed to load subcategories")
		return nil, false, fmt.Errorf("failed to load subcategories: %w", err)
	}

	if subcategoryName != "" {
		// A subcategory matches on a case-insensitive name fragment or an
		// exact slug.
		needle := strings.ToLower(subcategoryName)
		for _, child := range children {
			if strings.Contains(strings.ToLower(child.Name), needle) || child.Slug == subcategoryName {
				return []uuid.UUID{child.ID}, true, nil
			}
		}
		// Unknown subcategory narrows to nothing.
		return nil, false, nil
	}

	ids := make([]uuid.UUID, 0, len(children)+1)
	ids = append(ids, category.ID)
	for _, child := range children {
		ids = append(ids, child.ID)
	}
	return ids, true, nil
}

// GetByID retrieves a product and bumps its view counter. The counter bump is
// best-effort and never fails the read.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, nil
	}

	if err := s.productRepo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("failed to increment product views")
	} else {
		product.Views++
	}

	return product, nil
}

// GetBySlug retrieves a product by its URL slug and bumps its view counter.
// The counter bump is best-effort and never fails the read.
func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("slug", slug).Msg("product not found")
		return nil, nil
	}

	if err := s.productRepo.IncrementViews(ctx, product.ID); err != nil {
		s.logger.Warn().Err(err).Str("product_id", product.ID.String()).Msg("failed to increment product views")
	} else {
		product.Views++
	}

	return product, nil
}

// Create inserts a new product.
func (s *productService) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	if p.Name == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Product name is required")
	}
	if p.Price < 0 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Product price must not be negative")
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.productRepo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", p.ID.String()).
		Str("name", p.Name).
		Int("option_count", len(p.Options)).
		Msg("product created")

	return p, nil
}

// Update replaces a product's mutable fields.
func (s *productService) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, p.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to load product for update")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if existing == nil {
		return nil, model.ErrProductNotFound
	}

	p.CreatedAt = existing.CreatedAt
	p.Views = existing.Views
	p.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID.String()).Msg("product updated")

	return p, nil
}

// Delete removes a product and best-effort cleans up its hosted images.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	images, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if len(images) > 0 {
		if err := s.imageStore.DeleteImages(ctx, images); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", id.String()).
				Int("image_count", len(images)).
				Msg("failed to delete hosted images")
		}
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}
