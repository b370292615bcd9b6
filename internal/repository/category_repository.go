package repository

import (
	"context"
	"fmt"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// GetAll retrieves all categories.
func (r *categoryRepository) GetAll(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, parent_id FROM categories ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetByName retrieves a category by case-insensitive name match.
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, parent_id FROM categories WHERE LOWER(name) = LOWER($1)`,
		name,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("name", name).Msg("category not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("name", name).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

// GetChildren retrieves the direct children of a category.
func (r *categoryRepository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, parent_id FROM categories WHERE parent_id = $1 ORDER BY name`,
		parentID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("parent_id", parentID.String()).Msg("failed to query child categories")
		return nil, fmt.Errorf("failed to query child categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Create inserts a category.
func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name, slug, parent_id) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Slug, c.ParentID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("name", c.Name).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update replaces a category's name, slug and parent.
func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, slug = $3, parent_id = $4 WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.ParentID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category; products referencing it keep a NULL category.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE products SET category_id = NULL WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach products from category: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE categories SET parent_id = NULL WHERE parent_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach child categories: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}

	return tx.Commit(ctx)
}
