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

// stockRepository implements the StockRepository interface using PostgreSQL.
// All methods run against the caller's transaction so a checkout either
// applies every decrement or none of them.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

// GetProductForUpdate loads a product's name, stock and embedded options with
// a row lock held for the rest of the transaction.
func (r *stockRepository) GetProductForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, name, stock, options
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var p model.Product
	err := tx.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Stock, &p.Options)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found for stock update")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to lock product row")
		return nil, fmt.Errorf("failed to lock product row: %w", err)
	}

	return &p, nil
}

// SaveOptions persists a product's embedded options list.
func (r *stockRepository) SaveOptions(ctx context.Context, tx pgx.Tx, id uuid.UUID, options []model.Option) error {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET options = $2, updated_at = NOW() WHERE id = $1`,
		id, options,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to save product options")
		return fmt.Errorf("failed to save product options: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// DecrementStock conditionally decrements top-level product stock. A zero
// rows-affected result against an existing product means insufficient stock.
func (r *stockRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE products
		 SET stock = GREATEST(0, stock - $2), updated_at = NOW()
		 WHERE id = $1 AND stock >= $2`,
		id, quantity,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to decrement product stock")
		return false, fmt.Errorf("failed to decrement product stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DecrementOptionMirror decrements the standalone option record only when its
// stock covers the quantity. An under-stocked mirror is skipped, not failed;
// the embedded options list is the one that gates the sale.
func (r *stockRepository) DecrementOptionMirror(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size, color string, quantity int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE product_options
		 SET stock = GREATEST(0, stock - $4)
		 WHERE product_id = $1 AND size = $2 AND color = $3 AND stock >= $4`,
		productID, size, color, quantity,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Str("size", size).
			Str("color", color).
			Msg("failed to decrement option mirror")
		return fmt.Errorf("failed to decrement option mirror: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("product_id", productID.String()).
			Str("size", size).
			Str("color", color).
			Msg("option mirror missing or under-stocked, skipped")
	}

	return nil
}
