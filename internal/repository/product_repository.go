package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `
	id, name, title, description, brand, slug, weight, height, width,
	mrp, price, category_id, stock, featured, images, attributes, options,
	views, created_at, updated_at
`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Title, &p.Description, &p.Brand, &p.Slug,
		&p.Weight, &p.Height, &p.Width, &p.MRP, &p.Price, &p.CategoryID,
		&p.Stock, &p.Featured, &p.Images, &p.Attributes, &p.Options,
		&p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves products matching the query, newest first, along with the
// total count for pagination.
func (r *productRepository) List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error) {
	var conds []string
	var args []any

	if len(q.CategoryIDs) > 0 {
		args = append(args, q.CategoryIDs)
		conds = append(conds, fmt.Sprintf("category_id = ANY($%d)", len(args)))
	}
	if q.Featured != nil {
		args = append(args, *q.Featured)
		conds = append(conds, fmt.Sprintf("featured = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM products" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := "SELECT " + productColumns + " FROM products" + where + " ORDER BY created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE slug = $1"

	p, err := scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("slug", slug).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := "SELECT " + productColumns + " FROM products WHERE id = ANY($1)"

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Create inserts a product and mirrors its embedded options.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO products (
			id, name, title, description, brand, slug, weight, height, width,
			mrp, price, category_id, stock, featured, images, attributes, options,
			views, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = tx.Exec(ctx, query,
		p.ID, p.Name, p.Title, p.Description, p.Brand, p.Slug,
		p.Weight, p.Height, p.Width, p.MRP, p.Price, p.CategoryID,
		p.Stock, p.Featured, p.Images, p.Attributes, p.Options,
		p.Views, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if err := r.mirrorOptions(ctx, tx, p.ID, p.Options); err != nil {
		return err
	}

	if len(p.Images) > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO product_images (product_id, img) VALUES ($1, $2)
			 ON CONFLICT (product_id) DO UPDATE SET img = EXCLUDED.img`,
			p.ID, p.Images,
		)
		if err != nil {
			r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to insert product images")
			return fmt.Errorf("failed to insert product images: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product insert: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created")

	return nil
}

// Update replaces a product's mutable fields and re-mirrors its options.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE products SET
			name = $2, title = $3, description = $4, brand = $5, slug = $6,
			weight = $7, height = $8, width = $9, mrp = $10, price = $11,
			category_id = $12, stock = $13, featured = $14, images = $15,
			attributes = $16, options = $17, updated_at = $18
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		p.ID, p.Name, p.Title, p.Description, p.Brand, p.Slug,
		p.Weight, p.Height, p.Width, p.MRP, p.Price, p.CategoryID,
		p.Stock, p.Featured, p.Images, p.Attributes, p.Options, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	if err := r.mirrorOptions(ctx, tx, p.ID, p.Options); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}

	return nil
}

// mirrorOptions rebuilds the standalone product_options records from the
// embedded options list.
func (r *productRepository) mirrorOptions(ctx context.Context, tx pgx.Tx, productID uuid.UUID, options []model.Option) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_options WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear option mirrors: %w", err)
	}

	if len(options) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, opt := range options {
		batch.Queue(
			`INSERT INTO product_options (id, product_id, size, color, price, mrp, stock)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), productID, opt.Size, opt.Color, opt.Price, opt.MRP, opt.Stock,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range options {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to mirror product option")
			return fmt.Errorf("failed to mirror product option: %w", err)
		}
	}

	return nil
}

// Delete removes a product with its option mirrors and image records.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var images []string
	err = tx.QueryRow(ctx, `SELECT img FROM product_images WHERE product_id = $1`, id).Scan(&images)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to read product images: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_options WHERE product_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete option mirrors: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete product images: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrProductNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product delete: %w", err)
	}

	r.logger.Debug().Str("product_id", id.String()).Msg("product deleted")

	return images, nil
}

// IncrementViews bumps the product view counter.
func (r *productRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to increment views")
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// GetImages returns canonical image lists keyed by product ID.
func (r *productRepository) GetImages(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	images := make(map[uuid.UUID][]string)
	if len(productIDs) == 0 {
		return images, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, img FROM product_images WHERE product_id = ANY($1)`,
		productIDs,
	)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(productIDs)).Msg("failed to query product images")
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record model.ProductImage
		if err := rows.Scan(&record.ProductID, &record.Img); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product image row")
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images[record.ProductID] = record.Img
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product image rows")
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}
