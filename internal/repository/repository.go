package repository

import (
	"context"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductQuery narrows a product listing at the storage level.
type ProductQuery struct {
	CategoryIDs []uuid.UUID
	Featured    *bool
	Limit       int // 0 means no limit
	Offset      int
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products matching the query, newest first, along with the
	// total count for pagination.
	List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySlug retrieves a single product by its slug. Returns nil when
	// absent.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// Create inserts a product and mirrors its embedded options into the
	// product_options records.
	Create(ctx context.Context, p *model.Product) error

	// Update replaces a product's mutable fields and re-mirrors its options.
	Update(ctx context.Context, p *model.Product) error

	// Delete removes a product together with its option mirrors and image
	// records. Returns the canonical image URLs that were attached, so the
	// caller can clean up the image store.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	// IncrementViews bumps the product view counter.
	IncrementViews(ctx context.Context, id uuid.UUID) error

	// GetImages returns the canonical image lists for the given products,
	// keyed by product ID. Products without a ProductImage record are absent
	// from the map.
	GetImages(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// GetAll retrieves all categories.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetByName retrieves a category by case-insensitive name match.
	// Returns nil when absent.
	GetByName(ctx context.Context, name string) (*model.Category, error)

	// GetChildren retrieves the direct children of a category.
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]model.Category, error)

	// Create inserts a category.
	Create(ctx context.Context, c *model.Category) error

	// Update replaces a category's name, slug and parent.
	Update(ctx context.Context, c *model.Category) error

	// Delete removes a category; products referencing it keep a NULL category.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockRepository exposes the row-level reads and writes the stock adjuster
// runs inside a checkout transaction.
type StockRepository interface {
	// GetProductForUpdate loads a product's name, stock and embedded options
	// with a row lock held for the rest of the transaction. Returns nil when
	// the product does not exist.
	GetProductForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// SaveOptions persists a product's embedded options list.
	SaveOptions(ctx context.Context, tx pgx.Tx, id uuid.UUID, options []model.Option) error

	// DecrementStock conditionally decrements top-level product stock.
	// Returns false when the product exists but has insufficient stock.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error)

	// DecrementOptionMirror decrements the standalone product_options record
	// matching (product, size, color) only when its stock covers the quantity;
	// otherwise it is left untouched.
	DecrementOptionMirror(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size, color string, quantity int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the provided
	// transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns (nil, nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List retrieves orders matching the filter, newest first, with their
	// items keyed by order ID.
	List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, map[uuid.UUID][]model.OrderItem, error)

	// UpdateStatus sets an order's status and refreshes its updated_at.
	// Returns nil when the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)
}

// UserRepository resolves order owners for joined reads.
type UserRepository interface {
	// GetByIDs retrieves users keyed by ID.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetByID retrieves a coupon by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)

	// GetByCode retrieves a coupon by its code. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// IncrementUsage bumps the coupon usage counter. Usage counts are never
	// decremented.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
