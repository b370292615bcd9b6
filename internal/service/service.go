package service

import (
	"context"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductService defines operations for catalogue products.
type ProductService interface {
	// List retrieves products matching the filter with pagination metadata.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, *model.Pagination, error)

	// GetByID retrieves a single product and bumps its view counter
	// (best-effort).
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySlug retrieves a single product by its URL slug and bumps its
	// view counter (best-effort).
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// Update replaces a product's mutable fields.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)

	// Delete removes a product and best-effort cleans up its hosted images.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryService defines operations for catalogue categories.
type CategoryService interface {
	// GetAll retrieves all categories.
	GetAll(ctx context.Context) ([]model.Category, error)

	// Create inserts a new category.
	Create(ctx context.Context, c *model.Category) (*model.Category, error)

	// Update replaces a category's name, slug and parent.
	Update(ctx context.Context, c *model.Category) error

	// Delete removes a category, detaching its products and children.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockAdjuster applies the stock decrements for a set of purchased line
// items. Both the direct order-creation path and the payment-verification
// path go through this single implementation.
type StockAdjuster interface {
	// Adjust decrements stock for every item within the caller's
	// transaction. On insufficient stock it returns
	// *model.InsufficientStockError and the caller is expected to roll the
	// transaction back, undoing decrements already applied for earlier
	// items.
	Adjust(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create adjusts stock and records an order in one transaction, then
	// runs the best-effort coupon increment and confirmation email.
	Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with joined user and product data.
	// Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderView, error)

	// List retrieves orders matching the filter with joined product data.
	List(ctx context.Context, filter model.OrderListFilter) ([]model.OrderView, error)

	// UpdateStatus validates and applies a status transition.
	// Returns nil when the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)
}

// PaymentService defines the checkout operations against the payment gateway.
type PaymentService interface {
	// CreateOrder re-prices the cart server-side and creates a gateway
	// order for the amount to charge.
	CreateOrder(ctx context.Context, req *model.PaymentOrderRequest) (*model.PaymentOrderResponse, error)

	// Verify checks the gateway callback signature and, only on a match,
	// adjusts stock and records the order.
	Verify(ctx context.Context, req *model.PaymentVerificationRequest) (*model.Order, error)
}
