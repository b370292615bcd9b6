package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL DEFAULT '',
			parent_id UUID REFERENCES categories(id)
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			height DOUBLE PRECISION NOT NULL DEFAULT 0,
			width DOUBLE PRECISION NOT NULL DEFAULT 0,
			mrp DOUBLE PRECISION NOT NULL DEFAULT 0,
			price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
			category_id UUID REFERENCES categories(id),
			stock INTEGER NOT NULL DEFAULT 0,
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			images TEXT[] NOT NULL DEFAULT '{}',
			attributes JSONB NOT NULL DEFAULT '[]',
			options JSONB NOT NULL DEFAULT '[]',
			views INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS product_options (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			size TEXT NOT NULL,
			color TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			mrp DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS product_images (
			product_id UUID PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
			img TEXT[] NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer'
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id),
			total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping_address JSONB,
			customer_email TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			payment_status TEXT NOT NULL DEFAULT '',
			razorpay_payment_id TEXT NOT NULL DEFAULT '',
			razorpay_order_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			option_size TEXT NOT NULL DEFAULT '',
			option_color TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS coupons (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			discount_type TEXT NOT NULL,
			discount_value DOUBLE PRECISION NOT NULL,
			usage_limit INTEGER,
			usage_count INTEGER NOT NULL DEFAULT 0,
			valid_from TIMESTAMPTZ NOT NULL,
			valid_until TIMESTAMPTZ NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalogue inserts a small catalogue and returns the product IDs keyed by
// name.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) map[string]uuid.UUID {
	t.Helper()

	ctx := context.Background()
	ids := make(map[string]uuid.UUID)

	categoryID := uuid.New()
	_, err := pool.Exec(ctx,
		"INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)",
		categoryID, "Clothing", "clothing",
	)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	products := []struct {
		name    string
		slug    string
		price   float64
		stock   int
		options string
	}{
		{"Silk Kurta", "silk-kurta", 1299, 10, `[]`},
		{"Cotton Saree", "cotton-saree", 2499, 5, `[]`},
		{"Linen Shirt", "linen-shirt", 999, 0, `[{"size":"M","color":"blue","price":999,"mrp":1299,"stock":4},{"size":"L","color":"blue","price":1049,"mrp":1349,"stock":2}]`},
	}

	for _, p := range products {
		id := uuid.New()
		ids[p.name] = id
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, slug, price, category_id, stock, options)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, p.name, p.slug, p.price, categoryID, p.stock, p.options,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.name, err)
		}
	}

	// Mirror the Linen Shirt variants into product_options.
	for _, opt := range []struct {
		size, color string
		price       float64
		stock       int
	}{
		{"M", "blue", 999, 4},
		{"L", "blue", 1049, 2},
	} {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_options (id, product_id, size, color, price, stock)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), ids["Linen Shirt"], opt.size, opt.color, opt.price, opt.stock,
		)
		if err != nil {
			t.Fatalf("failed to seed product option: %v", err)
		}
	}

	return ids
}

// SeedUser inserts a user row and returns its ID.
func SeedUser(t *testing.T, pool *pgxpool.Pool, name, email, role string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)",
		id, name, email, role,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// SeedCoupon inserts an active coupon valid for the next hour.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, code, discountType string, value float64, usageLimit *int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO coupons (id, code, discount_type, discount_value, usage_limit, valid_from, valid_until, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
		id, code, discountType, value, usageLimit, now.Add(-time.Hour), now.Add(time.Hour),
	)
	if err != nil {
		t.Fatalf("failed to seed coupon %s: %v", code, err)
	}
	return id
}

// ProductStock reads the current inline stock for a product.
func ProductStock(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock FROM products WHERE id = $1", id).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read product stock: %v", err)
	}
	return stock
}

// OptionStock reads the embedded JSONB stock for a product variant.
func OptionStock(t *testing.T, pool *pgxpool.Pool, id uuid.UUID, size, color string) int {
	t.Helper()

	var raw []model.Option
	err := pool.QueryRow(context.Background(),
		"SELECT options FROM products WHERE id = $1", id).Scan(&raw)
	if err != nil {
		t.Fatalf("failed to read product options: %v", err)
	}
	for _, o := range raw {
		if o.Size == size && o.Color == color {
			return o.Stock
		}
	}
	t.Fatalf("option %s/%s not found on product %s", size, color, id)
	return 0
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "product_options", "product_images", "products", "categories", "coupons", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
