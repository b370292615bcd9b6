package main

import (
	"context"
	"log"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/config"
	"github.com/SHUBHAMREWA/kanvei.in/internal/database"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// seedCatalog populates a development database with a small catalogue:
// a category tree, a few products (one with size/colour variants) and a
// pair of coupons. Intended for local development only; it assumes the
// schema already exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)

	clothing := &model.Category{ID: uuid.New(), Name: "Clothing", Slug: "clothing"}
	if err := categoryRepo.Create(ctx, clothing); err != nil {
		log.Fatalf("failed to create category: %v", err)
	}

	kurtas := &model.Category{ID: uuid.New(), Name: "Kurtas", Slug: "kurtas", ParentID: &clothing.ID}
	if err := categoryRepo.Create(ctx, kurtas); err != nil {
		log.Fatalf("failed to create subcategory: %v", err)
	}

	now := time.Now()
	products := []*model.Product{
		{
			ID:         uuid.New(),
			Name:       "Silk Kurta",
			Slug:       "silk-kurta",
			Brand:      "Kanvei",
			Price:      1299,
			MRP:        1799,
			CategoryID: &kurtas.ID,
			Stock:      25,
			Featured:   true,
			Images:     []string{"https://res.cloudinary.com/demo/silk-kurta.jpg"},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:         uuid.New(),
			Name:       "Cotton Saree",
			Slug:       "cotton-saree",
			Brand:      "Kanvei",
			Price:      2499,
			MRP:        2999,
			CategoryID: &clothing.ID,
			Stock:      12,
			Images:     []string{"https://res.cloudinary.com/demo/cotton-saree.jpg"},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:         uuid.New(),
			Name:       "Linen Shirt",
			Slug:       "linen-shirt",
			Brand:      "Kanvei",
			Price:      999,
			MRP:        1299,
			CategoryID: &clothing.ID,
			Options: []model.Option{
				{Size: "M", Color: "blue", Price: 999, MRP: 1299, Stock: 8},
				{Size: "L", Color: "blue", Price: 1049, MRP: 1349, Stock: 6},
				{Size: "M", Color: "white", Price: 999, MRP: 1299, Stock: 4},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, p := range products {
		if err := productRepo.Create(ctx, p); err != nil {
			log.Fatalf("failed to create product %s: %v", p.Name, err)
		}
		logger.Info().Str("name", p.Name).Str("id", p.ID.String()).Msg("product seeded")
	}

	seedCoupons(ctx, pool, logger)

	logger.Info().Msg("catalogue seeded")
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) {
	limit := 100
	coupons := []model.Coupon{
		{
			ID:            uuid.New(),
			Code:          "FESTIVE10",
			DiscountType:  model.DiscountPercentage,
			DiscountValue: 10,
			UsageLimit:    &limit,
			ValidFrom:     time.Now(),
			ValidUntil:    time.Now().AddDate(0, 1, 0),
			Active:        true,
		},
		{
			ID:            uuid.New(),
			Code:          "FLAT200",
			DiscountType:  model.DiscountFlat,
			DiscountValue: 200,
			ValidFrom:     time.Now(),
			ValidUntil:    time.Now().AddDate(0, 0, 7),
			Active:        true,
		},
	}

	for _, c := range coupons {
		_, err := pool.Exec(ctx,
			`INSERT INTO coupons (id, code, discount_type, discount_value, usage_limit, usage_count, valid_from, valid_until, active)
			 VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8)
			 ON CONFLICT (code) DO NOTHING`,
			c.ID, c.Code, c.DiscountType, c.DiscountValue, c.UsageLimit, c.ValidFrom, c.ValidUntil, c.Active,
		)
		if err != nil {
			log.Fatalf("failed to seed coupon %s: %v", c.Code, err)
		}
		logger.Info().Str("code", c.Code).Msg("coupon seeded")
	}
}
