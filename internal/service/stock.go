package service

import (
	"context"
	"fmt"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// stockAdjuster implements StockAdjuster.
type stockAdjuster struct {
	stockRepo repository.StockRepository
	logger    zerolog.Logger
}

// NewStockAdjuster creates a new stock adjuster.
func NewStockAdjuster(stockRepo repository.StockRepository, logger zerolog.Logger) StockAdjuster {
	return &stockAdjuster{
		stockRepo: stockRepo,
		logger:    logger.With().Str("service", "stock").Logger(),
	}
}

// Adjust decrements stock for each line item in order. Items whose product no
// longer exists are skipped: the order is still recorded against the catalogue
// snapshot the customer bought from. A shortfall aborts with
// *model.InsufficientStockError so the caller can roll the transaction back.
func (s *stockAdjuster) Adjust(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}

		product, err := s.stockRepo.GetProductForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load product for stock update: %w", err)
		}
		if product == nil {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Msg("product missing during stock adjustment, skipping")
			continue
		}

		if item.SelectedOption.HasVariant() {
			if err := s.adjustOption(ctx, tx, product, item); err != nil {
				return err
			}
			continue
		}

		if err := s.adjustProduct(ctx, tx, product, item); err != nil {
			return err
		}
	}

	return nil
}

// adjustOption decrements the embedded option matching the item's variant and
// then the standalone product_options mirror. The embedded list is
// authoritative: a shortfall there fails the adjustment, while the mirror
// update silently skips records that cannot cover the quantity.
func (s *stockAdjuster) adjustOption(ctx context.Context, tx pgx.Tx, product *model.Product, item model.OrderItem) error {
	opt := item.SelectedOption

	found := false
	for i, o := range product.Options {
		if o.Size != opt.Size || o.Color != opt.Color {
			continue
		}
		found = true

		if o.Stock < item.Quantity {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Str("size", opt.Size).
				Str("color", opt.Color).
				Int("available", o.Stock).
				Int("requested", item.Quantity).
				Msg("insufficient option stock")
			return &model.InsufficientStockError{
				ProductName: product.Name,
				Size:        opt.Size,
				Color:       opt.Color,
				Available:   o.Stock,
				Requested:   item.Quantity,
			}
		}

		product.Options[i].Stock = o.Stock - item.Quantity
		break
	}

	if !found {
		s.logger.Warn().
			Str("product_id", product.ID.String()).
			Str("size", opt.Size).
			Str("color", opt.Color).
			Msg("option missing during stock adjustment, skipping")
		return nil
	}

	if err := s.stockRepo.SaveOptions(ctx, tx, product.ID, product.Options); err != nil {
		return fmt.Errorf("failed to save product options: %w", err)
	}

	if err := s.stockRepo.DecrementOptionMirror(ctx, tx, product.ID, opt.Size, opt.Color, item.Quantity); err != nil {
		return fmt.Errorf("failed to decrement option record: %w", err)
	}

	s.logger.Debug().
		Str("product_id", product.ID.String()).
		Str("size", opt.Size).
		Str("color", opt.Color).
		Int("quantity", item.Quantity).
		Msg("option stock decremented")

	return nil
}

// adjustProduct decrements top-level product stock for items bought without a
// variant.
func (s *stockAdjuster) adjustProduct(ctx context.Context, tx pgx.Tx, product *model.Product, item model.OrderItem) error {
	if product.Stock < item.Quantity {
		s.logger.Warn().
			Str("product_id", product.ID.String()).
			Int("available", product.Stock).
			Int("requested", item.Quantity).
			Msg("insufficient product stock")
		return &model.InsufficientStockError{
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   item.Quantity,
		}
	}

	ok, err := s.stockRepo.DecrementStock(ctx, tx, product.ID, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement product stock: %w", err)
	}
	if !ok {
		return &model.InsufficientStockError{
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   item.Quantity,
		}
	}

	s.logger.Debug().
		Str("product_id", product.ID.String()).
		Int("quantity", item.Quantity).
		Msg("product stock decremented")

	return nil
}
