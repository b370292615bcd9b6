package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/coupon"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/payment"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Shipping and taxes are not charged at checkout.
const (
	shippingCharge = 0.0
	taxCharge      = 0.0
)

// paymentService implements PaymentService.
type paymentService struct {
	gateway      payment.Gateway
	productRepo  repository.ProductRepository
	validator    coupon.Validator
	orderService OrderService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	gateway payment.Gateway,
	productRepo repository.ProductRepository,
	validator coupon.Validator,
	orderService OrderService,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		gateway:      gateway,
		productRepo:  productRepo,
		validator:    validator,
		orderService: orderService,
		logger:       logger.With().Str("service", "payment").Logger(),
		now:          time.Now,
	}
}

// CreateOrder re-prices the cart from the catalogue, applies the coupon and
// creates a gateway order for the final amount. Client-supplied prices are
// never trusted; a client-supplied FinalAmount overrides the computed total
// only downward, never upward.
func (s *paymentService) CreateOrder(ctx context.Context, req *model.PaymentOrderRequest) (*model.PaymentOrderResponse, error) {
	if req == nil || len(req.CartItems) == 0 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Cart is empty")
	}

	for i, item := range req.CartItems {
		if item.ProductID == uuid.Nil {
			return nil, model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("Cart item %d is missing a product ID", i))
		}
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
	}

	validated, subtotal, err := s.priceCart(ctx, req.CartItems)
	if err != nil {
		return nil, err
	}

	total := subtotal + shippingCharge + taxCharge

	discount := 0.0
	couponApplied := false
	if code := strings.TrimSpace(req.AppliedCoupon); code != "" {
		c, err := s.validator.Validate(ctx, code)
		if err != nil {
			s.logger.Warn().Str("coupon_code", code).Err(err).Msg("invalid coupon at checkout")
			return nil, err
		}
		discount = couponDiscount(c, total)
		couponApplied = true
		s.logger.Debug().Str("coupon_code", code).Float64("discount", discount).Msg("coupon applied")
	}

	finalTotal := total - discount
	if req.FinalAmount != nil && *req.FinalAmount < finalTotal {
		finalTotal = *req.FinalAmount
	}
	if finalTotal < 0 {
		finalTotal = 0
	}
	// With a coupon applied, the reported discount is the full gap between
	// the pre-coupon total and the amount actually charged.
	if couponApplied {
		discount = total - finalTotal
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	amount := int64(math.Round(finalTotal * 100))
	receipt := fmt.Sprintf("receipt_%d", s.now().UnixMilli())

	gwOrder, err := s.gateway.CreateOrder(amount, currency, receipt)
	if err != nil {
		s.logger.Error().Err(err).Int64("amount", amount).Msg("failed to create payment order")
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	s.logger.Info().
		Str("gateway_order_id", gwOrder.ID).
		Int64("amount", gwOrder.Amount).
		Int("item_count", len(validated)).
		Msg("payment order created")

	return &model.PaymentOrderResponse{
		OrderID:  gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		Breakdown: model.PriceBreakdown{
			Subtotal:   subtotal,
			Shipping:   shippingCharge,
			Taxes:      taxCharge,
			Total:      total,
			Discount:   discount,
			FinalTotal: finalTotal,
		},
		ValidatedItems: validated,
	}, nil
}

// priceCart resolves every cart line against the catalogue. Option purchases
// use the matching option's price; everything else uses the product price.
func (s *paymentService) priceCart(ctx context.Context, items []model.CartItem) ([]model.ValidatedItem, float64, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool)
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products for pricing")
		return nil, 0, fmt.Errorf("failed to price cart: %w", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	validated := make([]model.ValidatedItem, 0, len(items))
	subtotal := 0.0

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("cart references unknown product")
			return nil, 0, model.ErrProductNotFound
		}

		price := product.Price
		if item.SelectedOption.HasVariant() {
			for _, o := range product.Options {
				if o.Size == item.SelectedOption.Size && o.Color == item.SelectedOption.Color {
					price = o.Price
					break
				}
			}
		}

		lineTotal := price * float64(item.Quantity)
		subtotal += lineTotal

		validated = append(validated, model.ValidatedItem{
			ProductID:      product.ID,
			Name:           product.Name,
			Price:          price,
			Quantity:       item.Quantity,
			SelectedOption: item.SelectedOption,
			Total:          lineTotal,
		})
	}

	return validated, subtotal, nil
}

// couponDiscount computes the money value of a coupon against the given total.
func couponDiscount(c *model.Coupon, total float64) float64 {
	var discount float64
	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = total * c.DiscountValue / 100
	case model.DiscountFlat:
		discount = c.DiscountValue
	}
	if discount > total {
		discount = total
	}
	return discount
}

// Verify checks the gateway callback signature and records the order. A
// mismatched signature or a payload without order data fails verification;
// nothing distinguishes the two cases to the caller.
func (s *paymentService) Verify(ctx context.Context, req *model.PaymentVerificationRequest) (*model.Order, error) {
	if req == nil || req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return nil, model.ErrPaymentVerificationFailed
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.logger.Warn().
			Str("gateway_order_id", req.RazorpayOrderID).
			Str("payment_id", req.RazorpayPaymentID).
			Msg("payment signature mismatch")
		return nil, model.ErrPaymentVerificationFailed
	}

	if req.OrderData == nil {
		s.logger.Warn().
			Str("gateway_order_id", req.RazorpayOrderID).
			Msg("verified payment missing order data")
		return nil, model.ErrPaymentVerificationFailed
	}

	orderReq := *req.OrderData
	orderReq.PaymentMethod = "razorpay"
	orderReq.PaymentStatus = "paid"
	orderReq.Status = "confirmed"
	orderReq.RazorpayPaymentID = req.RazorpayPaymentID
	orderReq.RazorpayOrderID = req.RazorpayOrderID

	order, err := s.orderService.Create(ctx, &orderReq)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("gateway_order_id", req.RazorpayOrderID).
			Msg("failed to record verified order")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("gateway_order_id", req.RazorpayOrderID).
		Msg("payment verified and order recorded")

	return order, nil
}
