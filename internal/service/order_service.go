package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/email"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	couponRepo  repository.CouponRepository
	adjuster    StockAdjuster
	mailer      email.Mailer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	couponRepo repository.CouponRepository,
	adjuster StockAdjuster,
	mailer email.Mailer,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		couponRepo:  couponRepo,
		adjuster:    adjuster,
		mailer:      mailer,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// Create decrements stock and records the order in a single transaction, so a
// shortfall on any line item leaves earlier decrements undone. Coupon usage
// tracking and the confirmation email run after commit and are best-effort.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	order := &model.Order{
		ID:                uuid.New(),
		UserID:            req.UserID,
		TotalAmount:       req.Amount(),
		ShippingAddress:   req.ShippingAddress,
		CustomerEmail:     req.CustomerEmail,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     req.PaymentStatus,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpayOrderID:   req.RazorpayOrderID,
		Status:            req.Status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if order.Status == "" {
		order.Status = model.StatusPending
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		orderItems[i] = model.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       item.Quantity,
			SelectedOption: item.SelectedOption,
		}
	}

	if err = s.adjuster.Adjust(ctx, tx, orderItems); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("stock adjustment failed")
		return nil, err
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = orderItems

	s.recordCouponUsage(ctx, req)
	s.sendConfirmation(order, req.CustomerEmail)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Float64("total_amount", order.TotalAmount).
		Msg("order created successfully")

	return order, nil
}

// recordCouponUsage bumps the usage counter of the coupon applied at checkout.
// Failures only log: the order already exists and the customer is not blocked
// on usage accounting.
func (s *orderService) recordCouponUsage(ctx context.Context, req *model.OrderRequest) {
	var (
		coupon *model.Coupon
		err    error
	)

	switch {
	case req.CouponID != nil:
		coupon, err = s.couponRepo.GetByID(ctx, *req.CouponID)
	case req.CouponCode != "":
		coupon, err = s.couponRepo.GetByCode(ctx, req.CouponCode)
	default:
		return
	}

	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load coupon for usage tracking")
		return
	}
	if coupon == nil {
		s.logger.Warn().Str("coupon_code", req.CouponCode).Msg("applied coupon not found, skipping usage tracking")
		return
	}
	if !coupon.IsCurrentlyValid(s.now()) {
		s.logger.Warn().Str("coupon_code", coupon.Code).Msg("applied coupon no longer valid, skipping usage tracking")
		return
	}

	if err := s.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
		s.logger.Warn().Err(err).Str("coupon_code", coupon.Code).Msg("failed to increment coupon usage")
		return
	}

	s.logger.Debug().Str("coupon_code", coupon.Code).Msg("coupon usage recorded")
}

// sendConfirmation emails the customer. Failures only log.
func (s *orderService) sendConfirmation(order *model.Order, toEmail string) {
	if toEmail == "" {
		return
	}
	if err := s.mailer.SendOrderConfirmation(order, toEmail); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to send order confirmation")
	}
}

// GetByID retrieves an order by its ID with joined user and product details.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderView, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	views, err := s.buildViews(ctx, []model.Order{*order}, map[uuid.UUID][]model.OrderItem{order.ID: items})
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}

// List retrieves orders matching the filter with joined user and product
// details, newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderListFilter) ([]model.OrderView, error) {
	orders, itemsByOrder, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return s.buildViews(ctx, orders, itemsByOrder)
}

// buildViews joins user and product projections onto the given orders.
func (s *orderService) buildViews(ctx context.Context, orders []model.Order, itemsByOrder map[uuid.UUID][]model.OrderItem) ([]model.OrderView, error) {
	userIDs := make([]uuid.UUID, 0, len(orders))
	seenUsers := make(map[uuid.UUID]bool)
	productIDs := make([]uuid.UUID, 0)
	seenProducts := make(map[uuid.UUID]bool)

	for _, order := range orders {
		if order.UserID != nil && !seenUsers[*order.UserID] {
			seenUsers[*order.UserID] = true
			userIDs = append(userIDs, *order.UserID)
		}
		for _, item := range itemsByOrder[order.ID] {
			if !seenProducts[item.ProductID] {
				seenProducts[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	users := map[uuid.UUID]model.User{}
	if len(userIDs) > 0 {
		var err error
		users, err = s.userRepo.GetByIDs(ctx, userIDs)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to retrieve order users")
			return nil, fmt.Errorf("failed to retrieve order users: %w", err)
		}
	}

	products := map[uuid.UUID]model.Product{}
	images := map[uuid.UUID][]string{}
	if len(productIDs) > 0 {
		list, err := s.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to retrieve product details")
			return nil, fmt.Errorf("failed to retrieve product details: %w", err)
		}
		for _, p := range list {
			products[p.ID] = p
		}

		images, err = s.productRepo.GetImages(ctx, productIDs)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to retrieve product images")
			return nil, fmt.Errorf("failed to retrieve product images: %w", err)
		}
	}

	views := make([]model.OrderView, len(orders))
	for i, order := range orders {
		view := model.OrderView{Order: order}

		if order.UserID != nil {
			if u, ok := users[*order.UserID]; ok {
				view.User = &model.OrderUser{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}

		items := itemsByOrder[order.ID]
		view.Items = make([]model.OrderItemView, len(items))
		for j, item := range items {
			itemView := model.OrderItemView{OrderItem: item}
			if p, ok := products[item.ProductID]; ok {
				imgs := p.Images
				if canonical, ok := images[p.ID]; ok && len(canonical) > 0 {
					imgs = canonical
				}
				itemView.Product = &model.OrderItemProduct{
					ID:     p.ID,
					Name:   p.Name,
					Price:  p.Price,
					Images: imgs,
					Slug:   p.Slug,
				}
			}
			view.Items[j] = itemView
		}

		views[i] = view
	}

	return views, nil
}

// UpdateStatus validates and applies an order status transition.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	if !model.IsValidStatus(status) {
		s.logger.Warn().Str("order_id", id.String()).Str("status", status).Msg("invalid order status")
		return nil, model.NewDomainError(model.ErrCodeInvalidStatus, fmt.Sprintf("Invalid status: %s", status))
	}

	current, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order for status update")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if current == nil {
		return nil, nil
	}

	if model.IsRestrictedTransition(current.Status, status) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", current.Status).
			Str("to", status).
			Msg("restricted status transition")
		return nil, model.NewDomainError(
			model.ErrCodeInvalidTransition,
			fmt.Sprintf("Cannot change status from %s to %s", current.Status, status),
		)
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if order != nil {
		s.logger.Info().
			Str("order_id", id.String()).
			Str("from", current.Status).
			Str("to", status).
			Msg("order status updated")
	}

	return order, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
