package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, map[uuid.UUID][]model.OrderItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Get(1).(map[uuid.UUID][]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]model.User), args.Error(1)
}

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStockAdjuster is a mock implementation of StockAdjuster.
type MockStockAdjuster struct {
	mock.Mock
}

func (m *MockStockAdjuster) Adjust(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

// MockMailer is a mock implementation of email.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOrderConfirmation(order *model.Order, toEmail string) error {
	args := m.Called(order, toEmail)
	return args.Error(0)
}

func (m *MockMailer) SendSupportRequest(name, fromEmail, subject, message, category string) error {
	args := m.Called(name, fromEmail, subject, message, category)
	return args.Error(0)
}

type orderServiceMocks struct {
	orderRepo *MockOrderRepository
	products  *MockProductRepository
	users     *MockUserRepository
	coupons   *MockCouponRepository
	adjuster  *MockStockAdjuster
	mailer    *MockMailer
}

func newOrderService() (OrderService, *orderServiceMocks) {
	mocks := &orderServiceMocks{
		orderRepo: new(MockOrderRepository),
		products:  new(MockProductRepository),
		users:     new(MockUserRepository),
		coupons:   new(MockCouponRepository),
		adjuster:  new(MockStockAdjuster),
		mailer:    new(MockMailer),
	}
	svc := NewOrderService(
		mocks.orderRepo,
		mocks.products,
		mocks.users,
		mocks.coupons,
		mocks.adjuster,
		mocks.mailer,
		zerolog.Nop(),
	)
	return svc, mocks
}

func TestOrderService_Create_Success(t *testing.T) {
	ctx := context.Background()

	productID := uuid.New()
	req := &model.OrderRequest{
		Items: []model.OrderItem{
			{ProductID: productID, Name: "Kurta", Price: 799, Quantity: 2},
		},
		TotalAmount:   1598,
		CustomerEmail: "buyer@example.com",
		PaymentMethod: "cod",
	}

	svc, mocks := newOrderService()
	mockTx := new(MockTx)

	mocks.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mocks.adjuster.On("Adjust", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mocks.orderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mocks.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mocks.mailer.On("SendOrderConfirmation", mock.AnythingOfType("*model.Order"), "buyer@example.com").Return(nil)

	order, err := svc.Create(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, 1598.0, order.TotalAmount)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	mocks.orderRepo.AssertExpectations(t)
	mocks.adjuster.AssertExpectations(t)
	mocks.mailer.AssertExpectations(t)
	mocks.coupons.AssertNotCalled(t, "IncrementUsage")
}

func TestOrderService_Create_PrefersCheckoutTotal(t *testing.T) {
	ctx := context.Background()

	req := &model.OrderRequest{
		Items:       []model.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
		TotalAmount: 999,
		Total:       899, // discounted checkout total wins
	}

	svc, mocks := newOrderService()
	mockTx := new(MockTx)

	mocks.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mocks.adjuster.On("Adjust", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrder", ctx, mockTx, mock.MatchedBy(func(o *model.Order) bool {
		return o.TotalAmount == 899
	})).Return(nil)
	mocks.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.Anything).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := svc.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, 899.0, order.TotalAmount)
	mocks.orderRepo.AssertExpectations(t)
}

func TestOrderService_Create_InsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()

	req := &model.OrderRequest{
		Items: []model.OrderItem{{ProductID: uuid.New(), Quantity: 5}},
	}

	svc, mocks := newOrderService()
	mockTx := new(MockTx)

	stockErr := &model.InsufficientStockError{ProductName: "Kurta", Available: 2, Requested: 5}

	mocks.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mocks.adjuster.On("Adjust", ctx, mockTx, mock.Anything).Return(stockErr)
	mockTx.On("Rollback", ctx).Return(nil)

	order, err := svc.Create(ctx, req)

	require.Error(t, err)
	assert.Nil(t, order)
	var ise *model.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.True(t, mockTx.rolledBack)

	mocks.orderRepo.AssertNotCalled(t, "CreateOrder")
	mocks.mailer.AssertNotCalled(t, "SendOrderConfirmation")
}

func TestOrderService_Create_CouponUsageRecorded(t *testing.T) {
	ctx := context.Background()

	couponID := uuid.New()
	coupon := &model.Coupon{
		ID:         couponID,
		Code:       "WELCOME10",
		Active:     true,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
	}

	req := &model.OrderRequest{
		Items:    []model.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
		CouponID: &couponID,
	}

	svc, mocks := newOrderService()
	mockTx := new(MockTx)

	mocks.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mocks.adjuster.On("Adjust", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.Anything).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mocks.coupons.On("GetByID", ctx, couponID).Return(coupon, nil)
	mocks.coupons.On("IncrementUsage", ctx, couponID).Return(nil)

	_, err := svc.Create(ctx, req)

	require.NoError(t, err)
	mocks.coupons.AssertExpectations(t)
}

func TestOrderService_Create_ExpiredCouponNotCounted(t *testing.T) {
	ctx := context.Background()

	coupon := &model.Coupon{
		ID:         uuid.New(),
		Code:       "OLDCODE",
		Active:     true,
		ValidFrom:  time.Now().Add(-48 * time.Hour),
		ValidUntil: time.Now().Add(-24 * time.Hour),
	}

	req := &model.OrderRequest{
		Items:      []model.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
		CouponCode: "OLDCODE",
	}

	svc, mocks := newOrderService()
	mockTx := new(MockTx)

	mocks.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mocks.adjuster.On("Adjust", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.Anything).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mocks.coupons.On("GetByCode", ctx, "OLDCODE").Return(coupon, nil)

	order, err := svc.Create(ctx, req)

	// The expired coupon never fails the order; its usage is simply not
	// recorded.
	require.NoError(t, err)
	require.NotNil(t, order)
	mocks.coupons.AssertNotCalled(t, "IncrementUsage")
}

func TestOrderService_Create_EmailFailureIgnored(t *testing.T) {
	ctx := context.Background()

	req := &model.OrderRequest{
		Items:         []model.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
		CustomerEmail: "buyer@example.com",
	}

	svc, mocks := newOrderService()
	mockTx := new(MockTx)

	mocks.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mocks.adjuster.On("Adjust", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	mocks.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.Anything).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mocks.mailer.On("SendOrderConfirmation", mock.Anything, "buyer@example.com").
		Return(errors.New("smtp unavailable"))

	order, err := svc.Create(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, order)
	mocks.mailer.AssertExpectations(t)
}

func TestOrderService_Create_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc, mocks := newOrderService()

	tests := []struct {
		name        string
		req         *model.OrderRequest
		expectedErr error
	}{
		{
			name: "Nil request",
			req:  nil,
		},
		{
			name: "Empty items",
			req:  &model.OrderRequest{Items: []model.OrderItem{}},
		},
		{
			name: "Missing product ID",
			req: &model.OrderRequest{
				Items: []model.OrderItem{{Quantity: 1}},
			},
		},
		{
			name: "Zero quantity",
			req: &model.OrderRequest{
				Items: []model.OrderItem{{ProductID: uuid.New(), Quantity: 0}},
			},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name: "Negative quantity",
			req: &model.OrderRequest{
				Items: []model.OrderItem{{ProductID: uuid.New(), Quantity: -5}},
			},
			expectedErr: model.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.Create(ctx, tt.req)

			require.Error(t, err)
			assert.Nil(t, order)
			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
			}
		})
	}

	mocks.orderRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()

	order := &model.Order{
		ID:     orderID,
		UserID: &userID,
		Status: model.StatusPending,
	}
	items := []model.OrderItem{
		{ID: uuid.New(), OrderID: orderID, ProductID: productID, Name: "Kurta", Quantity: 2},
	}
	users := map[uuid.UUID]model.User{
		userID: {ID: userID, Name: "Asha", Email: "asha@example.com"},
	}
	products := []model.Product{
		{ID: productID, Name: "Kurta", Price: 799, Slug: "kurta", Images: []string{"inline.jpg"}},
	}
	images := map[uuid.UUID][]string{
		productID: {"canonical.jpg"},
	}

	svc, mocks := newOrderService()

	mocks.orderRepo.On("GetByID", ctx, orderID).Return(order, items, nil)
	mocks.users.On("GetByIDs", ctx, []uuid.UUID{userID}).Return(users, nil)
	mocks.products.On("GetByIDs", ctx, []uuid.UUID{productID}).Return(products, nil)
	mocks.products.On("GetImages", ctx, []uuid.UUID{productID}).Return(images, nil)

	view, err := svc.GetByID(ctx, orderID)

	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, orderID, view.ID)
	require.NotNil(t, view.User)
	assert.Equal(t, "Asha", view.User.Name)
	require.Len(t, view.Items, 1)
	require.NotNil(t, view.Items[0].Product)
	// Canonical image record supersedes inline product images.
	assert.Equal(t, []string{"canonical.jpg"}, view.Items[0].Product.Images)

	mocks.orderRepo.AssertExpectations(t)
	mocks.users.AssertExpectations(t)
	mocks.products.AssertExpectations(t)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()
	svc, mocks := newOrderService()

	mocks.orderRepo.On("GetByID", ctx, orderID).Return(nil, nil, nil)

	view, err := svc.GetByID(ctx, orderID)

	require.NoError(t, err)
	assert.Nil(t, view)
	mocks.products.AssertNotCalled(t, "GetByIDs")
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	orders := []model.Order{{ID: orderID, UserID: &userID, Status: model.StatusDelivered}}
	itemsByOrder := map[uuid.UUID][]model.OrderItem{
		orderID: {{ID: uuid.New(), OrderID: orderID, ProductID: productID, Quantity: 1}},
	}

	svc, mocks := newOrderService()

	filter := model.OrderListFilter{UserID: &userID}
	mocks.orderRepo.On("List", ctx, filter).Return(orders, itemsByOrder, nil)
	mocks.users.On("GetByIDs", ctx, []uuid.UUID{userID}).
		Return(map[uuid.UUID]model.User{userID: {ID: userID, Name: "Asha"}}, nil)
	mocks.products.On("GetByIDs", ctx, []uuid.UUID{productID}).
		Return([]model.Product{{ID: productID, Name: "Kurta"}}, nil)
	mocks.products.On("GetImages", ctx, []uuid.UUID{productID}).
		Return(map[uuid.UUID][]string{}, nil)

	views, err := svc.List(ctx, filter)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, orderID, views[0].ID)
	require.Len(t, views[0].Items, 1)

	mocks.orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()

	tests := []struct {
		name          string
		currentStatus string
		newStatus     string
		expectErrCode string
		expectUpdate  bool
	}{
		{
			name:          "Forward transition",
			currentStatus: model.StatusPending,
			newStatus:     model.StatusShipping,
			expectUpdate:  true,
		},
		{
			name:          "Delivered back to pending rejected",
			currentStatus: model.StatusDelivered,
			newStatus:     model.StatusPending,
			expectErrCode: model.ErrCodeInvalidTransition,
		},
		{
			name:          "Delivered to return accepted allowed",
			currentStatus: model.StatusDelivered,
			newStatus:     model.StatusReturnAccepted,
			expectUpdate:  true,
		},
		{
			name:          "Cancelled to delivered rejected",
			currentStatus: model.StatusCancelled,
			newStatus:     model.StatusDelivered,
			expectErrCode: model.ErrCodeInvalidTransition,
		},
		{
			name:          "Unknown status rejected",
			currentStatus: model.StatusPending,
			newStatus:     "misplaced",
			expectErrCode: model.ErrCodeInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mocks := newOrderService()

			if model.IsValidStatus(tt.newStatus) {
				current := &model.Order{ID: orderID, Status: tt.currentStatus}
				mocks.orderRepo.On("GetByID", ctx, orderID).Return(current, []model.OrderItem{}, nil)
			}
			if tt.expectUpdate {
				updated := &model.Order{ID: orderID, Status: tt.newStatus}
				mocks.orderRepo.On("UpdateStatus", ctx, orderID, tt.newStatus).Return(updated, nil)
			}

			order, err := svc.UpdateStatus(ctx, orderID, tt.newStatus)

			if tt.expectErrCode != "" {
				require.Error(t, err)
				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.expectErrCode, domainErr.Code)
				mocks.orderRepo.AssertNotCalled(t, "UpdateStatus")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, order)
			assert.Equal(t, tt.newStatus, order.Status)
			mocks.orderRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()
	svc, mocks := newOrderService()

	mocks.orderRepo.On("GetByID", ctx, orderID).Return(nil, nil, nil)

	order, err := svc.UpdateStatus(ctx, orderID, model.StatusShipping)

	require.NoError(t, err)
	assert.Nil(t, order)
	mocks.orderRepo.AssertNotCalled(t, "UpdateStatus")
}
