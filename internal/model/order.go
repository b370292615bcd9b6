package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses accepted by the status-update endpoint. The payment
// verification path additionally writes the initial value "confirmed"
// directly, which is deliberately not part of this list.
const (
	StatusPending           = "pending"
	StatusProcessing        = "processing"
	StatusShipping          = "shipping"
	StatusOutForDelivery    = "out_for_delivery"
	StatusDelivered         = "delivered"
	StatusCancelled         = "cancelled"
	StatusReturnAccepted    = "return_accepted"
	StatusReturnNotAccepted = "return_not_accepted"
)

// ValidStatuses is the set of statuses the update endpoint accepts.
var ValidStatuses = []string{
	StatusPending,
	StatusProcessing,
	StatusShipping,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
	StatusReturnAccepted,
	StatusReturnNotAccepted,
}

// RestrictedTransitions lists target statuses that may not be reached from a
// given current status. Only these specific backward moves are rejected; any
// transition not listed here is permitted.
var RestrictedTransitions = map[string][]string{
	StatusDelivered: {StatusPending, StatusProcessing, StatusShipping},
	StatusCancelled: {StatusPending, StatusProcessing, StatusShipping, StatusOutForDelivery, StatusDelivered},
}

// IsValidStatus reports whether s is one of the accepted order statuses.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsRestrictedTransition reports whether moving from the current status to the
// requested status is disallowed.
func IsRestrictedTransition(from, to string) bool {
	for _, blocked := range RestrictedTransitions[from] {
		if blocked == to {
			return true
		}
	}
	return false
}

// SelectedOption identifies the size/colour variant a line item was bought in.
type SelectedOption struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// HasVariant reports whether both size and colour are set; only then is stock
// tracked against the option rather than the product.
func (s *SelectedOption) HasVariant() bool {
	return s != nil && s.Size != "" && s.Color != ""
}

// OrderItem is one line item of an order.
type OrderItem struct {
	ID             uuid.UUID       `json:"-" db:"id"`
	OrderID        uuid.UUID       `json:"-" db:"order_id"`
	ProductID      uuid.UUID       `json:"productId" db:"product_id"`
	Name           string          `json:"name" db:"name"`
	Price          float64         `json:"price" db:"price"`
	Quantity       int             `json:"quantity" db:"quantity"`
	SelectedOption *SelectedOption `json:"selectedOption,omitempty"`
}

// ShippingAddress is stored verbatim on the order.
type ShippingAddress struct {
	Name    string `json:"name,omitempty"`
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Order represents a customer order. Created once, after stock has been
// decremented; mutated only through the status-update endpoint; never deleted.
type Order struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	UserID            *uuid.UUID       `json:"userId,omitempty" db:"user_id"`
	Items             []OrderItem      `json:"items"`
	TotalAmount       float64          `json:"totalAmount" db:"total_amount"`
	ShippingAddress   *ShippingAddress `json:"shippingAddress,omitempty"`
	CustomerEmail     string           `json:"customerEmail,omitempty" db:"customer_email"`
	PaymentMethod     string           `json:"paymentMethod,omitempty" db:"payment_method"`
	PaymentStatus     string           `json:"paymentStatus,omitempty" db:"payment_status"`
	RazorpayPaymentID string           `json:"razorpayPaymentId,omitempty" db:"razorpay_payment_id"`
	RazorpayOrderID   string           `json:"razorpayOrderId,omitempty" db:"razorpay_order_id"`
	Status            string           `json:"status" db:"status"`
	CreatedAt         time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt" db:"updated_at"`
}

// OrderRequest is the payload for creating an order directly (cash-on-delivery
// style) or, via the payment verification path, after a successful signature
// check.
type OrderRequest struct {
	UserID          *uuid.UUID       `json:"userId,omitempty"`
	Items           []OrderItem      `json:"items"`
	TotalAmount     float64          `json:"totalAmount"`
	Total           float64          `json:"total,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	CustomerEmail   string           `json:"customerEmail,omitempty"`
	PaymentMethod   string           `json:"paymentMethod,omitempty"`
	PaymentStatus   string           `json:"paymentStatus,omitempty"`
	Status          string           `json:"status,omitempty"`
	CouponID        *uuid.UUID       `json:"couponId,omitempty"`
	CouponCode      string           `json:"couponCode,omitempty"`

	RazorpayPaymentID string `json:"razorpayPaymentId,omitempty"`
	RazorpayOrderID   string `json:"razorpayOrderId,omitempty"`
}

// Amount returns the order total, preferring the checkout-computed Total when
// present.
func (r *OrderRequest) Amount() float64 {
	if r.Total != 0 {
		return r.Total
	}
	return r.TotalAmount
}

// OrderItemProduct is the product projection joined onto an order item.
type OrderItemProduct struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  float64   `json:"price"`
	Images []string  `json:"images"`
	Slug   string    `json:"slug"`
}

// OrderItemView is an order item with joined product data. Images come from
// the canonical ProductImage record when present, falling back to the inline
// product images.
type OrderItemView struct {
	OrderItem
	Product *OrderItemProduct `json:"product,omitempty"`
}

// OrderUser is the user projection joined onto an order.
type OrderUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderView is an order with joined user and product data.
type OrderView struct {
	Order
	Items []OrderItemView `json:"items"`
	User  *OrderUser      `json:"user,omitempty"`
}

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	UserID *uuid.UUID
	Status string
}
