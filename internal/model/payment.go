package model

import "github.com/google/uuid"

// CartItem is a client-supplied checkout line. Client prices are ignored;
// every item is re-priced from the catalogue before charging.
type CartItem struct {
	ProductID      uuid.UUID       `json:"productId"`
	Quantity       int             `json:"quantity"`
	SelectedOption *SelectedOption `json:"selectedOption,omitempty"`
}

// PaymentOrderRequest asks for a gateway order covering the cart.
type PaymentOrderRequest struct {
	CartItems       []CartItem       `json:"cartItems"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	AppliedCoupon   string           `json:"appliedCoupon,omitempty"`
	FinalAmount     *float64         `json:"finalAmount,omitempty"`
}

// ValidatedItem is a cart line after server-side re-pricing.
type ValidatedItem struct {
	ProductID      uuid.UUID       `json:"productId"`
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	Quantity       int             `json:"quantity"`
	SelectedOption *SelectedOption `json:"selectedOption,omitempty"`
	Total          float64         `json:"total"`
}

// PriceBreakdown itemises the charge presented to the customer. Shipping and
// taxes are zero by policy.
type PriceBreakdown struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Taxes      float64 `json:"taxes"`
	Total      float64 `json:"total"`
	Discount   float64 `json:"discount"`
	FinalTotal float64 `json:"finalTotal"`
}

// PaymentOrderResponse carries the gateway order plus the server-computed
// pricing the client must use.
type PaymentOrderResponse struct {
	OrderID        string          `json:"orderId"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	Breakdown      PriceBreakdown  `json:"breakdown"`
	ValidatedItems []ValidatedItem `json:"validatedItems"`
}

// PaymentVerificationRequest is the gateway callback payload posted back by
// the client after completing payment.
type PaymentVerificationRequest struct {
	RazorpayOrderID   string        `json:"razorpay_order_id"`
	RazorpayPaymentID string        `json:"razorpay_payment_id"`
	RazorpaySignature string        `json:"razorpay_signature"`
	OrderData         *OrderRequest `json:"orderData"`
}
