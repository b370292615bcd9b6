package model

import "fmt"

// ErrorResponse represents a standardised error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeInvalidCoupon     = "INVALID_COUPON"
	ErrCodePaymentVerifyFail = "PAYMENT_VERIFICATION_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound  = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrOrderNotFound    = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrCategoryNotFound = NewDomainError(ErrCodeNotFound, "Category not found")
	ErrCouponNotFound   = NewDomainError(ErrCodeNotFound, "Coupon not found")
	ErrInvalidQuantity  = NewDomainError(ErrCodeMissingField, "Quantity must be greater than zero")
	ErrUnauthorised     = NewDomainError(ErrCodeForbidden, "Unauthorized")

	// ErrPaymentVerificationFailed deliberately carries no detail: a signature
	// mismatch is indistinguishable from a malformed payload at the boundary.
	ErrPaymentVerificationFailed = NewDomainError(ErrCodePaymentVerifyFail, "Payment verification failed")

	ErrCouponExpired   = NewDomainError(ErrCodeInvalidCoupon, "Coupon is not currently valid")
	ErrCouponExhausted = NewDomainError(ErrCodeInvalidCoupon, "Coupon usage limit reached")
)

// InsufficientStockError reports a stock shortfall for a product or one of its
// variants. Size and Color are empty for products without options.
type InsufficientStockError struct {
	ProductName string
	Size        string
	Color       string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	if e.Size != "" || e.Color != "" {
		return fmt.Sprintf("Insufficient stock for %s (%s, %s). Available: %d, Requested: %d",
			e.ProductName, e.Size, e.Color, e.Available, e.Requested)
	}
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}
