package coupon

import (
	"context"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
)

// Validator defines the interface for coupon code validation.
type Validator interface {
	// Validate checks that a coupon code can be applied right now.
	// A valid coupon must be active, inside its validity window, and not
	// have exhausted its usage limit. Returns the coupon on success so the
	// caller can compute the discount.
	Validate(ctx context.Context, code string) (*model.Coupon, error)
}
