package model

import (
	"time"

	"github.com/google/uuid"
)

// Discount types applied by a coupon.
const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// Coupon is a discount code with a validity window and an optional usage
// limit. UsageCount only ever increments.
type Coupon struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Code          string    `json:"code" db:"code"`
	DiscountType  string    `json:"discountType" db:"discount_type"`
	DiscountValue float64   `json:"discountValue" db:"discount_value"`
	UsageLimit    *int      `json:"usageLimit,omitempty" db:"usage_limit"`
	UsageCount    int       `json:"usageCount" db:"usage_count"`
	ValidFrom     time.Time `json:"validFrom" db:"valid_from"`
	ValidUntil    time.Time `json:"validUntil" db:"valid_until"`
	Active        bool      `json:"active" db:"active"`
}

// IsCurrentlyValid reports whether the coupon can be applied right now:
// active, inside its validity window, and not exhausted.
func (c *Coupon) IsCurrentlyValid(now time.Time) bool {
	if !c.Active {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return false
	}
	return true
}
