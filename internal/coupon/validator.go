package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/repository"

	"github.com/rs/zerolog"
)

// validator implements Validator against the coupon records.
type validator struct {
	coupons repository.CouponRepository
	logger  zerolog.Logger
	now     func() time.Time
}

// NewValidator creates a new coupon validator.
func NewValidator(coupons repository.CouponRepository, logger zerolog.Logger) Validator {
	return &validator{
		coupons: coupons,
		logger:  logger.With().Str("component", "coupon-validator").Logger(),
		now:     time.Now,
	}
}

// Validate checks that a coupon code can be applied right now.
func (v *validator) Validate(ctx context.Context, code string) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.ErrCouponNotFound
	}

	c, err := v.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		v.logger.Debug().Str("code", code).Msg("coupon code not found")
		return nil, model.ErrCouponNotFound
	}

	now := v.now()
	if !c.Active || now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		v.logger.Debug().
			Str("code", code).
			Bool("active", c.Active).
			Time("valid_from", c.ValidFrom).
			Time("valid_until", c.ValidUntil).
			Msg("coupon outside validity window")
		return nil, model.ErrCouponExpired
	}

	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		v.logger.Debug().
			Str("code", code).
			Int("usage_count", c.UsageCount).
			Int("usage_limit", *c.UsageLimit).
			Msg("coupon usage limit reached")
		return nil, model.ErrCouponExhausted
	}

	return c, nil
}
