package handler

import (
	"encoding/json"
	"net/http"

	"github.com/SHUBHAMREWA/kanvei.in/internal/coupon"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon validation HTTP requests.
type CouponHandler struct {
	validator coupon.Validator
	logger    zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(validator coupon.Validator, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		validator: validator,
		logger:    logger.With().Str("handler", "coupon").Logger(),
	}
}

// validateCouponRequest is the payload for POST /api/coupons/validate.
type validateCouponRequest struct {
	Code string `json:"code"`
}

// Validate handles POST /api/coupons/validate requests.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	c, err := h.validator.Validate(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"coupon":  c,
	})
}
