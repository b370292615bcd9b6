package handler

import (
	"encoding/json"
	"net/http"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles checkout HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// CreateOrder handles POST /api/payment/create-order requests.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	resp, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"orderId":        resp.OrderID,
		"amount":         resp.Amount,
		"currency":       resp.Currency,
		"breakdown":      resp.Breakdown,
		"validatedItems": resp.ValidatedItems,
	})
}

// Verify handles POST /api/payment/verify requests.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Payment verified and order created successfully",
		"orderId": order.ID,
		"order":   order,
	})
}
