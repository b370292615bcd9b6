package handler

import (
	"encoding/json"
	"net/http"

	"github.com/SHUBHAMREWA/kanvei.in/internal/auth"
	"github.com/SHUBHAMREWA/kanvei.in/internal/middleware"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service    service.OrderService
	authorizer auth.Authorizer
	logger     zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, authorizer auth.Authorizer, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:    service,
		authorizer: authorizer,
		logger:     logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
		"orderId": order.ID,
	})
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "Order not found", h.logger)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if !h.authorizer.CanViewOrder(r.Context(), principal, &order.Order) {
		writeError(w, http.StatusForbidden, "Unauthorized", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.OrderListFilter{
		Status: query.Get("status"),
	}
	if raw := query.Get("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID", h.logger)
			return
		}
		filter.UserID = &userID
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if orders == nil {
		orders = []model.OrderView{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
	})
}

// statusUpdateRequest is the payload for PUT /api/orders/{id}.
type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/orders/{id} requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID", h.logger)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "Status is required", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "Order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}
