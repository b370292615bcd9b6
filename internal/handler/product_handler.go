package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SHUBHAMREWA/kanvei.in/internal/auth"
	"github.com/SHUBHAMREWA/kanvei.in/internal/middleware"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"
	"github.com/SHUBHAMREWA/kanvei.in/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service    service.ProductService
	authorizer auth.Authorizer
	logger     zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, authorizer auth.Authorizer, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:    service,
		authorizer: authorizer,
		logger:     logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.ProductFilter{
		Category:    query.Get("category"),
		Subcategory: query.Get("subcategory"),
	}

	if raw := query.Get("featured"); raw != "" {
		featured := raw == "true"
		filter.Featured = &featured
	}
	if raw := query.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	products, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"products":   products,
		"pagination": pagination,
	})
}

// GetByID handles GET /api/products/{id} requests. The path segment is a
// product UUID or, failing that, a product slug.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]

	var product *model.Product
	var err error
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		product, err = h.service.GetByID(r.Context(), id)
	} else {
		product, err = h.service.GetBySlug(r.Context(), key)
	}
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.CanManageCatalog(r.Context(), middleware.PrincipalFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "Admin access required", h.logger)
		return
	}

	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	created, err := h.service.Create(r.Context(), &product)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"product": created,
	})
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.CanManageCatalog(r.Context(), middleware.PrincipalFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "Admin access required", h.logger)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", h.logger)
		return
	}

	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	product.ID = id

	updated, err := h.service.Update(r.Context(), &product)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": updated,
	})
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.CanManageCatalog(r.Context(), middleware.PrincipalFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "Admin access required", h.logger)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product deleted successfully",
	})
}
