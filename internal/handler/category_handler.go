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

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	service    service.CategoryService
	authorizer auth.Authorizer
	logger     zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, authorizer auth.Authorizer, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:    service,
		authorizer: authorizer,
		logger:     logger.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /api/categories requests.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if categories == nil {
		categories = []model.Category{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": categories,
	})
}

// Create handles POST /api/categories requests.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.CanManageCatalog(r.Context(), middleware.PrincipalFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "Admin access required", h.logger)
		return
	}

	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	created, err := h.service.Create(r.Context(), &category)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"category": created,
	})
}

// Update handles PUT /api/categories/{id} requests.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.CanManageCatalog(r.Context(), middleware.PrincipalFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "Admin access required", h.logger)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID", h.logger)
		return
	}

	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	category.ID = id

	if err := h.service.Update(r.Context(), &category); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"category": category,
	})
}

// Delete handles DELETE /api/categories/{id} requests.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.authorizer.CanManageCatalog(r.Context(), middleware.PrincipalFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "Admin access required", h.logger)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Category deleted successfully",
	})
}
