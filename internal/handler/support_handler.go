package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/SHUBHAMREWA/kanvei.in/internal/email"

	"github.com/rs/zerolog"
)

// SupportHandler handles contact-form HTTP requests.
type SupportHandler struct {
	mailer email.Mailer
	logger zerolog.Logger
}

// NewSupportHandler creates a new support handler.
func NewSupportHandler(mailer email.Mailer, logger zerolog.Logger) *SupportHandler {
	return &SupportHandler{
		mailer: mailer,
		logger: logger.With().Str("handler", "support").Logger(),
	}
}

// supportRequest is the payload for POST /api/support.
type supportRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Create handles POST /api/support requests.
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req supportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Name, email, subject and message are required", h.logger)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address", h.logger)
		return
	}

	if req.Category == "" {
		req.Category = "general"
	}

	if err := h.mailer.SendSupportRequest(req.Name, req.Email, req.Subject, req.Message, req.Category); err != nil {
		h.logger.Error().Err(err).Str("from", req.Email).Msg("failed to forward support request")
		writeError(w, http.StatusInternalServerError, "Failed to submit support request", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Support request submitted successfully",
	})
}
