package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes a {success:false, error} envelope with the given status.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Success: false, Error: message})
}

// writeServiceError maps a service error onto an HTTP status and writes the
// error envelope. Error messages pass through verbatim.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeError(w, http.StatusBadRequest, stockErr.Error(), logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case model.ErrCodeNotFound:
			status = http.StatusNotFound
		case model.ErrCodeForbidden:
			status = http.StatusForbidden
		case model.ErrCodeUnauthorised:
			status = http.StatusUnauthorized
		}
		writeError(w, status, domainErr.Message, logger)
		return
	}

	writeError(w, http.StatusInternalServerError, err.Error(), logger)
}
