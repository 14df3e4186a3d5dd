package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"coupondesk/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, error code
// and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("error", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto the HTTP response. Domain
// errors carry their code and localized message; anything else is an opaque
// internal error.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var dErr *model.DomainError
	if errors.As(err, &dErr) {
		writeError(w, statusForCode(dErr.Code), dErr.Code, dErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("internal error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// statusForCode maps domain error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeCouponNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeCouponAlreadyUsed,
		model.ErrCodeCouponExpired,
		model.ErrCodeCouponNotUsed,
		model.ErrCodeCouponIneligible,
		model.ErrCodeCustomerBlacklisted,
		model.ErrCodeReasonTooShort,
		model.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidJSON:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
