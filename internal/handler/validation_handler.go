package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"coupondesk/internal/model"
	"coupondesk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ValidationHandler handles the coupon validation workflow: eligibility
// checks, redemption and reversal.
type ValidationHandler struct {
	service service.ValidationService
	logger  zerolog.Logger
}

// NewValidationHandler creates a new validation handler.
func NewValidationHandler(service service.ValidationService, logger zerolog.Logger) *ValidationHandler {
	return &ValidationHandler{
		service: service,
		logger:  logger.With().Str("handler", "validation").Logger(),
	}
}

// ValidateRequest is the payload for redeeming a coupon. Code may be a bare
// coupon code or a scanned QR URL.
type ValidateRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// ReverseRequest is the payload for undoing a redemption.
type ReverseRequest struct {
	Password string `json:"password"`
	Reason   string `json:"reason"`
}

// Check handles GET /api/coupons/check?code=... requests. It is read-only:
// the coupon's state never changes, no matter the outcome.
func (h *ValidationHandler) Check(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "code is required", h.logger)
		return
	}

	result, err := h.service.Check(r.Context(), code, time.Now())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	switch {
	case !result.Exists:
		status = http.StatusNotFound
	case !result.CanValidate:
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, result)
}

// Validate handles POST /api/coupons/validate requests.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	actorEmail := r.Header.Get(staffEmailHeader)
	if actorEmail == "" {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing staff email", h.logger)
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "code is required", h.logger)
		return
	}

	result, err := h.service.Validate(r.Context(), req.Code, actorEmail, req.Password, time.Now())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Reverse handles POST /api/coupons/{id}/reverse requests.
func (h *ValidationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	actorEmail := r.Header.Get(staffEmailHeader)
	if actorEmail == "" {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing staff email", h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid coupon id", h.logger)
		return
	}

	var req ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Reverse(r.Context(), id, actorEmail, req.Password, req.Reason, time.Now())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
