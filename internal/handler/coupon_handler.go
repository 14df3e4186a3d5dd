package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coupondesk/internal/model"
	"coupondesk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// staffEmailHeader identifies the staff member acting on a request.
const staffEmailHeader = "X-Staff-Email"

// CouponHandler handles coupon CRUD requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// ListResponse wraps a coupon listing with paging metadata.
type ListResponse struct {
	Data   []model.Coupon `json:"data"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Create handles POST /api/coupons requests.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorEmail := r.Header.Get(staffEmailHeader)
	if actorEmail == "" {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing staff email", h.logger)
		return
	}

	var req model.CouponCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	created, err := h.service.Create(r.Context(), &req, actorEmail)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/coupons requests.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCouponFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, err.Error(), h.logger)
		return
	}

	coupons, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if coupons == nil {
		coupons = []model.Coupon{}
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Data:   coupons,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetByID handles GET /api/coupons/{id} requests.
func (h *CouponHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid coupon id", h.logger)
		return
	}

	detail, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if detail == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeCouponNotFound, model.ErrCouponNotFound.Message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// GetByCode handles GET /api/coupons/code/{code} requests. This backs the
// public coupon view reached from a QR scan.
func (h *CouponHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	detail, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if detail == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeCouponNotFound, model.ErrCouponNotFound.Message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Delete handles DELETE /api/coupons/{id} requests.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid coupon id", h.logger)
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if !deleted {
		writeError(w, http.StatusNotFound, model.ErrCodeCouponNotFound, model.ErrCouponNotFound.Message, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseCouponFilter builds a listing filter from query parameters.
func parseCouponFilter(r *http.Request) (model.CouponFilter, error) {
	q := r.URL.Query()

	filter := model.CouponFilter{
		Search:        strings.TrimSpace(q.Get("search")),
		CustomerName:  strings.TrimSpace(q.Get("customer_name")),
		FirstName:     strings.TrimSpace(q.Get("first_name")),
		LastName:      strings.TrimSpace(q.Get("last_name")),
		CustomerPhone: strings.TrimSpace(q.Get("customer_phone")),
		Type:          strings.TrimSpace(q.Get("type")),
	}

	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := model.Status(strings.TrimSpace(s))
			if !status.Valid() {
				return filter, &invalidParamError{param: "status", value: s}
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	dateParams := []struct {
		name string
		dst  **time.Time
	}{
		{"created_from", &filter.CreatedFrom},
		{"created_to", &filter.CreatedTo},
		{"expires_from", &filter.ExpiresFrom},
		{"expires_to", &filter.ExpiresTo},
	}
	for _, p := range dateParams {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, &invalidParamError{param: p.name, value: raw}
		}
		*p.dst = &t
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, &invalidParamError{param: "limit", value: raw}
		}
		filter.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, &invalidParamError{param: "offset", value: raw}
		}
		filter.Offset = offset
	}

	return filter, nil
}

type invalidParamError struct {
	param string
	value string
}

func (e *invalidParamError) Error() string {
	return "invalid query parameter " + e.param + ": " + e.value
}
