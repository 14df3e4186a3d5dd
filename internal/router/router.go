package router

import (
	"net/http"

	"coupondesk/internal/handler"
	"coupondesk/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	couponHandler *handler.CouponHandler,
	validationHandler *handler.ValidationHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check and metrics endpoints (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.APIKeyAuth(apiKey, logger))

		api.Route("/coupons", func(coupons chi.Router) {
			coupons.Get("/", couponHandler.List)
			coupons.Post("/", couponHandler.Create)

			// Static segments take priority over the {id} wildcard.
			coupons.Get("/check", validationHandler.Check)
			coupons.Post("/validate", validationHandler.Validate)
			coupons.Get("/code/{code}", couponHandler.GetByCode)

			coupons.Get("/{id}", couponHandler.GetByID)
			coupons.Delete("/{id}", couponHandler.Delete)
			coupons.Post("/{id}/reverse", validationHandler.Reverse)
		})
	})

	return r
}
