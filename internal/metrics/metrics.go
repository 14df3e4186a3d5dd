package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	couponsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupons_created_total",
			Help: "Count of coupons issued.",
		},
	)

	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_validations_total",
			Help: "Validation attempts by outcome (success/already_used/expired/not_found/unauthenticated).",
		},
		[]string{"outcome"},
	)

	reversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_reversals_total",
			Help: "Reversal attempts by outcome (success/not_used/not_found/unauthenticated).",
		},
		[]string{"outcome"},
	)

	codeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_code_collisions_total",
			Help: "Code generation retries caused by collisions with existing codes.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			couponsCreated,
			validationsTotal,
			reversalsTotal,
			codeCollisions,
		)
	})
}

// CouponCreated records one issued coupon.
func CouponCreated() {
	couponsCreated.Inc()
}

// ValidationProcessed records one validation attempt with its outcome.
func ValidationProcessed(outcome string) {
	validationsTotal.WithLabelValues(outcome).Inc()
}

// ReversalProcessed records one reversal attempt with its outcome.
func ReversalProcessed(outcome string) {
	reversalsTotal.WithLabelValues(outcome).Inc()
}

// CodeCollision records one code-generation retry.
func CodeCollision() {
	codeCollisions.Inc()
}
