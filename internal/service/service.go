package service

import (
	"context"
	"time"

	"coupondesk/internal/model"

	"github.com/google/uuid"
)

// CouponService defines operations for coupon issuance and lookup.
type CouponService interface {
	// Create issues a new coupon on behalf of the staff member identified
	// by actorEmail and returns the created entity.
	Create(ctx context.Context, req *model.CouponCreateRequest, actorEmail string) (*model.Coupon, error)

	// GetByID retrieves a coupon with its validation history.
	// Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CouponDetail, error)

	// GetByCode retrieves a coupon with its validation history by code.
	// Returns (nil, nil) when absent.
	GetByCode(ctx context.Context, code string) (*model.CouponDetail, error)

	// List returns coupons matching the filter plus the total match count.
	List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error)

	// Delete destroys a coupon and its audit trail. Returns false when no
	// such coupon exists.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ValidationService is the coupon validation workflow: eligibility probe,
// redemption and reversal.
type ValidationService interface {
	// Check is the read-only eligibility probe. It never mutates state.
	Check(ctx context.Context, code string, now time.Time) (*model.CheckResult, error)

	// Validate redeems a coupon: credential check, eligibility check,
	// status transition and audit entry as one unit.
	Validate(ctx context.Context, code, actorEmail, password string, now time.Time) (*model.ValidationResult, error)

	// Reverse undoes a redemption, restoring active status. The reason is
	// mandatory and must meet the configured minimum length.
	Reverse(ctx context.Context, id uuid.UUID, actorEmail, password, reason string, now time.Time) (*model.ValidationResult, error)
}
