package repository

import (
	"context"
	"errors"
	"time"

	"coupondesk/internal/model"

	"github.com/google/uuid"
)

// ErrDuplicateCode is returned by Create when the generated code lost the
// race against a concurrent insert. Callers regenerate and retry.
var ErrDuplicateCode = errors.New("coupon code already exists")

// CouponRepository defines data access for coupons and their audit trail.
type CouponRepository interface {
	// Create inserts a new coupon. Returns ErrDuplicateCode if the code
	// collides with an existing row.
	Create(ctx context.Context, coupon *model.Coupon) error

	// GetByID retrieves a coupon by id. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)

	// GetByCode retrieves a coupon by its redemption code. Returns
	// (nil, nil) when absent.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// CodeExists reports whether a code is already taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// List returns coupons matching the filter, newest first, plus the
	// total match count ignoring pagination.
	List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error)

	// Delete removes a coupon and, via cascade, its validation history.
	// Returns false when no such coupon exists.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkUsed transitions an active coupon to used and appends the audit
	// entry, atomically. Returns (nil, nil) when the coupon was not in
	// active status anymore, i.e. this caller lost the race.
	MarkUsed(ctx context.Context, couponID, actorID uuid.UUID, now time.Time) (*model.Coupon, error)

	// Reverse transitions a used coupon back to active and appends the
	// audit entry with the reason, atomically. Returns (nil, nil) when the
	// coupon was not in used status.
	Reverse(ctx context.Context, couponID, actorID uuid.UUID, now time.Time, reason string) (*model.Coupon, error)

	// ListValidations returns the audit trail for a coupon, oldest first.
	ListValidations(ctx context.Context, couponID uuid.UUID) ([]model.CouponValidation, error)
}

// UserRepository defines data access for staff accounts.
type UserRepository interface {
	// GetByEmail retrieves a staff member by email. Returns (nil, nil)
	// when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Create inserts a new staff account.
	Create(ctx context.Context, user *model.User) error
}

// BlacklistRepository defines data access for blacklisted first names.
type BlacklistRepository interface {
	// Names returns all blacklisted names (stored lowercased).
	Names(ctx context.Context) ([]string, error)

	// Upsert adds a name or updates its reason. Returns true when the
	// name was newly added.
	Upsert(ctx context.Context, name string, reason string) (bool, error)

	// Remove deletes a name. Returns false when it was not present.
	Remove(ctx context.Context, name string) (bool, error)

	// List returns all entries ordered by name.
	List(ctx context.Context) ([]model.BlacklistedName, error)
}
