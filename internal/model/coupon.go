package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of coupon lifecycle states.
type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusUsed, StatusExpired:
		return true
	}
	return false
}

// Audit actions recorded per lifecycle transition.
const (
	ActionUsed     = "used"
	ActionReversed = "reversed"
)

// Coupon represents a redeemable customer coupon.
//
// Status is mutated only through the validation workflow; code is immutable
// after creation and unique across the whole population.
type Coupon struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	Code                string     `json:"code" db:"code"`
	Type                string     `json:"type" db:"type"`
	Description         string     `json:"description" db:"description"`
	CustomerName        string     `json:"customerName" db:"customer_name"`
	FirstName           *string    `json:"firstName,omitempty" db:"first_name"`
	LastName            *string    `json:"lastName,omitempty" db:"last_name"`
	CustomerPhone       string     `json:"customerPhone" db:"customer_phone"`
	CustomerEmail       *string    `json:"customerEmail,omitempty" db:"customer_email"`
	CustomerSocialMedia *string    `json:"customerSocialMedia,omitempty" db:"customer_social_media"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	Status              Status     `json:"status" db:"status"`
	CreatedBy           uuid.UUID  `json:"createdBy" db:"created_by"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// CouponValidation is one immutable audit entry in a coupon's validation
// history. A "used" entry carries no notes; a "reversed" entry carries the
// reversal reason.
type CouponValidation struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CouponID    uuid.UUID `json:"couponId" db:"coupon_id"`
	ValidatedBy uuid.UUID `json:"validatedBy" db:"validated_by"`
	ValidatedAt time.Time `json:"validatedAt" db:"validated_at"`
	Action      string    `json:"action" db:"action"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
}

// CouponCreateRequest is the payload for creating a coupon.
type CouponCreateRequest struct {
	Type                string  `json:"type"`
	Description         string  `json:"description"`
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	CustomerPhone       string  `json:"customerPhone"`
	CustomerEmail       *string `json:"customerEmail,omitempty"`
	CustomerSocialMedia *string `json:"customerSocialMedia,omitempty"`
	ExpiresAt           *string `json:"expiresAt,omitempty"` // YYYY-MM-DD
}

// CouponFilter narrows coupon listings. Zero values mean "no filter".
type CouponFilter struct {
	Statuses      []Status
	Search        string // matches code, customer name, phone and type
	CustomerName  string
	FirstName     string
	LastName      string
	CustomerPhone string // canonical form
	Type          string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ExpiresFrom   *time.Time
	ExpiresTo     *time.Time
	Limit         int
	Offset        int
}

// CouponDetail bundles a coupon with its validation history.
type CouponDetail struct {
	Coupon      Coupon             `json:"coupon"`
	Validations []CouponValidation `json:"validations"`
}

// CheckResult is the read-only eligibility probe result.
type CheckResult struct {
	Exists      bool           `json:"exists"`
	CanValidate bool           `json:"canValidate"`
	Message     string         `json:"message,omitempty"`
	Coupon      *CouponSummary `json:"coupon,omitempty"`
}

// CouponSummary is the trimmed coupon view returned by check.
type CouponSummary struct {
	Code         string     `json:"code"`
	Type         string     `json:"type"`
	Description  string     `json:"description"`
	CustomerName string     `json:"customerName"`
	Status       Status     `json:"status"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// ValidationResult is the outcome of a validate or reverse call.
type ValidationResult struct {
	Message string         `json:"message"`
	Coupon  *CouponSummary `json:"coupon,omitempty"`
}
