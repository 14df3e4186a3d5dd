package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff member who issues and validates coupons.
// PasswordHash is a bcrypt hash; the plain password is re-checked on every
// validate/reverse call.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// BlacklistedName is a first name barred from coupon issuance.
// Names are stored lowercased and trimmed.
type BlacklistedName struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Reason    *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
