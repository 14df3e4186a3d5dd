package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeCouponNotFound      = "COUPON_NOT_FOUND"
	ErrCodeCouponAlreadyUsed   = "COUPON_ALREADY_USED"
	ErrCodeCouponExpired       = "COUPON_EXPIRED"
	ErrCodeCouponNotUsed       = "COUPON_NOT_USED"
	ErrCodeCouponIneligible    = "COUPON_INELIGIBLE"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeCustomerBlacklisted = "CUSTOMER_BLACKLISTED"
	ErrCodeReasonTooShort      = "REASON_TOO_SHORT"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a terminal business-rule violation. The code is the
// machine-checkable kind; the message is the human-readable reason shown to
// the caller.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. Messages stay in the program's original Indonesian
// wording because they are shown to store staff as-is.
var (
	ErrCouponNotFound      = NewDomainError(ErrCodeCouponNotFound, "Kupon tidak ditemukan")
	ErrCouponAlreadyUsed   = NewDomainError(ErrCodeCouponAlreadyUsed, "Kupon sudah digunakan")
	ErrCouponExpired       = NewDomainError(ErrCodeCouponExpired, "Kupon sudah kedaluwarsa")
	ErrCouponNotUsed       = NewDomainError(ErrCodeCouponNotUsed, "Hanya kupon yang sudah digunakan yang dapat dibatalkan")
	ErrCouponIneligible    = NewDomainError(ErrCodeCouponIneligible, "Kupon tidak dapat divalidasi")
	ErrUnauthenticated     = NewDomainError(ErrCodeUnauthenticated, "Password salah")
	ErrCustomerBlacklisted = NewDomainError(ErrCodeCustomerBlacklisted, "Nama pelanggan tidak diperbolehkan")
)
