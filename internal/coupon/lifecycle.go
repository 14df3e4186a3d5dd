package coupon

import (
	"time"

	"coupondesk/internal/model"
)

// CanValidate reports whether the coupon may be transitioned to used at the
// given moment: it must be active and not past its expiry date. Expiry is a
// date-only comparison, so a coupon expiring today is still redeemable.
func CanValidate(c *model.Coupon, now time.Time) bool {
	if c.Status != model.StatusActive {
		return false
	}

	if expiredOn(c, now) {
		return false
	}

	return true
}

// IneligibilityError maps an ineligible coupon to the domain error a caller
// should see. Returns nil when the coupon is eligible.
func IneligibilityError(c *model.Coupon, now time.Time) *model.DomainError {
	if CanValidate(c, now) {
		return nil
	}

	switch {
	case c.Status == model.StatusUsed:
		return model.ErrCouponAlreadyUsed
	case c.Status == model.StatusExpired:
		return model.ErrCouponExpired
	case expiredOn(c, now):
		// Still marked active, but the expiry date lies in the past.
		// Expiry is evaluated lazily; the stored status is not updated.
		return model.ErrCouponExpired
	default:
		return model.ErrCouponIneligible
	}
}

// CanReverse reports whether a reversal is legal: only used coupons can be
// reversed. Reversal restores active status but never extends the expiry
// date, so a coupon reversed past its expiry is immediately ineligible again.
func CanReverse(c *model.Coupon) bool {
	return c.Status == model.StatusUsed
}

func expiredOn(c *model.Coupon, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return dateOf(c.ExpiresAt.UTC()).Before(dateOf(now.UTC()))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
