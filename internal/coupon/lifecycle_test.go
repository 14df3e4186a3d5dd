package coupon

import (
	"testing"
	"time"

	"coupondesk/internal/model"

	"github.com/stretchr/testify/assert"
)

func activeCoupon(expiresAt *time.Time) *model.Coupon {
	return &model.Coupon{
		Code:      "ABC-1234-XYZ",
		Status:    model.StatusActive,
		ExpiresAt: expiresAt,
	}
}

func TestCanValidate_ActiveWithoutExpiry(t *testing.T) {
	c := activeCoupon(nil)

	assert.True(t, CanValidate(c, time.Now()))
	assert.True(t, CanValidate(c, time.Now().AddDate(10, 0, 0)))
}

func TestCanValidate_NonActiveStatusAlwaysFails(t *testing.T) {
	future := time.Now().AddDate(0, 0, 7)

	for _, status := range []model.Status{model.StatusUsed, model.StatusExpired} {
		c := activeCoupon(&future)
		c.Status = status

		for _, now := range []time.Time{
			time.Now().AddDate(-1, 0, 0),
			time.Now(),
			time.Now().AddDate(1, 0, 0),
		} {
			assert.False(t, CanValidate(c, now), "status %s at %s", status, now)
		}
	}
}

func TestCanValidate_ExpiryIsDateOnly(t *testing.T) {
	expiry := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	c := activeCoupon(&expiry)

	// Late on the expiry day itself the coupon is still redeemable.
	sameDay := time.Date(2026, 8, 20, 23, 59, 0, 0, time.UTC)
	assert.True(t, CanValidate(c, sameDay))

	// Any moment of the following day it is not.
	nextDay := time.Date(2026, 8, 21, 0, 1, 0, 0, time.UTC)
	assert.False(t, CanValidate(c, nextDay))
}

func TestCanValidate_PastExpiryEvenWhenActive(t *testing.T) {
	past := time.Now().AddDate(0, 0, -1)
	c := activeCoupon(&past)

	assert.False(t, CanValidate(c, time.Now()))
}

func TestIneligibilityError(t *testing.T) {
	now := time.Now()
	future := now.AddDate(0, 0, 7)
	past := now.AddDate(0, 0, -7)

	tests := []struct {
		name     string
		coupon   *model.Coupon
		expected *model.DomainError
	}{
		{
			name: "used coupon",
			coupon: func() *model.Coupon {
				c := activeCoupon(&future)
				c.Status = model.StatusUsed
				return c
			}(),
			expected: model.ErrCouponAlreadyUsed,
		},
		{
			name: "administratively expired coupon",
			coupon: func() *model.Coupon {
				c := activeCoupon(nil)
				c.Status = model.StatusExpired
				return c
			}(),
			expected: model.ErrCouponExpired,
		},
		{
			name:     "active but past expiry date",
			coupon:   activeCoupon(&past),
			expected: model.ErrCouponExpired,
		},
		{
			name:     "eligible coupon",
			coupon:   activeCoupon(&future),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IneligibilityError(tt.coupon, now))
		})
	}
}

func TestCanReverse(t *testing.T) {
	c := activeCoupon(nil)
	assert.False(t, CanReverse(c))

	c.Status = model.StatusUsed
	assert.True(t, CanReverse(c))

	c.Status = model.StatusExpired
	assert.False(t, CanReverse(c))
}
