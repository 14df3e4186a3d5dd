package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coupondesk/internal/coupon"
	"coupondesk/internal/metrics"
	"coupondesk/internal/model"
	"coupondesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Metric outcome labels.
const (
	outcomeSuccess         = "success"
	outcomeNotFound        = "not_found"
	outcomeAlreadyUsed     = "already_used"
	outcomeExpired         = "expired"
	outcomeNotUsed         = "not_used"
	outcomeUnauthenticated = "unauthenticated"
)

// validationService implements ValidationService.
type validationService struct {
	couponRepo      repository.CouponRepository
	userRepo        repository.UserRepository
	minReasonLength int
	logger          zerolog.Logger
}

// NewValidationService creates a new validation workflow service.
func NewValidationService(
	couponRepo repository.CouponRepository,
	userRepo repository.UserRepository,
	minReasonLength int,
	logger zerolog.Logger,
) ValidationService {
	return &validationService{
		couponRepo:      couponRepo,
		userRepo:        userRepo,
		minReasonLength: minReasonLength,
		logger:          logger.With().Str("service", "validation").Logger(),
	}
}

// Check probes a coupon's eligibility without side effects. The input may be
// a bare code or a full URL ending in /coupon/<code>.
func (s *validationService) Check(ctx context.Context, code string, now time.Time) (*model.CheckResult, error) {
	code = ExtractCode(code)

	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	if c == nil {
		return &model.CheckResult{
			Exists:  false,
			Message: model.ErrCouponNotFound.Message,
		}, nil
	}

	result := &model.CheckResult{
		Exists:      true,
		CanValidate: coupon.CanValidate(c, now),
		Coupon:      summarize(c),
	}

	if !result.CanValidate {
		result.Message = coupon.IneligibilityError(c, now).Message
	}

	return result, nil
}

// Validate redeems a coupon. Credential check, eligibility check, the status
// transition and the audit entry behave as one unit: on success exactly one
// status mutation and one audit insert happened; on failure, nothing.
func (s *validationService) Validate(ctx context.Context, code, actorEmail, password string, now time.Time) (*model.ValidationResult, error) {
	code = ExtractCode(code)

	actor, err := s.verifyActor(ctx, actorEmail, password)
	if err != nil {
		metrics.ValidationProcessed(outcomeUnauthenticated)
		return nil, err
	}

	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		metrics.ValidationProcessed(outcomeNotFound)
		return nil, model.ErrCouponNotFound
	}

	if dErr := coupon.IneligibilityError(c, now); dErr != nil {
		metrics.ValidationProcessed(ineligibilityOutcome(dErr))
		s.logger.Info().
			Str("code", code).
			Str("reason", dErr.Code).
			Msg("coupon validation rejected")
		return nil, dErr
	}

	// Eligibility was checked on a snapshot; the conditional update closes
	// the race. A concurrent winner leaves us with no row to transition.
	updated, err := s.couponRepo.MarkUsed(ctx, c.ID, actor.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark coupon used: %w", err)
	}
	if updated == nil {
		metrics.ValidationProcessed(outcomeAlreadyUsed)
		return nil, model.ErrCouponAlreadyUsed
	}

	metrics.ValidationProcessed(outcomeSuccess)
	s.logger.Info().
		Str("coupon_id", updated.ID.String()).
		Str("code", updated.Code).
		Str("validated_by", actor.ID.String()).
		Msg("coupon validated")

	return &model.ValidationResult{
		Message: "Kupon berhasil divalidasi",
		Coupon:  summarize(updated),
	}, nil
}

// Reverse undoes a redemption. Only used coupons can be reversed; the expiry
// date is deliberately left untouched.
func (s *validationService) Reverse(ctx context.Context, id uuid.UUID, actorEmail, password, reason string, now time.Time) (*model.ValidationResult, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.minReasonLength {
		return nil, model.NewDomainError(
			model.ErrCodeReasonTooShort,
			fmt.Sprintf("Alasan pembatalan minimal %d karakter", s.minReasonLength),
		)
	}

	actor, err := s.verifyActor(ctx, actorEmail, password)
	if err != nil {
		metrics.ReversalProcessed(outcomeUnauthenticated)
		return nil, err
	}

	c, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		metrics.ReversalProcessed(outcomeNotFound)
		return nil, model.ErrCouponNotFound
	}

	if !coupon.CanReverse(c) {
		metrics.ReversalProcessed(outcomeNotUsed)
		return nil, model.ErrCouponNotUsed
	}

	updated, err := s.couponRepo.Reverse(ctx, c.ID, actor.ID, now, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse coupon: %w", err)
	}
	if updated == nil {
		metrics.ReversalProcessed(outcomeNotUsed)
		return nil, model.ErrCouponNotUsed
	}

	metrics.ReversalProcessed(outcomeSuccess)
	s.logger.Info().
		Str("coupon_id", updated.ID.String()).
		Str("code", updated.Code).
		Str("reversed_by", actor.ID.String()).
		Msg("coupon validation reversed")

	return &model.ValidationResult{
		Message: "Penggunaan kupon berhasil dibatalkan",
		Coupon:  summarize(updated),
	}, nil
}

// verifyActor resolves the staff member and re-checks the supplied password
// against the stored bcrypt hash. Unknown staff and wrong passwords are
// indistinguishable to the caller.
func (s *validationService) verifyActor(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staff member: %w", err)
	}
	if user == nil {
		s.logger.Warn().Str("email", email).Msg("unknown staff member")
		return nil, model.ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("staff password mismatch")
		return nil, model.ErrUnauthenticated
	}

	return user, nil
}

// ExtractCode accepts either a bare coupon code or a URL of the form
// .../coupon/<code> and returns the code.
func ExtractCode(input string) string {
	input = strings.TrimSpace(input)

	if idx := strings.LastIndex(input, "/coupon/"); idx >= 0 {
		input = input[idx+len("/coupon/"):]
		input = strings.TrimSuffix(input, "/")
	}

	return input
}

func ineligibilityOutcome(err *model.DomainError) string {
	switch err.Code {
	case model.ErrCodeCouponAlreadyUsed:
		return outcomeAlreadyUsed
	case model.ErrCodeCouponExpired:
		return outcomeExpired
	default:
		return "ineligible"
	}
}

func summarize(c *model.Coupon) *model.CouponSummary {
	return &model.CouponSummary{
		Code:         c.Code,
		Type:         c.Type,
		Description:  c.Description,
		CustomerName: c.CustomerName,
		Status:       c.Status,
		ExpiresAt:    c.ExpiresAt,
	}
}
