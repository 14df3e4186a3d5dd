package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coupondesk/internal/blacklist"
	"coupondesk/internal/coupon"
	"coupondesk/internal/metrics"
	"coupondesk/internal/model"
	"coupondesk/internal/phone"
	"coupondesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// createMaxAttempts bounds insert retries on code collisions. The generator
// already pre-checks uniqueness, so more than one retry is exceptional.
const createMaxAttempts = 5

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	userRepo   repository.UserRepository
	generator  *coupon.Generator
	blacklist  *blacklist.Checker
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	userRepo repository.UserRepository,
	generator *coupon.Generator,
	blacklistChecker *blacklist.Checker,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		userRepo:   userRepo,
		generator:  generator,
		blacklist:  blacklistChecker,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Create issues a new coupon and returns the created entity directly.
func (s *couponService) Create(ctx context.Context, req *model.CouponCreateRequest, actorEmail string) (*model.Coupon, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByEmail(ctx, actorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staff member: %w", err)
	}
	if actor == nil {
		s.logger.Warn().Str("email", actorEmail).Msg("unknown staff member on coupon creation")
		return nil, model.ErrUnauthenticated
	}

	blocked, err := s.blacklist.IsBlacklisted(ctx, req.FirstName)
	if err != nil {
		return nil, fmt.Errorf("failed to screen customer name: %w", err)
	}
	if blocked {
		s.logger.Warn().Str("first_name", req.FirstName).Msg("blacklisted customer name rejected")
		return nil, model.ErrCustomerBlacklisted
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	now := time.Now()

	entity := &model.Coupon{
		ID:                  uuid.New(),
		Type:                req.Type,
		Description:         req.Description,
		CustomerName:        strings.TrimSpace(firstName + " " + lastName),
		FirstName:           &firstName,
		LastName:            &lastName,
		CustomerPhone:       phone.Normalize(req.CustomerPhone),
		CustomerEmail:       req.CustomerEmail,
		CustomerSocialMedia: req.CustomerSocialMedia,
		ExpiresAt:           expiresAt,
		Status:              model.StatusActive,
		CreatedBy:           actor.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// The generator pre-checks uniqueness, but the check and the insert are
	// separate steps; the unique constraint is the authority and collisions
	// at insert time are retried with a fresh code.
	for attempt := 1; attempt <= createMaxAttempts; attempt++ {
		code, err := s.generator.Generate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate coupon code: %w", err)
		}
		entity.Code = code

		err = s.couponRepo.Create(ctx, entity)
		if err == nil {
			metrics.CouponCreated()
			s.logger.Info().
				Str("coupon_id", entity.ID.String()).
				Str("code", entity.Code).
				Str("created_by", actor.ID.String()).
				Msg("coupon created")
			return entity, nil
		}

		if err == repository.ErrDuplicateCode {
			metrics.CodeCollision()
			s.logger.Warn().
				Str("code", code).
				Int("attempt", attempt).
				Msg("code collided at insert time, regenerating")
			continue
		}

		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil, fmt.Errorf("failed to create coupon after %d attempts", createMaxAttempts)
}

// GetByID retrieves a coupon and its validation history.
func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*model.CouponDetail, error) {
	c, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	return s.detail(ctx, c)
}

// GetByCode retrieves a coupon and its validation history by code.
func (s *couponService) GetByCode(ctx context.Context, code string) (*model.CouponDetail, error) {
	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	return s.detail(ctx, c)
}

func (s *couponService) detail(ctx context.Context, c *model.Coupon) (*model.CouponDetail, error) {
	validations, err := s.couponRepo.ListValidations(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get validation history: %w", err)
	}

	return &model.CouponDetail{Coupon: *c, Validations: validations}, nil
}

// List returns coupons matching the filter.
func (s *couponService) List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Phone search terms arrive in arbitrary local formats.
	if filter.CustomerPhone != "" {
		filter.CustomerPhone = phone.Normalize(filter.CustomerPhone)
	}

	coupons, total, err := s.couponRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}

	return coupons, total, nil
}

// Delete destroys a coupon and, via cascade, its audit trail.
func (s *couponService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.couponRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete coupon: %w", err)
	}

	if deleted {
		s.logger.Info().Str("coupon_id", id.String()).Msg("coupon deleted")
	}

	return deleted, nil
}

func (s *couponService) validateCreateRequest(req *model.CouponCreateRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "request is required")
	}

	required := map[string]string{
		"type":          req.Type,
		"description":   req.Description,
		"firstName":     req.FirstName,
		"lastName":      req.LastName,
		"customerPhone": req.CustomerPhone,
	}
	for _, field := range []string{"type", "description", "firstName", "lastName", "customerPhone"} {
		if strings.TrimSpace(required[field]) == "" {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("%s is required", field))
		}
	}

	return nil
}

// parseExpiry parses an optional YYYY-MM-DD expiry date, which must lie
// after today.
func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "expiresAt must be a YYYY-MM-DD date")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !t.After(today) {
		return nil, model.NewDomainError(model.ErrCodeValidation, "expiresAt must be after today")
	}

	return &t, nil
}
