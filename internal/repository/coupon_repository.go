package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coupondesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const couponColumns = `id, code, type, description, customer_name, first_name, last_name,
	customer_phone, customer_email, customer_social_media, expires_at, status,
	created_by, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// Create inserts a new coupon row.
func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Type,
		coupon.Description,
		coupon.CustomerName,
		coupon.FirstName,
		coupon.LastName,
		coupon.CustomerPhone,
		coupon.CustomerEmail,
		coupon.CustomerSocialMedia,
		coupon.ExpiresAt,
		coupon.Status,
		coupon.CreatedBy,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "code") {
			r.logger.Debug().
				Str("code", coupon.Code).
				Msg("code collision on insert")
			return ErrDuplicateCode
		}
		r.logger.Error().
			Err(err).
			Str("coupon_id", coupon.ID.String()).
			Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().
		Str("coupon_id", coupon.ID.String()).
		Str("code", coupon.Code).
		Msg("coupon created successfully")

	return nil
}

// GetByID retrieves a coupon by its id.
func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByCode retrieves a coupon by its redemption code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	return r.getOne(ctx, query, code)
}

func (r *couponRepository) getOne(ctx context.Context, query string, arg any) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return coupon, nil
}

// CodeExists reports whether a coupon code is already taken.
func (r *couponRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM coupons WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to check code existence")
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// List returns coupons matching the filter plus the total match count.
func (r *couponRepository) List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error) {
	where, args := buildCouponFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM coupons` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count coupons")
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := `SELECT ` + couponColumns + ` FROM coupons` + where +
		` ORDER BY created_at DESC` +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query coupons")
		return nil, 0, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return nil, 0, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *coupon)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon rows")
		return nil, 0, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, total, nil
}

// Delete removes a coupon; validation rows go with it via cascade.
func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to delete coupon")
		return false, fmt.Errorf("failed to delete coupon: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkUsed flips an active coupon to used and records the audit entry in one
// transaction. The conditional UPDATE ensures that of two concurrent calls
// exactly one sees a row; the loser gets (nil, nil).
func (r *couponRepository) MarkUsed(ctx context.Context, couponID, actorID uuid.UUID, now time.Time) (*model.Coupon, error) {
	return r.transition(ctx, transition{
		couponID:   couponID,
		actorID:    actorID,
		now:        now,
		fromStatus: model.StatusActive,
		toStatus:   model.StatusUsed,
		action:     model.ActionUsed,
		notes:      nil,
	})
}

// Reverse flips a used coupon back to active and records the reversal reason.
func (r *couponRepository) Reverse(ctx context.Context, couponID, actorID uuid.UUID, now time.Time, reason string) (*model.Coupon, error) {
	return r.transition(ctx, transition{
		couponID:   couponID,
		actorID:    actorID,
		now:        now,
		fromStatus: model.StatusUsed,
		toStatus:   model.StatusActive,
		action:     model.ActionReversed,
		notes:      &reason,
	})
}

type transition struct {
	couponID   uuid.UUID
	actorID    uuid.UUID
	now        time.Time
	fromStatus model.Status
	toStatus   model.Status
	action     string
	notes      *string
}

func (r *couponRepository) transition(ctx context.Context, t transition) (coupon *model.Coupon, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	updateQuery := `
		UPDATE coupons
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + couponColumns

	coupon, err = scanCoupon(tx.QueryRow(ctx, updateQuery, t.toStatus, t.now, t.couponID, t.fromStatus))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status changed under us; the caller maps this to the
			// business-rule error for the prior state.
			err = nil
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("coupon_id", t.couponID.String()).
			Str("action", t.action).
			Msg("failed to update coupon status")
		return nil, fmt.Errorf("failed to update coupon status: %w", err)
	}

	insertQuery := `
		INSERT INTO coupon_validations (id, coupon_id, validated_by, validated_at, action, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.Exec(ctx, insertQuery, uuid.New(), t.couponID, t.actorID, t.now, t.action, t.notes)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("coupon_id", t.couponID.String()).
			Str("action", t.action).
			Msg("failed to insert validation record")
		return nil, fmt.Errorf("failed to insert validation record: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("coupon_id", t.couponID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().
		Str("coupon_id", t.couponID.String()).
		Str("action", t.action).
		Str("status", string(t.toStatus)).
		Msg("coupon status transitioned")

	return coupon, nil
}

// ListValidations returns a coupon's audit trail, oldest first.
func (r *couponRepository) ListValidations(ctx context.Context, couponID uuid.UUID) ([]model.CouponValidation, error) {
	query := `
		SELECT id, coupon_id, validated_by, validated_at, action, notes
		FROM coupon_validations
		WHERE coupon_id = $1
		ORDER BY validated_at, id
	`

	rows, err := r.pool.Query(ctx, query, couponID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("coupon_id", couponID.String()).
			Msg("failed to query validations")
		return nil, fmt.Errorf("failed to query validations: %w", err)
	}
	defer rows.Close()

	var validations []model.CouponValidation
	for rows.Next() {
		var v model.CouponValidation
		err := rows.Scan(&v.ID, &v.CouponID, &v.ValidatedBy, &v.ValidatedAt, &v.Action, &v.Notes)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan validation row")
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		validations = append(validations, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating validation rows")
		return nil, fmt.Errorf("error iterating validations: %w", err)
	}

	return validations, nil
}

// scanCoupon scans one coupon row in couponColumns order.
func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Description,
		&c.CustomerName,
		&c.FirstName,
		&c.LastName,
		&c.CustomerPhone,
		&c.CustomerEmail,
		&c.CustomerSocialMedia,
		&c.ExpiresAt,
		&c.Status,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// buildCouponFilter translates a CouponFilter into a WHERE clause and args.
func buildCouponFilter(filter model.CouponFilter) (string, []any) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			placeholders[i] = arg(s)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(code ILIKE %s OR customer_name ILIKE %s OR first_name ILIKE %s OR last_name ILIKE %s OR customer_phone ILIKE %s OR type ILIKE %s)",
			p, p, p, p, p, p))
	}

	like := map[string]string{
		"customer_name":  filter.CustomerName,
		"first_name":     filter.FirstName,
		"last_name":      filter.LastName,
		"customer_phone": filter.CustomerPhone,
		"type":           filter.Type,
	}
	for _, column := range []string{"customer_name", "first_name", "last_name", "customer_phone", "type"} {
		if v := like[column]; v != "" {
			conditions = append(conditions, fmt.Sprintf("%s ILIKE %s", column, arg("%"+v+"%")))
		}
	}

	if filter.CreatedFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= %s", arg(*filter.CreatedFrom)))
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < %s", arg(filter.CreatedTo.AddDate(0, 0, 1))))
	}
	if filter.ExpiresFrom != nil {
		conditions = append(conditions, fmt.Sprintf("expires_at >= %s", arg(*filter.ExpiresFrom)))
	}
	if filter.ExpiresTo != nil {
		conditions = append(conditions, fmt.Sprintf("expires_at <= %s", arg(*filter.ExpiresTo)))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}
