package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so the server can run them on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS coupons (
			id UUID PRIMARY KEY,
			code VARCHAR(12) UNIQUE NOT NULL,
			type VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			customer_phone VARCHAR(32) NOT NULL,
			customer_email VARCHAR(255),
			customer_social_media VARCHAR(255),
			expires_at DATE,
			status VARCHAR(16) NOT NULL CHECK (status IN ('active', 'used', 'expired')),
			created_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_customer_phone ON coupons(customer_phone)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_status ON coupons(status)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_expires_at ON coupons(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_created_at ON coupons(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_customer ON coupons(first_name, last_name)`,
		`CREATE TABLE IF NOT EXISTS coupon_validations (
			id UUID PRIMARY KEY,
			coupon_id UUID NOT NULL REFERENCES coupons(id) ON DELETE CASCADE,
			validated_by UUID NOT NULL REFERENCES users(id),
			validated_at TIMESTAMPTZ NOT NULL,
			action VARCHAR(16) NOT NULL CHECK (action IN ('used', 'reversed')),
			notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coupon_validations_coupon_id ON coupon_validations(coupon_id)`,
		`CREATE INDEX IF NOT EXISTS idx_coupon_validations_validated_by ON coupon_validations(validated_by)`,
		`CREATE TABLE IF NOT EXISTS blacklisted_names (
			id UUID PRIMARY KEY,
			name VARCHAR(255) UNIQUE NOT NULL,
			reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	logger.Info().Msg("database schema migrated")

	return nil
}
