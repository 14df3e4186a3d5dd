package repository

import (
	"context"
	"fmt"

	"coupondesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// blacklistRepository implements the BlacklistRepository interface using PostgreSQL.
type blacklistRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBlacklistRepository creates a new PostgreSQL-backed blacklist repository.
func NewBlacklistRepository(pool *pgxpool.Pool, logger zerolog.Logger) BlacklistRepository {
	return &blacklistRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "blacklist").Logger(),
	}
}

// Names returns all blacklisted names.
func (r *blacklistRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM blacklisted_names`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query blacklisted names")
		return nil, fmt.Errorf("failed to query blacklisted names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan blacklisted name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blacklisted names: %w", err)
	}

	return names, nil
}

// Upsert adds a name or updates the reason of an existing entry.
func (r *blacklistRepository) Upsert(ctx context.Context, name string, reason string) (bool, error) {
	query := `
		INSERT INTO blacklisted_names (id, name, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET reason = EXCLUDED.reason
		RETURNING (xmax = 0)
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query, uuid.New(), name, reason).Scan(&inserted)
	if err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to upsert blacklisted name")
		return false, fmt.Errorf("failed to upsert blacklisted name: %w", err)
	}

	return inserted, nil
}

// Remove deletes a name from the blacklist.
func (r *blacklistRepository) Remove(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blacklisted_names WHERE name = $1`, name)
	if err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to remove blacklisted name")
		return false, fmt.Errorf("failed to remove blacklisted name: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// List returns all blacklist entries ordered by name.
func (r *blacklistRepository) List(ctx context.Context) ([]model.BlacklistedName, error) {
	query := `
		SELECT id, name, reason, created_at
		FROM blacklisted_names
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list blacklisted names")
		return nil, fmt.Errorf("failed to list blacklisted names: %w", err)
	}
	defer rows.Close()

	var entries []model.BlacklistedName
	for rows.Next() {
		var e model.BlacklistedName
		if err := rows.Scan(&e.ID, &e.Name, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blacklist entries: %w", err)
	}

	return entries, nil
}
