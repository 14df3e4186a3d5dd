// Package blacklist screens customer first names against a small table of
// barred names. Lookups go through an in-process cache that the write path
// invalidates explicitly, so a freshly added name takes effect immediately.
package blacklist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"coupondesk/internal/model"
	"coupondesk/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultTTL bounds how long the cached name set is served before it is
// reloaded even without an observed write.
const DefaultTTL = time.Hour

// Checker answers "is this first name barred?" and owns the cache and its
// invalidation hooks. All writes to the blacklist must go through Add and
// Remove so the cache never serves stale entries past a local write.
type Checker struct {
	repo   repository.BlacklistRepository
	logger zerolog.Logger
	ttl    time.Duration

	mu       sync.RWMutex
	names    map[string]struct{}
	loadedAt time.Time
}

// NewChecker creates a checker over the given repository.
func NewChecker(repo repository.BlacklistRepository, ttl time.Duration, logger zerolog.Logger) *Checker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Checker{
		repo:   repo,
		logger: logger.With().Str("component", "blacklist").Logger(),
		ttl:    ttl,
	}
}

// NormalizeName canonicalizes a name for matching: trimmed and lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsBlacklisted reports whether the name is barred (exact match,
// case-insensitive).
func (c *Checker) IsBlacklisted(ctx context.Context, name string) (bool, error) {
	names, err := c.cachedNames(ctx)
	if err != nil {
		return false, err
	}

	_, found := names[NormalizeName(name)]
	return found, nil
}

// Add puts a name on the blacklist (or updates its reason) and invalidates
// the cache. Returns true when the name was newly added.
func (c *Checker) Add(ctx context.Context, name, reason string) (bool, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return false, fmt.Errorf("name is required")
	}

	created, err := c.repo.Upsert(ctx, normalized, reason)
	if err != nil {
		return false, err
	}

	c.Invalidate()

	c.logger.Info().
		Str("name", normalized).
		Bool("created", created).
		Msg("blacklist entry upserted")

	return created, nil
}

// Remove takes a name off the blacklist and invalidates the cache. Returns
// false when the name was not present.
func (c *Checker) Remove(ctx context.Context, name string) (bool, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return false, fmt.Errorf("name is required")
	}

	removed, err := c.repo.Remove(ctx, normalized)
	if err != nil {
		return false, err
	}

	c.Invalidate()

	if removed {
		c.logger.Info().Str("name", normalized).Msg("blacklist entry removed")
	}

	return removed, nil
}

// Entries returns all blacklist entries ordered by name, bypassing the cache.
func (c *Checker) Entries(ctx context.Context) ([]model.BlacklistedName, error) {
	return c.repo.List(ctx)
}

// Invalidate drops the cached name set. The next lookup reloads it.
func (c *Checker) Invalidate() {
	c.mu.Lock()
	c.names = nil
	c.mu.Unlock()
}

func (c *Checker) cachedNames(ctx context.Context) (map[string]struct{}, error) {
	c.mu.RLock()
	if c.names != nil && time.Since(c.loadedAt) < c.ttl {
		names := c.names
		c.mu.RUnlock()
		return names, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have reloaded while we waited for the lock.
	if c.names != nil && time.Since(c.loadedAt) < c.ttl {
		return c.names, nil
	}

	raw, err := c.repo.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load blacklisted names: %w", err)
	}

	names := make(map[string]struct{}, len(raw))
	for _, n := range raw {
		names[NormalizeName(n)] = struct{}{}
	}

	c.names = names
	c.loadedAt = time.Now()

	c.logger.Debug().Int("count", len(names)).Msg("blacklist cache reloaded")

	return names, nil
}
