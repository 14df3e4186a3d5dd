package blacklist

import (
	"context"
	"testing"
	"time"

	"coupondesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBlacklistRepository is a mock implementation of BlacklistRepository.
type MockBlacklistRepository struct {
	mock.Mock
}

func (m *MockBlacklistRepository) Names(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBlacklistRepository) Upsert(ctx context.Context, name string, reason string) (bool, error) {
	args := m.Called(ctx, name, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistRepository) Remove(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistRepository) List(ctx context.Context) ([]model.BlacklistedName, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BlacklistedName), args.Error(1)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "budi", NormalizeName("  Budi "))
	assert.Equal(t, "siti", NormalizeName("SITI"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestChecker_IsBlacklisted(t *testing.T) {
	repo := new(MockBlacklistRepository)
	repo.On("Names", mock.Anything).Return([]string{"budi", "agus"}, nil).Once()

	checker := NewChecker(repo, time.Hour, zerolog.Nop())
	ctx := context.Background()

	blocked, err := checker.IsBlacklisted(ctx, "Budi")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = checker.IsBlacklisted(ctx, "  AGUS ")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = checker.IsBlacklisted(ctx, "Siti")
	require.NoError(t, err)
	assert.False(t, blocked)

	// All three lookups were served from one load.
	repo.AssertExpectations(t)
}

func TestChecker_AddInvalidatesCache(t *testing.T) {
	repo := new(MockBlacklistRepository)
	repo.On("Names", mock.Anything).Return([]string{}, nil).Once()
	repo.On("Upsert", mock.Anything, "budi", "fraud").Return(true, nil).Once()
	repo.On("Names", mock.Anything).Return([]string{"budi"}, nil).Once()

	checker := NewChecker(repo, time.Hour, zerolog.Nop())
	ctx := context.Background()

	blocked, err := checker.IsBlacklisted(ctx, "Budi")
	require.NoError(t, err)
	assert.False(t, blocked)

	created, err := checker.Add(ctx, "Budi", "fraud")
	require.NoError(t, err)
	assert.True(t, created)

	// Write path invalidated the cache, so the new name is visible at once.
	blocked, err = checker.IsBlacklisted(ctx, "Budi")
	require.NoError(t, err)
	assert.True(t, blocked)

	repo.AssertExpectations(t)
}

func TestChecker_RemoveInvalidatesCache(t *testing.T) {
	repo := new(MockBlacklistRepository)
	repo.On("Names", mock.Anything).Return([]string{"budi"}, nil).Once()
	repo.On("Remove", mock.Anything, "budi").Return(true, nil).Once()
	repo.On("Names", mock.Anything).Return([]string{}, nil).Once()

	checker := NewChecker(repo, time.Hour, zerolog.Nop())
	ctx := context.Background()

	blocked, err := checker.IsBlacklisted(ctx, "budi")
	require.NoError(t, err)
	assert.True(t, blocked)

	removed, err := checker.Remove(ctx, "budi")
	require.NoError(t, err)
	assert.True(t, removed)

	blocked, err = checker.IsBlacklisted(ctx, "budi")
	require.NoError(t, err)
	assert.False(t, blocked)

	repo.AssertExpectations(t)
}

func TestChecker_AddRequiresName(t *testing.T) {
	checker := NewChecker(new(MockBlacklistRepository), time.Hour, zerolog.Nop())

	_, err := checker.Add(context.Background(), "   ", "reason")
	require.Error(t, err)
}
