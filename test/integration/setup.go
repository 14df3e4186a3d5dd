package integration

import (
	"context"
	"testing"
	"time"

	"coupondesk/internal/database"
	"coupondesk/internal/model"
	"coupondesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// TestStaffPassword is the plain-text password of all seeded staff members.
const TestStaffPassword = "rahasia-kasir"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the
// schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all rows between test cases.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{"coupon_validations", "coupons", "blacklisted_names", "users"}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clean up table %s: %v", table, err)
		}
	}
}

// SeedStaff inserts a staff member with TestStaffPassword and returns it.
func SeedStaff(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestStaffPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash staff password: %v", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         "Kasir Integrasi",
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	repo := repository.NewUserRepository(pool, zerolog.Nop())
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed staff member: %v", err)
	}

	return user
}
