// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/lot-allocator/internal/adapters/db"
	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container with the embedded schema applied
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_lots",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_lots",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	err = db.RunMigrationsWithRetry(context.Background(), &db.MigrationConfig{
		DatabaseURL: dbConfig.URL(),
	}, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates an in-memory Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-lot-allocator",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_lots",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Allocation: config.AllocationConfig{
			Timezone:                "UTC",
			DefaultExpiryWindowDays: 30,
			ExpiringCacheTTL:        time.Minute,
			ReportPrefix:            "reports",
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
			RequestIDHeader:   "X-Request-ID",
			TenantHeader:      "X-Tenant-ID",
		},
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
	}
}

// Dec parses a decimal literal, panicking on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DatePtr returns a pointer to midnight UTC of the given day
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// CreateTestInventoryRecord creates a snapshot record with 100 units available
func CreateTestInventoryRecord(overrides ...func(*domain.InventoryRecord)) domain.InventoryRecord {
	rec := domain.InventoryRecord{
		TenantID:          uuid.New(),
		WarehouseID:       uuid.New(),
		ProductID:         uuid.New(),
		LotID:             uuid.New(),
		LotNo:             "LOT-" + uuid.NewString()[:8],
		AvailableQuantity: decimal.NewFromInt(100),
		ReservedQuantity:  decimal.Zero,
		LotCreatedAt:      time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}

	for _, override := range overrides {
		override(&rec)
	}

	return rec
}

// CreateTestLot creates an active lot expiring in 30 days from 2024-01-01
func CreateTestLot(overrides ...func(*domain.Lot)) domain.Lot {
	lot := domain.Lot{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		ProductID:  uuid.New(),
		LotNo:      "LOT-" + uuid.NewString()[:8],
		Status:     domain.LotStatusActive,
		CreatedAt:  time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		ExpiryDate: DatePtr(2024, time.January, 31),
	}

	for _, override := range overrides {
		override(&lot)
	}

	return lot
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"inventories", "lots"} {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedLot inserts a lot row
func SeedLot(t *testing.T, db *pgxpool.Pool, lot domain.Lot) {
	t.Helper()

	var expiry pgtype.Date
	if lot.ExpiryDate != nil {
		expiry = pgtype.Date{Time: *lot.ExpiryDate, Valid: true}
	}

	_, err := db.Exec(context.Background(), `
		INSERT INTO lots (id, tenant_id, product_id, lot_no, status, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		lot.ID, lot.TenantID, lot.ProductID, lot.LotNo, string(lot.Status), expiry, lot.CreatedAt,
	)
	require.NoError(t, err, "Failed to seed lot")
}

// SeedInventoryRecord inserts the lot and inventory rows behind a snapshot record
func SeedInventoryRecord(t *testing.T, db *pgxpool.Pool, rec domain.InventoryRecord) {
	t.Helper()

	SeedLot(t, db, domain.Lot{
		ID:         rec.LotID,
		TenantID:   rec.TenantID,
		ProductID:  rec.ProductID,
		LotNo:      rec.LotNo,
		Status:     domain.LotStatusActive,
		CreatedAt:  rec.LotCreatedAt,
		ExpiryDate: rec.ExpiryDate,
	})

	_, err := db.Exec(context.Background(), `
		INSERT INTO inventories (tenant_id, warehouse_id, product_id, lot_id, available_quantity, reserved_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.TenantID, rec.WarehouseID, rec.ProductID, rec.LotID, rec.AvailableQuantity, rec.ReservedQuantity,
	)
	require.NoError(t, err, "Failed to seed inventory")
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
