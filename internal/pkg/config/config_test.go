package config_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/lot-allocator/internal/pkg/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := config.Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "lot-allocator", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, int32(25), cfg.Database.MaxConnections)
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 30, cfg.Allocation.DefaultExpiryWindowDays)
	assert.Equal(t, 5*time.Minute, cfg.Allocation.ExpiringCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "X-Tenant-ID", cfg.Security.TenantHeader)
	assert.Equal(t, map[string]int{"critical": 6, "default": 3, "low": 1}, cfg.Asynq.Queues)
	assert.Equal(t, "localhost:6379", cfg.Asynq.RedisAddr)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNECTIONS", "40")
	t.Setenv("ALLOCATION_TIMEZONE", "Europe/Berlin")
	t.Setenv("ALLOCATION_EXPIRY_WINDOW_DAYS", "14")
	t.Setenv("ALLOCATION_EXPIRING_CACHE_TTL", "90s")
	t.Setenv("ALLOCATION_REPORT_TENANTS", "0b7e7c9e-3c1a-4a53-9f3d-6a3b1f1e2d10, 6f1c2b8a-9d7e-4f61-8c5b-2e3d4a5b6c7d")
	t.Setenv("ASYNQ_QUEUES", "reports:2")

	cfg, err := config.Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, int32(40), cfg.Database.MaxConnections)
	assert.Equal(t, 14, cfg.Allocation.DefaultExpiryWindowDays)
	assert.Equal(t, 90*time.Second, cfg.Allocation.ExpiringCacheTTL)
	assert.Len(t, cfg.Allocation.ReportTenants, 2)
	assert.Equal(t, map[string]int{"reports": 2}, cfg.Asynq.Queues)

	loc, err := cfg.Allocation.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		errorContains string
	}{
		{
			name:          "invalid_timezone",
			env:           map[string]string{"ALLOCATION_TIMEZONE": "Mars/Olympus"},
			errorContains: "invalid allocation timezone",
		},
		{
			name:          "invalid_report_tenant",
			env:           map[string]string{"ALLOCATION_REPORT_TENANTS": "not-a-uuid"},
			errorContains: "invalid report tenant id",
		},
		{
			name:          "negative_expiry_window",
			env:           map[string]string{"ALLOCATION_EXPIRY_WINDOW_DAYS": "-1"},
			errorContains: "expiry window cannot be negative",
		},
		{
			name:          "connection_bounds",
			env:           map[string]string{"DB_MAX_CONNECTIONS": "2", "DB_MIN_CONNECTIONS": "5"},
			errorContains: "max_connections must be >= min_connections",
		},
		{
			name:          "production_requires_ssl",
			env:           map[string]string{"APP_ENV": "production", "ALLOWED_ORIGINS": "https://mes.example.com"},
			errorContains: "database SSL must be enabled in production",
		},
		{
			name: "production_rejects_wildcard_origin",
			env: map[string]string{
				"APP_ENV":     "production",
				"DB_SSL_MODE": "require",
			},
			errorContains: "wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(discardLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

type fakeSecretClient struct {
	secret string
	err    error
	calls  int
}

func (f *fakeSecretClient) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{
		Name:         in.SecretId,
		SecretString: aws.String(f.secret),
	}, nil
}

func TestAWSSecretsManager_GetSecrets(t *testing.T) {
	client := &fakeSecretClient{secret: `{"DB_PASSWORD":"s3cret","OTHER":"x"}`}
	sm := config.NewAWSSecretsManagerWithClient(client, "mes/prod", discardLogger())

	got, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DB_PASSWORD": "s3cret"}, got)

	_, err = sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls, "second read should be served from cache")
}

func TestAWSSecretsManager_Errors(t *testing.T) {
	t.Run("client_error", func(t *testing.T) {
		sm := config.NewAWSSecretsManagerWithClient(&fakeSecretClient{err: errors.New("access denied")}, "x", discardLogger())
		_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})

	t.Run("malformed_json", func(t *testing.T) {
		sm := config.NewAWSSecretsManagerWithClient(&fakeSecretClient{secret: "not json"}, "x", discardLogger())
		_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse secret JSON")
	})
}

func TestApplySecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("REDIS_PASSWORD", "")

	cfg := &config.Config{}
	cfg.Redis.Password = "keep-me"

	require.NoError(t, config.ApplySecrets(context.Background(), cfg, config.EnvSecretsManager{}))
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "keep-me", cfg.Redis.Password)
}
