// internal/pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig is returned when a required setting is empty or a placeholder
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Asynq      AsynqConfig
	AWS        AWSConfig
	Allocation AllocationConfig
	Security   SecurityConfig
	Server     ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string `required:"true"`
	Port               string `required:"true"`
	User               string `required:"true"`
	Password           string
	Name               string `required:"true"`
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	StatementCacheMode string
	EnableQueryLogging bool
	AutoMigrate        bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	TTL          time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	RetryMax        int
	ShutdownTimeout time.Duration
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string // For MinIO in development
	UsePathStyle    bool   // For MinIO compatibility
	SecretName      string // Secrets Manager secret holding DB_PASSWORD / REDIS_PASSWORD
}

// AllocationConfig holds lot allocation and expiry reporting settings
type AllocationConfig struct {
	Timezone                string
	DefaultExpiryWindowDays int
	ExpiringCacheTTL        time.Duration
	ReportSchedule          string   // cron spec for the expiring-lot report
	ReportTenants           []string // tenant ids the scheduler reports on
	ReportPrefix            string   // object key prefix for uploaded reports
	ReportLocalDir          string   // write reports to disk instead of S3 when set
	ReportURLTTL            time.Duration
}

// Location resolves the configured time zone
func (c AllocationConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid allocation timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	SecureHeaders     bool
	RequestIDHeader   string
	TenantHeader      string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string `required:"true"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
	RequestTimeout  time.Duration
}

// Load loads configuration from the environment, and from .env in development
func Load(logger *slog.Logger) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	env := v.GetString("APP_ENV")
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	cfg := fromViper(v, env)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.IsProduction() {
		if err := (&ProductionValidator{}).Validate(cfg); err != nil {
			return nil, fmt.Errorf("production configuration invalid: %w", err)
		}
	}

	return cfg, nil
}

func fromViper(v *viper.Viper, env string) *Config {
	return &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: env,
			Version:     v.GetString("APP_VERSION"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			LogFormat:   v.GetString("LOG_FORMAT"),
			Debug:       v.GetBool("APP_DEBUG") || env == "development",
		},
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSL_MODE"),
			MaxConnections:     v.GetInt32("DB_MAX_CONNECTIONS"),
			MinConnections:     v.GetInt32("DB_MIN_CONNECTIONS"),
			MaxConnLifetime:    v.GetDuration("DB_CONNECTION_LIFETIME"),
			MaxConnIdleTime:    v.GetDuration("DB_IDLE_TIME"),
			HealthCheckPeriod:  v.GetDuration("DB_HEALTH_CHECK_PERIOD"),
			ConnectTimeout:     v.GetDuration("DB_CONNECT_TIMEOUT"),
			StatementCacheMode: v.GetString("DB_STATEMENT_CACHE_MODE"),
			EnableQueryLogging: v.GetBool("DB_QUERY_LOGGING"),
			AutoMigrate:        v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetString("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			MaxRetries:   v.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			TTL:          v.GetDuration("REDIS_TTL"),
		},
		Asynq: AsynqConfig{
			RedisAddr:       fmt.Sprintf("%s:%s", v.GetString("REDIS_HOST"), v.GetString("REDIS_PORT")),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("ASYNQ_REDIS_DB"),
			Concurrency:     v.GetInt("ASYNQ_CONCURRENCY"),
			Queues:          parseQueues(v.GetString("ASYNQ_QUEUES")),
			StrictPriority:  v.GetBool("ASYNQ_STRICT_PRIORITY"),
			RetryMax:        v.GetInt("ASYNQ_RETRY_MAX"),
			ShutdownTimeout: v.GetDuration("ASYNQ_SHUTDOWN_TIMEOUT"),
		},
		AWS: AWSConfig{
			Region:          v.GetString("AWS_REGION"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			S3Bucket:        v.GetString("AWS_S3_BUCKET"),
			S3Endpoint:      v.GetString("AWS_S3_ENDPOINT"),
			UsePathStyle:    v.GetBool("AWS_S3_PATH_STYLE") || env == "development",
			SecretName:      v.GetString("AWS_SECRET_NAME"),
		},
		Allocation: AllocationConfig{
			Timezone:                v.GetString("ALLOCATION_TIMEZONE"),
			DefaultExpiryWindowDays: v.GetInt("ALLOCATION_EXPIRY_WINDOW_DAYS"),
			ExpiringCacheTTL:        v.GetDuration("ALLOCATION_EXPIRING_CACHE_TTL"),
			ReportSchedule:          v.GetString("ALLOCATION_REPORT_SCHEDULE"),
			ReportTenants:           splitList(v.GetString("ALLOCATION_REPORT_TENANTS")),
			ReportPrefix:            v.GetString("ALLOCATION_REPORT_PREFIX"),
			ReportLocalDir:          v.GetString("ALLOCATION_REPORT_LOCAL_DIR"),
			ReportURLTTL:            v.GetDuration("ALLOCATION_REPORT_URL_TTL"),
		},
		Security: SecurityConfig{
			RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
			RateLimitDuration: v.GetDuration("RATE_LIMIT_DURATION"),
			AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
			SecureHeaders:     v.GetBool("SECURE_HEADERS") || env == "production",
			RequestIDHeader:   v.GetString("REQUEST_ID_HEADER"),
			TenantHeader:      v.GetString("TENANT_HEADER"),
		},
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetString("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			MaxHeaderBytes:  v.GetInt("SERVER_MAX_HEADER_BYTES"),
			GracefulTimeout: v.GetDuration("SERVER_GRACEFUL_TIMEOUT"),
			RequestTimeout:  v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return (&BasicValidator{}).Validate(c)
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns host:port for the cache client
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "lot-allocator")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "mes")
	v.SetDefault("DB_PASSWORD", "mes_dev")
	v.SetDefault("DB_NAME", "mes_inventory")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNECTIONS", 25)
	v.SetDefault("DB_MIN_CONNECTIONS", 5)
	v.SetDefault("DB_CONNECTION_LIFETIME", time.Hour)
	v.SetDefault("DB_IDLE_TIME", 30*time.Minute)
	v.SetDefault("DB_HEALTH_CHECK_PERIOD", time.Minute)
	v.SetDefault("DB_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("DB_STATEMENT_CACHE_MODE", "describe")
	v.SetDefault("DB_QUERY_LOGGING", false)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_TTL", time.Hour)

	v.SetDefault("ASYNQ_REDIS_DB", 0)
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("ASYNQ_QUEUES", "critical:6,default:3,low:1")
	v.SetDefault("ASYNQ_RETRY_MAX", 3)
	v.SetDefault("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_S3_BUCKET", "mes-reports")

	v.SetDefault("ALLOCATION_TIMEZONE", "UTC")
	v.SetDefault("ALLOCATION_EXPIRY_WINDOW_DAYS", 30)
	v.SetDefault("ALLOCATION_EXPIRING_CACHE_TTL", 5*time.Minute)
	v.SetDefault("ALLOCATION_REPORT_SCHEDULE", "0 6 * * *")
	v.SetDefault("ALLOCATION_REPORT_PREFIX", "reports")
	v.SetDefault("ALLOCATION_REPORT_URL_TTL", 24*time.Hour)

	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", time.Minute)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_ID_HEADER", "X-Request-ID")
	v.SetDefault("TENANT_HEADER", "X-Tenant-ID")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER_MAX_HEADER_BYTES", 1<<20)
	v.SetDefault("SERVER_GRACEFUL_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", 10*time.Second)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	for _, pair := range strings.Split(queuesStr, ",") {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			name := strings.TrimSpace(parts[0])
			priority, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				queues[name] = priority
			}
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
