// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/lot-allocator/internal/adapters/db"
	redis_a "github.com/ammerola/lot-allocator/internal/adapters/redis_adapter"
	"github.com/ammerola/lot-allocator/internal/adapters/storage"
	"github.com/ammerola/lot-allocator/internal/core/ports"
	"github.com/ammerola/lot-allocator/internal/core/services"
	"github.com/ammerola/lot-allocator/internal/pkg/config"
	"github.com/ammerola/lot-allocator/internal/pkg/logger"
	"github.com/ammerola/lot-allocator/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.NewLogger(&logger.LogConfig{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Output:      "stdout",
		ServiceName: cfg.App.Name + "-worker",
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(slogger)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()

	if cfg.AWS.SecretName != "" {
		sm, err := config.NewAWSSecretsManager(ctx, cfg.AWS.Region, cfg.AWS.SecretName, slogger)
		if err == nil {
			err = config.ApplySecrets(ctx, cfg, sm)
		}
		if err != nil {
			slogger.Error("failed to load secrets", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	location, err := cfg.Allocation.Location()
	if err != nil {
		slogger.Error("invalid allocation timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	store, err := initReportStore(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize report storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lots := redis_a.NewCachedLotMetadata(
		db.NewLotRepository(database, slogger),
		redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger),
		cfg.Allocation.ExpiringCacheTTL,
		slogger,
	)
	allocation := services.NewAllocationService(
		db.NewInventorySnapshotRepository(database, slogger),
		lots,
		slogger,
		services.WithLocation(location),
	)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()

	reportProcessor := workers.NewReportProcessor(allocation, store, workers.ReportProcessorConfig{
		Prefix:   cfg.Allocation.ReportPrefix,
		URLTTL:   cfg.Allocation.ReportURLTTL,
		Location: location,
	}, slogger)
	mux.HandleFunc(workers.TypeExpiringLotsReport, reportProcessor.ProcessExpiringReport)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: location,
		Logger:   newAsynqLogger(slogger),
	})
	entries, err := workers.RegisterReportSchedule(
		scheduler,
		cfg.Allocation.ReportSchedule,
		cfg.Allocation.ReportTenants,
		cfg.Allocation.DefaultExpiryWindowDays,
		slogger,
	)
	if err != nil {
		slogger.Error("failed to register report schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	if len(entries) > 0 {
		go func() {
			if err := scheduler.Run(); err != nil {
				slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
				shutdown <- syscall.SIGTERM
			}
		}()
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.Int("scheduled_reports", len(entries)))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	if len(entries) > 0 {
		scheduler.Shutdown()
	}
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

// initReportStore picks local disk when a report directory is configured,
// S3 otherwise
func initReportStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ReportStore, error) {
	if cfg.Allocation.ReportLocalDir != "" {
		logger.Info("storing reports on local disk", slog.String("path", cfg.Allocation.ReportLocalDir))
		return storage.NewLocalStorage(cfg.Allocation.ReportLocalDir, logger), nil
	}

	s3, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, err
	}
	return s3, nil
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, _ error, _ *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
