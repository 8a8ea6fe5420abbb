// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ammerola/lot-allocator/internal/adapters/db"
	redis_a "github.com/ammerola/lot-allocator/internal/adapters/redis_adapter"
	"github.com/ammerola/lot-allocator/internal/adapters/spreadsheet"
	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/pkg/config"
	"github.com/ammerola/lot-allocator/internal/pkg/logger"
)

func main() {
	var (
		file       = flag.String("file", "./receipts.xlsx", "Goods-receipt workbook with a \"Lots\" sheet")
		tenant     = flag.String("tenant", "", "Tenant id the receipts belong to")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun     = flag.Bool("dry-run", false, "Parse and report without modifying the database")
		migrate    = flag.Bool("migrate", false, "Run database migrations before seeding")
		down       = flag.Bool("migrate-down", false, "Roll back the last migration and exit")
		status     = flag.Bool("migrate-status", false, "Print the migration status and exit")
		invalidate = flag.Bool("invalidate-cache", true, "Drop cached expiring-lot results for the tenant")
		timeout    = flag.Duration("timeout", 5*time.Minute, "Overall time limit")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json")
	slog.SetDefault(slogger)

	if *down || *status {
		cfg, err := config.Load(slogger)
		if err != nil {
			slogger.Error("failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		if err := runMigrationCommand(ctx, cfg.GetDatabaseURL(), *down, slogger); err != nil {
			slogger.Error("migration command failed", slog.String("error", err.Error()))
			cancel()
			os.Exit(1)
		}
		return
	}

	tenantID, err := uuid.Parse(*tenant)
	if err != nil || tenantID == uuid.Nil {
		slogger.Error("a valid -tenant is required", slog.String("tenant", *tenant))
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		slogger.Error("failed to read workbook", slog.String("file", *file), slog.String("error", err.Error()))
		os.Exit(1)
	}

	receipts, err := spreadsheet.ParseReceipts(data, tenantID)
	if err != nil {
		slogger.Error("failed to parse receipts", slog.String("file", *file), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *dryRun {
		printSummary(filepath.Base(*file), receipts, 0)
		fmt.Println("\n[DRY RUN] No changes were made to the database")
		return
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *migrate {
		if err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
			DatabaseURL: cfg.GetDatabaseURL(),
		}, slogger, 3); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: 4,
		MinConnections: 1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	// All receipts of one workbook land together or not at all
	var written int
	err = database.Transaction(ctx, func(tx pgx.Tx) error {
		var err error
		written, err = db.NewLotImportRepository(tx, slogger).UpsertReceipts(ctx, receipts)
		return err
	})
	if err != nil {
		slogger.Error("failed to save receipts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *invalidate {
		if err := invalidateExpiringCache(ctx, cfg, database, tenantID, slogger); err != nil {
			// Entries expire on their own TTL
			slogger.Warn("failed to invalidate expiring-lot cache", slog.String("error", err.Error()))
		}
	}

	printSummary(filepath.Base(*file), receipts, written)

	slogger.Info("seed operation completed",
		slog.String("tenant_id", tenantID.String()),
		slog.Int("receipts", len(receipts)),
		slog.Int("rows_written", written))
}

// runMigrationCommand rolls back one migration when down is set, then prints
// the resulting migration status as JSON
func runMigrationCommand(ctx context.Context, databaseURL string, down bool, logger *slog.Logger) error {
	migrator, err := db.NewMigrator(&db.MigrationConfig{DatabaseURL: databaseURL}, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if down {
		if err := migrator.Down(ctx); err != nil {
			return err
		}
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}

func invalidateExpiringCache(ctx context.Context, cfg *config.Config, database *db.Database, tenantID uuid.UUID, logger *slog.Logger) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	lots := redis_a.NewCachedLotMetadata(
		db.NewLotRepository(database, logger),
		redis_a.NewCache(client, cfg.Redis.TTL, logger),
		cfg.Allocation.ExpiringCacheTTL,
		logger,
	)
	return lots.Invalidate(ctx, tenantID)
}

// printSummary writes a per-warehouse breakdown of the parsed receipts
func printSummary(source string, receipts []domain.LotReceipt, written int) {
	type bucket struct {
		lots     int
		quantity decimal.Decimal
		expiring int
	}

	byWarehouse := make(map[uuid.UUID]*bucket)
	for _, r := range receipts {
		b, ok := byWarehouse[r.WarehouseID]
		if !ok {
			b = &bucket{quantity: decimal.Zero}
			byWarehouse[r.WarehouseID] = b
		}
		b.lots++
		b.quantity = b.quantity.Add(r.Quantity)
		if r.ExpiryDate != nil {
			b.expiring++
		}
	}

	warehouses := make([]uuid.UUID, 0, len(byWarehouse))
	for id := range byWarehouse {
		warehouses = append(warehouses, id)
	}
	sort.Slice(warehouses, func(i, j int) bool {
		return warehouses[i].String() < warehouses[j].String()
	})

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOT RECEIPT SEED SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Receipts parsed: %d\n", len(receipts))
	fmt.Printf("Rows written: %d\n", written)

	for _, id := range warehouses {
		b := byWarehouse[id]
		fmt.Printf("  - warehouse %s: %d lots, %s units, %d with expiry\n",
			id, b.lots, b.quantity.String(), b.expiring)
	}
}
