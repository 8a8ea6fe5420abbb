// internal/adapters/db/lot_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// lotRepository implements ports.LotMetadataProvider
type lotRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

// NewLotRepository creates a new lot metadata repository
func NewLotRepository(db ports.Querier, logger *slog.Logger) ports.LotMetadataProvider {
	return &lotRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "lot")),
	}
}

// FindActiveExpiringBefore returns active lots whose expiry date is strictly
// before the given date. Lots without an expiry date never match.
func (r *lotRepository) FindActiveExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]domain.Lot, error) {
	query, args, err := squirrel.Select(
		"id", "tenant_id", "product_id", "lot_no", "status", "created_at", "expiry_date",
	).From("lots").
		Where("deleted_at IS NULL").
		Where("expiry_date IS NOT NULL").
		Where(squirrel.Eq{
			"tenant_id": tenantID,
			"status":    string(domain.LotStatusActive),
		}).
		Where(squirrel.Lt{"expiry_date": before.Format(time.DateOnly)}).
		OrderBy("expiry_date ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring lots: %w", err)
	}

	lots, err := ScanAll(rows, scanLot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan lot: %w", err)
	}

	r.logger.DebugContext(ctx, "expiring lots loaded",
		slog.String("before", before.Format(time.DateOnly)),
		slog.Int("count", len(lots)))

	return lots, nil
}

func scanLot(row pgx.Row) (domain.Lot, error) {
	var lot domain.Lot
	var status string
	var expiry pgtype.Date

	if err := row.Scan(&lot.ID, &lot.TenantID, &lot.ProductID, &lot.LotNo, &status, &lot.CreatedAt, &expiry); err != nil {
		return domain.Lot{}, err
	}

	lot.Status = domain.LotStatus(status)
	lot.ExpiryDate = datePtr(expiry)
	return lot, nil
}
