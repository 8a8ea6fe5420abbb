// internal/adapters/db/inventory_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// inventorySnapshotRepository implements ports.InventorySnapshotProvider
type inventorySnapshotRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

// NewInventorySnapshotRepository creates a snapshot provider backed by the
// inventories and lots tables
func NewInventorySnapshotRepository(db ports.Querier, logger *slog.Logger) ports.InventorySnapshotProvider {
	return &inventorySnapshotRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "inventory_snapshot")),
	}
}

func snapshotQuery(tenantID, warehouseID, productID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select(
		"i.tenant_id", "i.warehouse_id", "i.product_id", "i.lot_id", "l.lot_no",
		"i.available_quantity", "i.reserved_quantity",
		"l.created_at", "l.expiry_date",
	).From("inventories i").
		Join("lots l ON l.id = i.lot_id AND l.tenant_id = i.tenant_id").
		Where("l.deleted_at IS NULL").
		Where(squirrel.Eq{
			"i.tenant_id":    tenantID,
			"i.warehouse_id": warehouseID,
			"i.product_id":   productID,
		}).
		PlaceholderFormat(squirrel.Dollar)
}

// ListAvailable returns every record with available stock. Ordering is left
// to the allocation service.
func (r *inventorySnapshotRepository) ListAvailable(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) ([]domain.InventoryRecord, error) {
	query, args, err := snapshotQuery(tenantID, warehouseID, productID).
		Where(squirrel.Gt{"i.available_quantity": 0}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory snapshot: %w", err)
	}

	records, err := ScanAll(rows, scanInventoryRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory record: %w", err)
	}

	r.logger.DebugContext(ctx, "inventory snapshot loaded",
		slog.String("warehouse_id", warehouseID.String()),
		slog.String("product_id", productID.String()),
		slog.Int("records", len(records)))

	return records, nil
}

// FindOne returns the record for a single lot, or nil when none exists
func (r *inventorySnapshotRepository) FindOne(ctx context.Context, tenantID, warehouseID, productID, lotID uuid.UUID) (*domain.InventoryRecord, error) {
	query, args, err := snapshotQuery(tenantID, warehouseID, productID).
		Where(squirrel.Eq{"i.lot_id": lotID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	record, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanInventoryRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}

	return record, nil
}

func scanInventoryRecord(row pgx.Row) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	var expiry pgtype.Date

	err := row.Scan(
		&rec.TenantID, &rec.WarehouseID, &rec.ProductID, &rec.LotID, &rec.LotNo,
		&rec.AvailableQuantity, &rec.ReservedQuantity,
		&rec.LotCreatedAt, &expiry,
	)
	if err != nil {
		return domain.InventoryRecord{}, err
	}

	rec.ExpiryDate = datePtr(expiry)
	return rec, nil
}
