// internal/adapters/db/lot_import.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ammerola/lot-allocator/internal/core/domain"
)

// BatchSender is implemented by *Database and pgx.Tx
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// upsertReceiptSQL creates or refreshes the lot, then sets the inventory row
// for the warehouse to the received quantity.
const upsertReceiptSQL = `
	WITH lot AS (
		INSERT INTO lots (id, tenant_id, product_id, lot_no, status, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, 'ACTIVE', $5, $6)
		ON CONFLICT (tenant_id, product_id, lot_no)
		DO UPDATE SET expiry_date = EXCLUDED.expiry_date, updated_at = now()
		RETURNING id
	)
	INSERT INTO inventories (tenant_id, warehouse_id, product_id, lot_id, available_quantity)
	SELECT $2, $7, $3, lot.id, $8 FROM lot
	ON CONFLICT (tenant_id, warehouse_id, product_id, lot_id)
	DO UPDATE SET available_quantity = EXCLUDED.available_quantity,
	              version = inventories.version + 1,
	              updated_at = now()`

// LotImportRepository writes lot receipts in batches
type LotImportRepository struct {
	db     BatchSender
	logger *slog.Logger
}

// NewLotImportRepository creates a new import repository
func NewLotImportRepository(db BatchSender, logger *slog.Logger) *LotImportRepository {
	return &LotImportRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "lot_import")),
	}
}

// UpsertReceipts validates and writes all receipts in a single batch.
// Nothing is sent when any receipt is invalid.
func (r *LotImportRepository) UpsertReceipts(ctx context.Context, receipts []domain.LotReceipt) (int, error) {
	if len(receipts) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range receipts {
		rec := &receipts[i]
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("receipt %d: %w", i+1, err)
		}

		var expiry pgtype.Date
		if rec.ExpiryDate != nil {
			expiry = pgtype.Date{Time: *rec.ExpiryDate, Valid: true}
		}

		batch.Queue(upsertReceiptSQL,
			uuid.New(), rec.TenantID, rec.ProductID, rec.LotNo, expiry, rec.ReceivedAt,
			rec.WarehouseID, rec.Quantity,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	written := 0
	for i := range receipts {
		if _, err := br.Exec(); err != nil {
			return written, fmt.Errorf("failed to upsert lot %s: %w", receipts[i].LotNo, err)
		}
		written++
	}

	r.logger.InfoContext(ctx, "lot receipts imported", slog.Int("count", written))
	return written, nil
}
