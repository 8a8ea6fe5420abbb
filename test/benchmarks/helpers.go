// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/lot-allocator/internal/core/domain"
)

// memorySnapshots serves a fixed snapshot without touching a database
type memorySnapshots struct {
	records []domain.InventoryRecord
}

func (m *memorySnapshots) ListAvailable(_ context.Context, _, _, _ uuid.UUID) ([]domain.InventoryRecord, error) {
	out := make([]domain.InventoryRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memorySnapshots) FindOne(_ context.Context, _, _, _, lotID uuid.UUID) (*domain.InventoryRecord, error) {
	for i := range m.records {
		if m.records[i].LotID == lotID {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// memoryLots serves a fixed lot list, filtered by expiry
type memoryLots struct {
	lots []domain.Lot
}

func (m *memoryLots) FindActiveExpiringBefore(_ context.Context, _ uuid.UUID, before time.Time) ([]domain.Lot, error) {
	out := make([]domain.Lot, 0, len(m.lots))
	for i := range m.lots {
		if m.lots[i].ExpiresBefore(before) {
			out = append(out, m.lots[i])
		}
	}
	return out, nil
}

var benchStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// createSnapshot builds n records in scrambled creation and expiry order.
// Every fifth lot has no expiry date. Each record holds 10.5 units.
func createSnapshot(tenantID, warehouseID, productID uuid.UUID, n int) []domain.InventoryRecord {
	records := make([]domain.InventoryRecord, n)
	for i := range records {
		created := benchStart.Add(time.Duration((i*7919)%n) * time.Hour)

		var expiry *time.Time
		if i%5 != 0 {
			d := benchStart.AddDate(0, 0, 30+(i*104729)%365)
			expiry = &d
		}

		records[i] = domain.InventoryRecord{
			TenantID:          tenantID,
			WarehouseID:       warehouseID,
			ProductID:         productID,
			LotID:             uuid.New(),
			LotNo:             fmt.Sprintf("LOT-%06d", i),
			AvailableQuantity: decimal.RequireFromString("10.5"),
			ReservedQuantity:  decimal.Zero,
			LotCreatedAt:      created,
			ExpiryDate:        expiry,
		}
	}
	return records
}

// createLots converts a snapshot into the matching lot rows
func createLots(records []domain.InventoryRecord) []domain.Lot {
	lots := make([]domain.Lot, len(records))
	for i, rec := range records {
		lots[i] = domain.Lot{
			ID:         rec.LotID,
			TenantID:   rec.TenantID,
			ProductID:  rec.ProductID,
			LotNo:      rec.LotNo,
			Status:     domain.LotStatusActive,
			CreatedAt:  rec.LotCreatedAt,
			ExpiryDate: rec.ExpiryDate,
		}
	}
	return lots
}

// halfOf returns half of the snapshot's total available quantity
func halfOf(records []domain.InventoryRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.AvailableQuantity)
	}
	return total.Div(decimal.NewFromInt(2))
}
