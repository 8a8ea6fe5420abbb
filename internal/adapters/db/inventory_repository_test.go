package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/lot-allocator/internal/adapters/db"
	"github.com/ammerola/lot-allocator/test/helpers"
)

func snapshotRow(tenant, wh, product, lot uuid.UUID, lotNo string, available string, created time.Time, expiry pgtype.Date) []any {
	return []any{
		tenant, wh, product, lot, lotNo,
		decimal.RequireFromString(available), decimal.Zero,
		created, expiry,
	}
}

func TestInventorySnapshotRepository_ListAvailable(t *testing.T) {
	tenant, wh, product := uuid.New(), uuid.New(), uuid.New()
	lot1, lot2 := uuid.New(), uuid.New()
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	q := &fakeQuerier{rows: [][]any{
		snapshotRow(tenant, wh, product, lot1, "L-001", "100.5", created, pgtype.Date{Time: expiry, Valid: true}),
		snapshotRow(tenant, wh, product, lot2, "L-002", "20", created.Add(time.Hour), pgtype.Date{}),
	}}
	repo := db.NewInventorySnapshotRepository(q, helpers.TestLogger())

	records, err := repo.ListAvailable(context.Background(), tenant, wh, product)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, lot1, records[0].LotID)
	assert.Equal(t, "L-001", records[0].LotNo)
	assert.True(t, decimal.RequireFromString("100.5").Equal(records[0].AvailableQuantity))
	require.NotNil(t, records[0].ExpiryDate)
	assert.True(t, expiry.Equal(*records[0].ExpiryDate))
	assert.Nil(t, records[1].ExpiryDate)

	assert.Contains(t, q.lastSQL, "FROM inventories i JOIN lots l ON l.id = i.lot_id")
	assert.Contains(t, q.lastSQL, "l.deleted_at IS NULL")
	assert.Contains(t, q.lastSQL, "i.available_quantity > $4")
	assert.Contains(t, q.lastArgs, tenant.String())
	assert.Contains(t, q.lastArgs, wh.String())
	assert.Contains(t, q.lastArgs, product.String())
}

func TestInventorySnapshotRepository_ListAvailable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		querier *fakeQuerier
		wantMsg string
	}{
		{
			name:    "query_failure",
			querier: &fakeQuerier{queryErr: errors.New("connection refused")},
			wantMsg: "failed to query inventory snapshot",
		},
		{
			name:    "row_iteration_failure",
			querier: &fakeQuerier{rowErr: errors.New("conn closed")},
			wantMsg: "failed to scan inventory record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := db.NewInventorySnapshotRepository(tt.querier, helpers.TestLogger())

			records, err := repo.ListAvailable(context.Background(), uuid.New(), uuid.New(), uuid.New())
			require.Error(t, err)
			assert.Nil(t, records)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestInventorySnapshotRepository_FindOne(t *testing.T) {
	tenant, wh, product, lot := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	t.Run("returns_matching_record", func(t *testing.T) {
		q := &fakeQuerier{rows: [][]any{
			snapshotRow(tenant, wh, product, lot, "L-009", "100", created, pgtype.Date{}),
		}}
		repo := db.NewInventorySnapshotRepository(q, helpers.TestLogger())

		rec, err := repo.FindOne(context.Background(), tenant, wh, product, lot)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, lot, rec.LotID)
		assert.Contains(t, q.lastSQL, "i.lot_id = $")
		assert.NotContains(t, q.lastSQL, "available_quantity >")
	})

	t.Run("returns_nil_when_missing", func(t *testing.T) {
		repo := db.NewInventorySnapshotRepository(&fakeQuerier{}, helpers.TestLogger())

		rec, err := repo.FindOne(context.Background(), tenant, wh, product, lot)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("wraps_driver_error", func(t *testing.T) {
		repo := db.NewInventorySnapshotRepository(&fakeQuerier{queryErr: errors.New("timeout")}, helpers.TestLogger())

		rec, err := repo.FindOne(context.Background(), tenant, wh, product, lot)
		require.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "timeout")
	})
}
