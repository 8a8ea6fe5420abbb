package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/lot-allocator/internal/core/domain"
)

func TestInventoryRecord_Validate(t *testing.T) {
	tests := []struct {
		name      string
		record    *domain.InventoryRecord
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid_record",
			record: &domain.InventoryRecord{
				LotID:             uuid.New(),
				LotNo:             "LOT-001",
				AvailableQuantity: decimal.NewFromInt(100),
				ReservedQuantity:  decimal.NewFromInt(5),
				LotCreatedAt:      time.Now(),
			},
		},
		{
			name: "zero_available_is_valid",
			record: &domain.InventoryRecord{
				LotID:             uuid.New(),
				AvailableQuantity: decimal.Zero,
			},
		},
		{
			name: "missing_lot_id",
			record: &domain.InventoryRecord{
				AvailableQuantity: decimal.NewFromInt(1),
			},
			wantError: true,
			errorMsg:  "lot_id is required",
		},
		{
			name: "negative_available",
			record: &domain.InventoryRecord{
				LotID:             uuid.New(),
				AvailableQuantity: decimal.NewFromInt(-1),
			},
			wantError: true,
			errorMsg:  "available_quantity cannot be negative",
		},
		{
			name: "negative_reserved",
			record: &domain.InventoryRecord{
				LotID:             uuid.New(),
				AvailableQuantity: decimal.NewFromInt(1),
				ReservedQuantity:  decimal.NewFromInt(-2),
			},
			wantError: true,
			errorMsg:  "reserved_quantity cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantError {
				assert.EqualError(t, err, tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInventoryRecord_HasStock(t *testing.T) {
	r := domain.InventoryRecord{AvailableQuantity: decimal.RequireFromString("0.0001")}
	assert.True(t, r.HasStock())

	r.AvailableQuantity = decimal.Zero
	assert.False(t, r.HasStock())
}

func TestInventoryRecord_HasExpiry(t *testing.T) {
	r := domain.InventoryRecord{}
	assert.False(t, r.HasExpiry())

	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.ExpiryDate = &exp
	assert.True(t, r.HasExpiry())
}

func TestLot_ExpiresBefore(t *testing.T) {
	threshold := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := threshold.AddDate(0, 0, -1)
	after := threshold.AddDate(0, 0, 1)

	tests := []struct {
		name   string
		expiry *time.Time
		want   bool
	}{
		{name: "no_expiry", expiry: nil, want: false},
		{name: "day_before_threshold", expiry: &before, want: true},
		{name: "on_threshold_is_not_before", expiry: &threshold, want: false},
		{name: "after_threshold", expiry: &after, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := domain.Lot{ExpiryDate: tt.expiry}
			assert.Equal(t, tt.want, lot.ExpiresBefore(threshold))
		})
	}
}

func TestLot_ExpiresBefore_ComparesCalendarDays(t *testing.T) {
	eastern := time.FixedZone("UTC-5", -5*60*60)
	tokyo := time.FixedZone("UTC+9", 9*60*60)

	tests := []struct {
		name      string
		expiry    time.Time
		threshold time.Time
		want      bool
	}{
		{
			name:      "same_day_west_of_utc",
			expiry:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			threshold: time.Date(2026, 3, 1, 0, 0, 0, 0, eastern),
			want:      false,
		},
		{
			name:      "same_day_east_of_utc",
			expiry:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			threshold: time.Date(2026, 3, 1, 0, 0, 0, 0, tokyo),
			want:      false,
		},
		{
			name:      "previous_day_east_of_utc",
			expiry:    time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
			threshold: time.Date(2026, 3, 1, 0, 0, 0, 0, tokyo),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := domain.Lot{ExpiryDate: &tt.expiry}
			assert.Equal(t, tt.want, lot.ExpiresBefore(tt.threshold))
		})
	}
}

func TestFitsQuantityScale(t *testing.T) {
	tests := []struct {
		name string
		q    string
		want bool
	}{
		{name: "integer", q: "150", want: true},
		{name: "four_places", q: "0.0001", want: true},
		{name: "trailing_zeros", q: "1.500000", want: true},
		{name: "five_places", q: "0.00004", want: false},
		{name: "negative_five_places", q: "-2.00001", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.FitsQuantityScale(decimal.RequireFromString(tt.q)))
		})
	}
}

func TestLotReceipt_Validate_QuantityScale(t *testing.T) {
	receipt := domain.LotReceipt{
		TenantID:    uuid.New(),
		WarehouseID: uuid.New(),
		ProductID:   uuid.New(),
		LotNo:       "L-1",
		Quantity:    decimal.RequireFromString("10.12345"),
		ReceivedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	err := receipt.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	receipt.Quantity = decimal.RequireFromString("10.1234")
	assert.NoError(t, receipt.Validate())
}

func TestLot_DaysUntilExpiry(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	lot := domain.Lot{}
	_, ok := lot.DaysUntilExpiry(today)
	assert.False(t, ok)

	exp := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	lot.ExpiryDate = &exp
	days, ok := lot.DaysUntilExpiry(today)
	assert.True(t, ok)
	assert.Equal(t, 10, days)

	past := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	lot.ExpiryDate = &past
	days, _ = lot.DaysUntilExpiry(today)
	assert.Equal(t, -2, days)
}

func TestLotStatus_IsValid(t *testing.T) {
	assert.True(t, domain.LotStatusActive.IsValid())
	assert.True(t, domain.LotStatusExpired.IsValid())
	assert.False(t, domain.LotStatus("QUARANTINE").IsValid())
}
