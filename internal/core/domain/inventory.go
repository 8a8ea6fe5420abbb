// internal/core/domain/inventory.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of fractional digits stored for every quantity.
// It matches the NUMERIC(18,4) columns of the inventories table.
const QuantityScale int32 = 4

// FitsQuantityScale reports whether q has no significant digits beyond
// QuantityScale. Trailing zeros are ignored, so 1.50000 fits.
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// InventoryRecord is a read-only, point-in-time view of one lot's stock at a
// warehouse. The lot's creation timestamp and expiry date are flattened into
// the record so the allocation engine never has to navigate entity graphs.
type InventoryRecord struct {
	TenantID          uuid.UUID       `json:"tenant_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	LotID             uuid.UUID       `json:"lot_id"`
	LotNo             string          `json:"lot_no"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	LotCreatedAt      time.Time       `json:"lot_created_at"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
}

// Validate checks the record invariants
func (r *InventoryRecord) Validate() error {
	if r.LotID == uuid.Nil {
		return fmt.Errorf("lot_id is required")
	}
	if r.AvailableQuantity.IsNegative() {
		return fmt.Errorf("available_quantity cannot be negative")
	}
	if r.ReservedQuantity.IsNegative() {
		return fmt.Errorf("reserved_quantity cannot be negative")
	}
	return nil
}

// HasStock reports whether anything can be taken from the record
func (r *InventoryRecord) HasStock() bool {
	return r.AvailableQuantity.IsPositive()
}

// HasExpiry reports whether the lot carries a concrete expiry date
func (r *InventoryRecord) HasExpiry() bool {
	return r.ExpiryDate != nil
}
