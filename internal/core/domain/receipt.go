// internal/core/domain/receipt.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotReceipt is one received lot of a product at a warehouse, as loaded by
// the seeder. It creates or refreshes both the lot and its inventory row.
type LotReceipt struct {
	TenantID    uuid.UUID
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	LotNo       string
	Quantity    decimal.Decimal
	ReceivedAt  time.Time
	ExpiryDate  *time.Time
}

// Validate checks required fields and quantity bounds
func (r *LotReceipt) Validate() error {
	switch {
	case r.TenantID == uuid.Nil:
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidArgument)
	case r.WarehouseID == uuid.Nil:
		return fmt.Errorf("%w: warehouse_id is required", ErrInvalidArgument)
	case r.ProductID == uuid.Nil:
		return fmt.Errorf("%w: product_id is required", ErrInvalidArgument)
	case r.LotNo == "":
		return fmt.Errorf("%w: lot_no is required", ErrInvalidArgument)
	case r.Quantity.IsNegative():
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidQuantity)
	case !FitsQuantityScale(r.Quantity):
		return fmt.Errorf("%w: quantity %s has more than %d decimal places", ErrInvalidQuantity, r.Quantity, QuantityScale)
	case r.ReceivedAt.IsZero():
		return fmt.Errorf("%w: received_at is required", ErrInvalidArgument)
	}

	if r.ExpiryDate != nil && r.ExpiryDate.Before(r.ReceivedAt.Truncate(24*time.Hour)) {
		return fmt.Errorf("%w: lot %s expires before it was received", ErrInvalidArgument, r.LotNo)
	}

	return nil
}
