// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors. Use errors.Is against these, and errors.As against the
// structured types below to read the context fields.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// NotFoundError reports a specifically requested inventory record that does not exist
type NotFoundError struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	LotID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("inventory not found: warehouse=%s product=%s lot=%s",
		e.WarehouseID, e.ProductID, e.LotID)
}

// Is matches ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError reports that the available quantity does not cover
// the requested quantity. LotID is set only for pinned-lot requests.
type InsufficientStockError struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	LotID       *uuid.UUID
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "insufficient stock: warehouse=%s product=%s", e.WarehouseID, e.ProductID)
	if e.LotID != nil {
		fmt.Fprintf(&b, " lot=%s", *e.LotID)
	}
	fmt.Fprintf(&b, " requested=%s available=%s", e.Requested, e.Available)
	return b.String()
}

// Is matches ErrInsufficientStock
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Shortfall is how much more stock the request needs
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}
