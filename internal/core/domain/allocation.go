// internal/core/domain/allocation.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationStrategy selects how lots are ordered before consumption
type AllocationStrategy string

// Strategy constants
const (
	// StrategyFIFO consumes the oldest lots first.
	StrategyFIFO AllocationStrategy = "FIFO"
	// StrategyFEFO consumes the soonest-to-expire lots first; lots without
	// an expiry date go last.
	StrategyFEFO AllocationStrategy = "FEFO"
	// StrategySpecific takes the whole quantity from one pinned lot.
	StrategySpecific AllocationStrategy = "SPECIFIC"
)

// ParseAllocationStrategy parses a strategy name, case-insensitively
func ParseAllocationStrategy(s string) (AllocationStrategy, error) {
	switch st := AllocationStrategy(strings.ToUpper(strings.TrimSpace(s))); st {
	case StrategyFIFO, StrategyFEFO, StrategySpecific:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown allocation strategy %q", ErrInvalidArgument, s)
}

// LotAllocation is one entry of an allocation plan
type LotAllocation struct {
	LotID             uuid.UUID       `json:"lot_id"`
	LotNo             string          `json:"lot_no"`
	AllocatedQuantity decimal.Decimal `json:"allocated_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
}

// IsPartial reports whether the allocation leaves stock behind in the lot
func (a LotAllocation) IsPartial() bool {
	return a.AllocatedQuantity.LessThan(a.AvailableQuantity)
}

// AllocationRequest describes a quantity to allocate
type AllocationRequest struct {
	Strategy         AllocationStrategy `json:"strategy"`
	TenantID         uuid.UUID          `json:"tenant_id"`
	WarehouseID      uuid.UUID          `json:"warehouse_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	LotID            *uuid.UUID         `json:"lot_id,omitempty"`
	RequiredQuantity decimal.Decimal    `json:"required_quantity"`
}

// Validate checks the request before any snapshot is read
func (r *AllocationRequest) Validate() error {
	if r.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidArgument)
	}
	if r.WarehouseID == uuid.Nil {
		return fmt.Errorf("%w: warehouse_id is required", ErrInvalidArgument)
	}
	if r.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id is required", ErrInvalidArgument)
	}
	if !r.RequiredQuantity.IsPositive() {
		return fmt.Errorf("%w: required_quantity must be positive, got %s", ErrInvalidQuantity, r.RequiredQuantity)
	}
	if !FitsQuantityScale(r.RequiredQuantity) {
		return fmt.Errorf("%w: required_quantity %s has more than %d decimal places", ErrInvalidQuantity, r.RequiredQuantity, QuantityScale)
	}
	if r.Strategy == StrategySpecific && (r.LotID == nil || *r.LotID == uuid.Nil) {
		return fmt.Errorf("%w: lot_id is required for %s allocation", ErrInvalidArgument, StrategySpecific)
	}
	return nil
}

// AllocationPlan is the ordered set of lot allocations that together cover
// the required quantity. A plan is only ever returned complete.
type AllocationPlan struct {
	Strategy         AllocationStrategy `json:"strategy"`
	TenantID         uuid.UUID          `json:"tenant_id"`
	WarehouseID      uuid.UUID          `json:"warehouse_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	RequiredQuantity decimal.Decimal    `json:"required_quantity"`
	Allocations      []LotAllocation    `json:"allocations"`
}

// TotalAllocated sums the allocated quantity over all entries
func (p *AllocationPlan) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AllocatedQuantity)
	}
	return total
}

// IsSatisfied reports whether the entries add up to exactly the required quantity
func (p *AllocationPlan) IsSatisfied() bool {
	return p.TotalAllocated().Equal(p.RequiredQuantity)
}

// LotIDs returns the lot ids in plan order
func (p *AllocationPlan) LotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		ids = append(ids, a.LotID)
	}
	return ids
}
