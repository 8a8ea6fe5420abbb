// internal/core/ports/allocation_service.go
package ports

import (
	"context"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotAllocationService defines the application service port for lot allocation.
// Every method is a pure read: nothing is reserved or deducted.
type LotAllocationService interface {
	SelectLotsByFIFO(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, required decimal.Decimal) (*domain.AllocationPlan, error)
	SelectLotsByFEFO(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, required decimal.Decimal) (*domain.AllocationPlan, error)
	SelectSpecificLot(ctx context.Context, tenantID, warehouseID, productID, lotID uuid.UUID, required decimal.Decimal) (*domain.LotAllocation, error)
	SelectLots(ctx context.Context, req domain.AllocationRequest) (*domain.AllocationPlan, error)
	FindExpiringLots(ctx context.Context, tenantID uuid.UUID, daysUntilExpiry int) ([]domain.Lot, error)
}
