// internal/core/ports/inventory_snapshot.go
package ports

import (
	"context"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/google/uuid"
)

// InventorySnapshotProvider reads point-in-time inventory records.
// This interface is implemented by the database adapter.
type InventorySnapshotProvider interface {
	// ListAvailable returns every record for the warehouse and product whose
	// available quantity is strictly positive. Order is unspecified.
	ListAvailable(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) ([]domain.InventoryRecord, error)
	// FindOne returns the record for a single lot, or nil when none exists.
	FindOne(ctx context.Context, tenantID, warehouseID, productID, lotID uuid.UUID) (*domain.InventoryRecord, error)
}
