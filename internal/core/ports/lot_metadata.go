// internal/core/ports/lot_metadata.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/google/uuid"
)

// LotMetadataProvider answers lot-level queries that do not involve stock.
type LotMetadataProvider interface {
	// FindActiveExpiringBefore returns active lots of the tenant whose expiry
	// date is strictly before the given date. Lots without expiry are excluded.
	FindActiveExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]domain.Lot, error)
}
