// internal/adapters/redis_adapter/lot_cache.go
package redis_a

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// CachedLotMetadata caches expiring-lot lookups per tenant and threshold day.
// Cache failures fall through to the wrapped provider.
type CachedLotMetadata struct {
	inner  ports.LotMetadataProvider
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.LotMetadataProvider = (*CachedLotMetadata)(nil)

// NewCachedLotMetadata wraps inner with a read-through cache
func NewCachedLotMetadata(inner ports.LotMetadataProvider, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *CachedLotMetadata {
	return &CachedLotMetadata{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "lot_cache")),
	}
}

// ExpiringKey is the cache key for one tenant and threshold
func ExpiringKey(tenantID uuid.UUID, before time.Time) string {
	return BuildKey(PrefixExpiring, tenantID.String(), before.Format(time.RFC3339))
}

// FindActiveExpiringBefore implements ports.LotMetadataProvider
func (c *CachedLotMetadata) FindActiveExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]domain.Lot, error) {
	var (
		lots     []domain.Lot
		fetchErr error
	)

	err := c.cache.GetOrSet(ctx, ExpiringKey(tenantID, before), &lots, func() (interface{}, error) {
		result, err := c.inner.FindActiveExpiringBefore(ctx, tenantID, before)
		fetchErr = err
		return result, err
	}, c.ttl)

	if fetchErr != nil {
		return nil, fetchErr
	}
	if err != nil {
		c.logger.WarnContext(ctx, "expiring lot cache unavailable",
			slog.String("tenant_id", tenantID.String()),
			slog.String("error", err.Error()))
		return c.inner.FindActiveExpiringBefore(ctx, tenantID, before)
	}

	return lots, nil
}

// Invalidate drops every cached threshold for the tenant
func (c *CachedLotMetadata) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.cache.DeletePattern(ctx, BuildKey(PrefixExpiring, tenantID.String(), "*"))
}
