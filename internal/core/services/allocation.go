// internal/core/services/allocation.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationService computes lot allocation plans over inventory snapshots.
// It never writes: turning a plan into a reservation, and guarding that
// against concurrent callers, is the caller's job.
type AllocationService struct {
	snapshots ports.InventorySnapshotProvider
	lots      ports.LotMetadataProvider
	logger    *slog.Logger
	now       func() time.Time
	loc       *time.Location
}

// Statically assert that *AllocationService implements the LotAllocationService interface.
var _ ports.LotAllocationService = (*AllocationService)(nil)

// NewAllocationService creates a new allocation service
func NewAllocationService(
	snapshots ports.InventorySnapshotProvider,
	lots ports.LotMetadataProvider,
	logger *slog.Logger,
	opts ...Option,
) *AllocationService {
	s := &AllocationService{
		snapshots: snapshots,
		lots:      lots,
		logger:    logger.With(slog.String("service", "allocation")),
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectLotsByFIFO allocates from the oldest lots first
func (s *AllocationService) SelectLotsByFIFO(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, required decimal.Decimal) (*domain.AllocationPlan, error) {
	return s.selectGreedy(ctx, domain.AllocationRequest{
		Strategy:         domain.StrategyFIFO,
		TenantID:         tenantID,
		WarehouseID:      warehouseID,
		ProductID:        productID,
		RequiredQuantity: required,
	}, oldestFirst)
}

// SelectLotsByFEFO allocates from the soonest-to-expire lots first.
// Lots without an expiry date are used last.
func (s *AllocationService) SelectLotsByFEFO(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, required decimal.Decimal) (*domain.AllocationPlan, error) {
	return s.selectGreedy(ctx, domain.AllocationRequest{
		Strategy:         domain.StrategyFEFO,
		TenantID:         tenantID,
		WarehouseID:      warehouseID,
		ProductID:        productID,
		RequiredQuantity: required,
	}, soonestExpiryFirst)
}

// SelectSpecificLot takes the full quantity from one lot. Other lots are
// never consulted, even when together they would cover the request.
func (s *AllocationService) SelectSpecificLot(ctx context.Context, tenantID, warehouseID, productID, lotID uuid.UUID, required decimal.Decimal) (*domain.LotAllocation, error) {
	req := domain.AllocationRequest{
		Strategy:         domain.StrategySpecific,
		TenantID:         tenantID,
		WarehouseID:      warehouseID,
		ProductID:        productID,
		LotID:            &lotID,
		RequiredQuantity: required,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, err := s.snapshots.FindOne(ctx, tenantID, warehouseID, productID, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory for lot %s: %w", lotID, err)
	}
	if record == nil {
		return nil, &domain.NotFoundError{
			WarehouseID: warehouseID,
			ProductID:   productID,
			LotID:       lotID,
		}
	}

	if record.AvailableQuantity.LessThan(required) {
		s.logger.WarnContext(ctx, "pinned lot cannot cover request",
			slog.String("lot_id", lotID.String()),
			slog.String("requested", required.String()),
			slog.String("available", record.AvailableQuantity.String()))

		return nil, &domain.InsufficientStockError{
			WarehouseID: warehouseID,
			ProductID:   productID,
			LotID:       &lotID,
			Requested:   required,
			Available:   record.AvailableQuantity,
		}
	}

	return &domain.LotAllocation{
		LotID:             record.LotID,
		LotNo:             record.LotNo,
		AllocatedQuantity: required,
		AvailableQuantity: record.AvailableQuantity,
		ExpiryDate:        record.ExpiryDate,
	}, nil
}

// SelectLots dispatches on req.Strategy. A SPECIFIC request yields a
// single-entry plan.
func (s *AllocationService) SelectLots(ctx context.Context, req domain.AllocationRequest) (*domain.AllocationPlan, error) {
	switch req.Strategy {
	case domain.StrategyFIFO:
		return s.SelectLotsByFIFO(ctx, req.TenantID, req.WarehouseID, req.ProductID, req.RequiredQuantity)
	case domain.StrategyFEFO:
		return s.SelectLotsByFEFO(ctx, req.TenantID, req.WarehouseID, req.ProductID, req.RequiredQuantity)
	case domain.StrategySpecific:
		if req.LotID == nil {
			return nil, fmt.Errorf("%w: lot_id is required for %s allocation", domain.ErrInvalidArgument, req.Strategy)
		}
		alloc, err := s.SelectSpecificLot(ctx, req.TenantID, req.WarehouseID, req.ProductID, *req.LotID, req.RequiredQuantity)
		if err != nil {
			return nil, err
		}
		return &domain.AllocationPlan{
			Strategy:         domain.StrategySpecific,
			TenantID:         req.TenantID,
			WarehouseID:      req.WarehouseID,
			ProductID:        req.ProductID,
			RequiredQuantity: req.RequiredQuantity,
			Allocations:      []domain.LotAllocation{*alloc},
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown allocation strategy %q", domain.ErrInvalidArgument, req.Strategy)
	}
}

// FindExpiringLots returns the tenant's active lots expiring strictly before
// today plus daysUntilExpiry days.
func (s *AllocationService) FindExpiringLots(ctx context.Context, tenantID uuid.UUID, daysUntilExpiry int) ([]domain.Lot, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant_id is required", domain.ErrInvalidArgument)
	}
	if daysUntilExpiry < 0 {
		return nil, fmt.Errorf("%w: days until expiry cannot be negative, got %d", domain.ErrInvalidArgument, daysUntilExpiry)
	}

	threshold := s.ExpiryThreshold(daysUntilExpiry)

	lots, err := s.lots.FindActiveExpiringBefore(ctx, tenantID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring lots: %w", err)
	}

	s.logger.DebugContext(ctx, "found expiring lots",
		slog.String("tenant_id", tenantID.String()),
		slog.Time("threshold", threshold),
		slog.Int("count", len(lots)))

	return lots, nil
}

// ExpiryThreshold is midnight of today plus days, in the service's location
func (s *AllocationService) ExpiryThreshold(days int) time.Time {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return today.AddDate(0, 0, days)
}

// selectGreedy loads the snapshot, orders it and walks it, taking
// min(remaining, available) from each record until the request is covered.
func (s *AllocationService) selectGreedy(ctx context.Context, req domain.AllocationRequest, order recordOrder) (*domain.AllocationPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.snapshots.ListAvailable(ctx, req.TenantID, req.WarehouseID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available inventory: %w", err)
	}

	plan, err := allocate(req, sortedCopy(records, order))
	if err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			s.logger.WarnContext(ctx, "insufficient stock for allocation",
				slog.String("strategy", string(req.Strategy)),
				slog.String("warehouse_id", req.WarehouseID.String()),
				slog.String("product_id", req.ProductID.String()),
				slog.String("requested", ise.Requested.String()),
				slog.String("available", ise.Available.String()))
		}
		return nil, err
	}

	s.logger.DebugContext(ctx, "computed allocation plan",
		slog.String("strategy", string(req.Strategy)),
		slog.String("warehouse_id", req.WarehouseID.String()),
		slog.String("product_id", req.ProductID.String()),
		slog.Int("lots", len(plan.Allocations)))

	return plan, nil
}

// allocate runs the greedy walk over already ordered records. Stock is
// totalled first so a shortfall never produces a partial plan.
func allocate(req domain.AllocationRequest, ordered []domain.InventoryRecord) (*domain.AllocationPlan, error) {
	total := decimal.Zero
	for _, r := range ordered {
		total = total.Add(r.AvailableQuantity)
	}
	if total.LessThan(req.RequiredQuantity) {
		return nil, &domain.InsufficientStockError{
			WarehouseID: req.WarehouseID,
			ProductID:   req.ProductID,
			Requested:   req.RequiredQuantity,
			Available:   total,
		}
	}

	plan := &domain.AllocationPlan{
		Strategy:         req.Strategy,
		TenantID:         req.TenantID,
		WarehouseID:      req.WarehouseID,
		ProductID:        req.ProductID,
		RequiredQuantity: req.RequiredQuantity,
	}

	remaining := req.RequiredQuantity
	for _, r := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, r.AvailableQuantity)
		plan.Allocations = append(plan.Allocations, domain.LotAllocation{
			LotID:             r.LotID,
			LotNo:             r.LotNo,
			AllocatedQuantity: take,
			AvailableQuantity: r.AvailableQuantity,
			ExpiryDate:        r.ExpiryDate,
		})
		remaining = remaining.Sub(take)
	}

	return plan, nil
}
