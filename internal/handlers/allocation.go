// internal/handlers/allocation.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// AllocationHandler serves allocation plans and expiring-lot listings
type AllocationHandler struct {
	service     ports.LotAllocationService
	defaultDays int
	logger      *slog.Logger
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(service ports.LotAllocationService, defaultDays int, logger *slog.Logger) *AllocationHandler {
	return &AllocationHandler{
		service:     service,
		defaultDays: defaultDays,
		logger:      logger.With(slog.String("handler", "allocation")),
	}
}

// AllocateRequest represents the request body for an allocation plan
type AllocateRequest struct {
	Strategy         string          `json:"strategy"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	LotID            *uuid.UUID      `json:"lot_id,omitempty"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
}

// ToDomain converts the request to a domain allocation request
func (r *AllocateRequest) ToDomain(tenantID uuid.UUID) (domain.AllocationRequest, error) {
	strategy := domain.StrategyFIFO
	if r.Strategy != "" {
		s, err := domain.ParseAllocationStrategy(r.Strategy)
		if err != nil {
			return domain.AllocationRequest{}, err
		}
		strategy = s
	}

	req := domain.AllocationRequest{
		Strategy:         strategy,
		TenantID:         tenantID,
		WarehouseID:      r.WarehouseID,
		ProductID:        r.ProductID,
		LotID:            r.LotID,
		RequiredQuantity: r.RequiredQuantity,
	}
	if err := req.Validate(); err != nil {
		return domain.AllocationRequest{}, err
	}
	return req, nil
}

// AllocationResponse wraps a plan with its computed total
type AllocationResponse struct {
	*domain.AllocationPlan
	TotalAllocated decimal.Decimal `json:"total_allocated"`
}

// ExpiringLotsResponse lists lots expiring inside the requested window
type ExpiringLotsResponse struct {
	TenantID        uuid.UUID    `json:"tenant_id"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Count           int          `json:"count"`
	Lots            []domain.Lot `json:"lots"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// Allocate handles POST /api/v1/allocations
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := tenantFromRequest(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Tenant is required")
		return
	}

	req, err := decodeAllocateRequest(r, tenantID)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.SelectLots(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "allocation failed",
			slog.String("strategy", string(req.Strategy)),
			slog.String("warehouse_id", req.WarehouseID.String()),
			slog.String("product_id", req.ProductID.String()),
			slog.String("error", err.Error()))
		respondServiceError(ctx, w, h.logger, err, "Failed to compute allocation")
		return
	}

	h.logger.InfoContext(ctx, "allocation computed",
		slog.String("strategy", string(plan.Strategy)),
		slog.Int("lots", len(plan.Allocations)),
		slog.String("required_quantity", plan.RequiredQuantity.String()))

	respondJSON(w, http.StatusOK, AllocationResponse{
		AllocationPlan: plan,
		TotalAllocated: plan.TotalAllocated(),
	})
}

// ListExpiring handles GET /api/v1/lots/expiring
func (h *AllocationHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := tenantFromRequest(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Tenant is required")
		return
	}

	days, err := parseDays(r, h.defaultDays)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	lots, err := h.service.FindExpiringLots(ctx, tenantID, days)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "Failed to list expiring lots")
		return
	}
	if lots == nil {
		lots = []domain.Lot{}
	}

	respondJSON(w, http.StatusOK, ExpiringLotsResponse{
		TenantID:        tenantID,
		DaysUntilExpiry: days,
		Count:           len(lots),
		Lots:            lots,
		GeneratedAt:     time.Now().UTC(),
	})
}

func decodeAllocateRequest(r *http.Request, tenantID uuid.UUID) (domain.AllocationRequest, error) {
	var body AllocateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return domain.AllocationRequest{}, errors.New("invalid request body")
	}
	return body.ToDomain(tenantID)
}
