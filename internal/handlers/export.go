// internal/handlers/export.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/lot-allocator/internal/adapters/spreadsheet"
	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// ExportHandler renders allocation data as xlsx downloads
type ExportHandler struct {
	service     ports.LotAllocationService
	defaultDays int
	location    *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ports.LotAllocationService, defaultDays int, location *time.Location, logger *slog.Logger) *ExportHandler {
	if location == nil {
		location = time.UTC
	}
	return &ExportHandler{
		service:     service,
		defaultDays: defaultDays,
		location:    location,
		now:         time.Now,
		logger:      logger.With(slog.String("handler", "export")),
	}
}

// ExportExpiring handles GET /api/v1/lots/expiring/export
func (h *ExportHandler) ExportExpiring(w http.ResponseWriter, r *http.Request) {
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
		respondServiceError(ctx, w, h.logger, err, "Failed to retrieve expiring lots")
		return
	}

	today := h.now().In(h.location)
	data, err := spreadsheet.ExpiringLotsWorkbook(lots, today)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		respondError(ctx, w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	h.logger.InfoContext(ctx, "expiring lots exported",
		slog.Int("lot_count", len(lots)),
		slog.Int("days_until_expiry", days))

	h.writeWorkbook(w, fmt.Sprintf("expiring_lots_%s.xlsx", today.Format("20060102")), data)
}

// ExportAllocation handles POST /api/v1/allocations/export
func (h *ExportHandler) ExportAllocation(w http.ResponseWriter, r *http.Request) {
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
		respondServiceError(ctx, w, h.logger, err, "Failed to compute allocation")
		return
	}

	data, err := spreadsheet.AllocationPlanWorkbook(plan)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		respondError(ctx, w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("allocation_%s_%s.xlsx", plan.Strategy, h.now().In(h.location).Format("20060102_150405"))
	h.writeWorkbook(w, filename, data)
}

func (h *ExportHandler) writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
