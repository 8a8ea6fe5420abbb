// internal/handlers/response.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/pkg/logger"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error     string         `json:"error"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:     message,
		RequestID: logger.RequestIDFromContext(ctx),
	})
}

// respondServiceError maps allocation errors onto HTTP statuses
func respondServiceError(ctx context.Context, w http.ResponseWriter, log *slog.Logger, err error, fallback string) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		details := map[string]any{
			"warehouse_id": stockErr.WarehouseID,
			"product_id":   stockErr.ProductID,
			"requested":    stockErr.Requested,
			"available":    stockErr.Available,
			"shortfall":    stockErr.Shortfall(),
		}
		if stockErr.LotID != nil {
			details["lot_id"] = *stockErr.LotID
		}
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "Insufficient stock",
			RequestID: logger.RequestIDFromContext(ctx),
			Details:   details,
		})
	case errors.Is(err, domain.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "Inventory record not found")
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidArgument):
		respondError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(ctx, w, http.StatusGatewayTimeout, "Request timeout")
	default:
		log.ErrorContext(ctx, fallback, slog.String("error", err.Error()))
		respondError(ctx, w, http.StatusInternalServerError, fallback)
	}
}

func tenantFromRequest(r *http.Request) (uuid.UUID, bool) {
	return logger.TenantIDFromContext(r.Context())
}

// parseDays reads the days query parameter, falling back to def
func parseDays(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, errors.New("days must be a non-negative integer")
	}
	return days, nil
}
