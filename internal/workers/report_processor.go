// internal/workers/report_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/lot-allocator/internal/adapters/spreadsheet"
	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// ReportProcessor renders expiring-lot workbooks and stores them
type ReportProcessor struct {
	service  ports.LotAllocationService
	store    ports.ReportStore
	prefix   string
	urlTTL   time.Duration
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// ReportProcessorConfig holds report processor settings
type ReportProcessorConfig struct {
	Prefix   string
	URLTTL   time.Duration
	Location *time.Location
	Now      func() time.Time
}

// NewReportProcessor creates a new report processor
func NewReportProcessor(service ports.LotAllocationService, store ports.ReportStore, cfg ReportProcessorConfig, logger *slog.Logger) *ReportProcessor {
	if cfg.Prefix == "" {
		cfg.Prefix = "reports"
	}
	if cfg.URLTTL == 0 {
		cfg.URLTTL = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &ReportProcessor{
		service:  service,
		store:    store,
		prefix:   cfg.Prefix,
		urlTTL:   cfg.URLTTL,
		location: cfg.Location,
		now:      cfg.Now,
		logger:   logger.With(slog.String("processor", "expiring_report")),
	}
}

// ReportKey is the object key of a tenant's report for the given day
func ReportKey(prefix string, tenantID uuid.UUID, day time.Time) string {
	return path.Join(prefix, tenantID.String(), "expiring-lots-"+day.Format(time.DateOnly)+".xlsx")
}

// ProcessExpiringReport handles TypeExpiringLotsReport tasks
func (p *ReportProcessor) ProcessExpiringReport(ctx context.Context, t *asynq.Task) error {
	payload, err := ParseExpiringReportPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log := p.logger.With(
		slog.String("tenant_id", payload.TenantID.String()),
		slog.Int("days_until_expiry", payload.DaysUntilExpiry))
	log.InfoContext(ctx, "generating expiring lot report")

	lots, err := p.service.FindExpiringLots(ctx, payload.TenantID, payload.DaysUntilExpiry)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to find expiring lots: %w", err)
	}

	today := p.now().In(p.location)
	data, err := spreadsheet.ExpiringLotsWorkbook(lots, today)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	key := ReportKey(p.prefix, payload.TenantID, today)
	location, err := p.store.Upload(ctx, key, bytes.NewReader(data), spreadsheet.ContentType)
	if err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	result := ExpiringReportResult{
		ObjectKey:   key,
		Location:    location,
		LotCount:    len(lots),
		GeneratedAt: today,
	}

	// Presign failures are logged only; the object key is still reported.
	if url, err := p.store.PresignedURL(ctx, key, p.urlTTL); err != nil {
		log.WarnContext(ctx, "failed to presign report url",
			slog.String("object_key", key),
			slog.String("error", err.Error()))
	} else {
		result.DownloadURL = url
	}

	if w := t.ResultWriter(); w != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal report result: %w", err)
		}
		if _, err := w.Write(b); err != nil {
			log.WarnContext(ctx, "failed to write task result", slog.String("error", err.Error()))
		}
	}

	log.InfoContext(ctx, "expiring lot report stored",
		slog.String("object_key", key),
		slog.Int("lot_count", len(lots)))

	return nil
}
