// internal/workers/scheduler.go
package workers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// PeriodicRegistrar is the part of *asynq.Scheduler used here
type PeriodicRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// RegisterReportSchedule registers one periodic report task per tenant and
// returns the scheduler entry ids
func RegisterReportSchedule(s PeriodicRegistrar, cronspec string, tenants []string, days int, logger *slog.Logger) ([]string, error) {
	if cronspec == "" || len(tenants) == 0 {
		logger.Info("expiring lot report schedule disabled")
		return nil, nil
	}

	entries := make([]string, 0, len(tenants))
	for _, raw := range tenants {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid report tenant %q: %w", raw, err)
		}

		task, err := NewExpiringReportTask(ExpiringReportPayload{
			TenantID:        tenantID,
			DaysUntilExpiry: days,
		})
		if err != nil {
			return nil, err
		}

		entryID, err := s.Register(cronspec, task,
			asynq.Queue(ReportQueue),
			asynq.MaxRetry(3),
			asynq.Retention(7*24*time.Hour))
		if err != nil {
			return nil, fmt.Errorf("failed to register report for tenant %s: %w", tenantID, err)
		}

		logger.Info("expiring lot report scheduled",
			slog.String("tenant_id", tenantID.String()),
			slog.String("cron", cronspec),
			slog.String("entry_id", entryID))
		entries = append(entries, entryID)
	}

	return entries, nil
}
