// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeExpiringLotsReport = "lots:expiring_report"
)

// ReportQueue is the asynq queue report tasks are sent to
const ReportQueue = "low"

// ExpiringReportPayload represents the payload for expiring-lot report jobs
type ExpiringReportPayload struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// ExpiringReportResult is written to the task result once the report is stored
type ExpiringReportResult struct {
	ObjectKey   string    `json:"object_key"`
	Location    string    `json:"location"`
	DownloadURL string    `json:"download_url,omitempty"`
	LotCount    int       `json:"lot_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewExpiringReportTask builds a report task. Options that control delivery
// (queue, uniqueness, retention) are supplied by the caller at enqueue time.
func NewExpiringReportTask(payload ExpiringReportPayload, opts ...asynq.Option) (*asynq.Task, error) {
	if payload.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant_id is required")
	}
	if payload.DaysUntilExpiry < 0 {
		return nil, fmt.Errorf("days_until_expiry cannot be negative")
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report payload: %w", err)
	}

	return asynq.NewTask(TypeExpiringLotsReport, b, opts...), nil
}

// ParseExpiringReportPayload decodes a report task payload
func ParseExpiringReportPayload(t *asynq.Task) (ExpiringReportPayload, error) {
	var payload ExpiringReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return ExpiringReportPayload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.TenantID == uuid.Nil {
		return ExpiringReportPayload{}, fmt.Errorf("payload is missing tenant_id")
	}
	return payload, nil
}
