// internal/handlers/report.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/lot-allocator/internal/workers"
)

// TaskEnqueuer is the part of *asynq.Client the report handler needs
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is the part of *asynq.Inspector the report handler needs
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

// ReportHandler queues expiring-lot reports and reports on their progress
type ReportHandler struct {
	client      TaskEnqueuer
	inspector   TaskInspector
	defaultDays int
	logger      *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(client TaskEnqueuer, inspector TaskInspector, defaultDays int, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		client:      client,
		inspector:   inspector,
		defaultDays: defaultDays,
		logger:      logger.With(slog.String("handler", "report")),
	}
}

// JobStatus describes a queued report task
type JobStatus struct {
	JobID         string          `json:"job_id"`
	Type          string          `json:"type"`
	Queue         string          `json:"queue"`
	State         string          `json:"state"`
	Retried       int             `json:"retried"`
	MaxRetry      int             `json:"max_retry"`
	LastError     string          `json:"last_error,omitempty"`
	NextProcessAt *time.Time      `json:"next_process_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
}

// QueueExpiringReport handles POST /api/v1/lots/expiring/report
func (h *ReportHandler) QueueExpiringReport(w http.ResponseWriter, r *http.Request) {
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

	task, err := workers.NewExpiringReportTask(workers.ExpiringReportPayload{
		TenantID:        tenantID,
		DaysUntilExpiry: days,
	})
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.client.EnqueueContext(ctx, task,
		asynq.Queue(workers.ReportQueue),
		asynq.MaxRetry(3),
		asynq.Unique(10*time.Minute),
		asynq.Retention(24*time.Hour))
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			respondError(ctx, w, http.StatusConflict, "An identical report is already queued")
			return
		}
		h.logger.ErrorContext(ctx, "failed to enqueue task", slog.String("error", err.Error()))
		respondError(ctx, w, http.StatusInternalServerError, "Failed to queue report job")
		return
	}

	h.logger.InfoContext(ctx, "expiring lot report queued",
		slog.String("task_id", info.ID),
		slog.Int("days_until_expiry", days))

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  info.ID,
		"queue":   info.Queue,
		"status":  "queued",
		"message": "Expiring lot report has been queued for processing",
	})
}

// JobStatus handles GET /api/v1/jobs/{id}
func (h *ReportHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("id")

	tenantID, ok := tenantFromRequest(r)
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "Tenant is required")
		return
	}

	info, err := h.inspector.GetTaskInfo(workers.ReportQueue, jobID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(ctx, w, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	// Jobs belonging to another tenant are reported as missing.
	payload, err := workers.ParseExpiringReportPayload(asynq.NewTask(info.Type, info.Payload))
	if err != nil || payload.TenantID != tenantID {
		respondError(ctx, w, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, toJobStatus(info))
}

func toJobStatus(info *asynq.TaskInfo) JobStatus {
	status := JobStatus{
		JobID:     info.ID,
		Type:      info.Type,
		Queue:     info.Queue,
		State:     info.State.String(),
		Retried:   info.Retried,
		MaxRetry:  info.MaxRetry,
		LastError: info.LastErr,
	}
	if !info.NextProcessAt.IsZero() {
		next := info.NextProcessAt
		status.NextProcessAt = &next
	}
	if !info.CompletedAt.IsZero() {
		done := info.CompletedAt
		status.CompletedAt = &done
	}
	if len(info.Result) > 0 && json.Valid(info.Result) {
		status.Result = info.Result
	}
	return status
}
