// internal/handlers/report_handler_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/lot-allocator/internal/handlers"
	"github.com/ammerola/lot-allocator/internal/workers"
	"github.com/ammerola/lot-allocator/test/helpers"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: workers.ReportQueue, Type: task.Type(), Payload: task.Payload()}, nil
}

type fakeInspector struct {
	info *asynq.TaskInfo
	err  error
}

func (f *fakeInspector) GetTaskInfo(_, _ string) (*asynq.TaskInfo, error) {
	return f.info, f.err
}

func TestReportHandler_QueueExpiringReport(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name           string
		query          string
		enqueueErr     error
		expectedStatus int
		expectedDays   int
	}{
		{name: "queues_with_default_window", expectedStatus: http.StatusAccepted, expectedDays: 30},
		{name: "queues_with_explicit_window", query: "?days=60", expectedStatus: http.StatusAccepted, expectedDays: 60},
		{name: "rejects_bad_days", query: "?days=x", expectedStatus: http.StatusBadRequest},
		{name: "duplicate_report", enqueueErr: asynq.ErrDuplicateTask, expectedStatus: http.StatusConflict},
		{name: "broker_failure", enqueueErr: errors.New("redis: connection refused"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enq := &fakeEnqueuer{err: tt.enqueueErr}
			handler := handlers.NewReportHandler(enq, &fakeInspector{}, 30, helpers.TestLogger())

			req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/lots/expiring/report"+tt.query, nil), tenantID)
			w := httptest.NewRecorder()

			handler.QueueExpiringReport(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusAccepted {
				return
			}

			require.Len(t, enq.tasks, 1)
			payload, err := workers.ParseExpiringReportPayload(enq.tasks[0])
			require.NoError(t, err)
			assert.Equal(t, tenantID, payload.TenantID)
			assert.Equal(t, tt.expectedDays, payload.DaysUntilExpiry)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "task-1", resp["job_id"])
			assert.Equal(t, "queued", resp["status"])
		})
	}
}

func TestReportHandler_JobStatus(t *testing.T) {
	tenantID := uuid.New()

	payload := func(tenant uuid.UUID) []byte {
		b, _ := json.Marshal(workers.ExpiringReportPayload{TenantID: tenant, DaysUntilExpiry: 30})
		return b
	}
	completedAt := time.Date(2024, 3, 10, 6, 0, 5, 0, time.UTC)

	tests := []struct {
		name           string
		inspector      *fakeInspector
		expectedStatus int
		validate       func(*testing.T, handlers.JobStatus)
	}{
		{
			name: "completed_job_with_result",
			inspector: &fakeInspector{info: &asynq.TaskInfo{
				ID:          "task-1",
				Queue:       workers.ReportQueue,
				Type:        workers.TypeExpiringLotsReport,
				Payload:     payload(tenantID),
				State:       asynq.TaskStateCompleted,
				MaxRetry:    3,
				CompletedAt: completedAt,
				Result:      []byte(`{"object_key":"reports/x.xlsx","lot_count":2}`),
			}},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, s handlers.JobStatus) {
				assert.Equal(t, "completed", s.State)
				require.NotNil(t, s.CompletedAt)
				assert.True(t, completedAt.Equal(*s.CompletedAt))
				assert.JSONEq(t, `{"object_key":"reports/x.xlsx","lot_count":2}`, string(s.Result))
				assert.Nil(t, s.NextProcessAt)
			},
		},
		{
			name: "retrying_job",
			inspector: &fakeInspector{info: &asynq.TaskInfo{
				ID:            "task-1",
				Queue:         workers.ReportQueue,
				Type:          workers.TypeExpiringLotsReport,
				Payload:       payload(tenantID),
				State:         asynq.TaskStateRetry,
				Retried:       1,
				LastErr:       "failed to upload report: access denied",
				NextProcessAt: completedAt,
			}},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, s handlers.JobStatus) {
				assert.Equal(t, "retry", s.State)
				assert.Equal(t, 1, s.Retried)
				assert.Contains(t, s.LastError, "access denied")
				assert.Empty(t, s.Result)
			},
		},
		{
			name: "other_tenants_job_is_hidden",
			inspector: &fakeInspector{info: &asynq.TaskInfo{
				ID:      "task-1",
				Type:    workers.TypeExpiringLotsReport,
				Payload: payload(uuid.New()),
			}},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown_job",
			inspector:      &fakeInspector{err: asynq.ErrTaskNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "inspector_failure",
			inspector:      &fakeInspector{err: errors.New("redis timeout")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewReportHandler(&fakeEnqueuer{}, tt.inspector, 30, helpers.TestLogger())

			req := withTenant(httptest.NewRequest(http.MethodGet, "/api/v1/jobs/task-1", nil), tenantID)
			req.SetPathValue("id", "task-1")
			w := httptest.NewRecorder()

			handler.JobStatus(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				var status handlers.JobStatus
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
				tt.validate(t, status)
			}
		})
	}
}
