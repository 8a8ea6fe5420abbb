// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/lot-allocator/internal/core/ports"
	"github.com/ammerola/lot-allocator/internal/pkg/config"
)

// Health states
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// QueueInspector is the part of *asynq.Inspector used for queue health
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        ports.Database
	redis     redis.UniversalClient
	asynq     QueueInspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. The inspector may be nil.
func NewHealthHandler(
	database ports.Database,
	redisClient redis.UniversalClient,
	asynqInspector QueueInspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        database,
		redis:     redisClient,
		asynq:     asynqInspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// HealthStatus represents the health status of the application
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Timezone    string                 `json:"allocation_timezone"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	System      SystemInfo             `json:"system"`
}

// ServiceInfo represents the status of a service dependency
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo represents system-level information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	NumGC         uint32 `json:"num_gc"`
}

type dependencyCheck struct {
	name  string
	check func(context.Context, map[string]interface{}) error
}

func (h *HealthHandler) checks() []dependencyCheck {
	checks := []dependencyCheck{
		{name: "database", check: h.checkDatabase},
		{name: "redis", check: h.checkRedis},
	}
	if h.asynq != nil {
		checks = append(checks, dependencyCheck{name: "asynq", check: h.checkAsynq})
	}
	return checks
}

// Health handles the /health endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	timezone := h.config.Allocation.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	health := HealthStatus{
		Status:      StatusHealthy,
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Timezone:    timezone,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Services:    make(map[string]ServiceInfo),
		System:      systemInfo(),
	}

	for _, c := range h.checks() {
		info := h.run(ctx, c)
		health.Services[c.name] = info
		if info.Status != StatusHealthy {
			health.Status = StatusDegraded
		}
	}

	statusCode := http.StatusOK
	if health.Status != StatusHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	h.write(ctx, w, statusCode, health)
}

// Liveness handles the /health/live endpoint. It touches no dependency.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	h.write(r.Context(), w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readiness handles the /health/ready endpoint
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string)

	if err := h.db.Ping(ctx); err != nil {
		ready = false
		details["database"] = "not ready"
	} else {
		details["database"] = "ready"
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		ready = false
		details["redis"] = "not ready"
	} else {
		details["redis"] = "ready"
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	h.write(ctx, w, statusCode, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

func (h *HealthHandler) run(ctx context.Context, c dependencyCheck) ServiceInfo {
	start := time.Now()
	info := ServiceInfo{
		Status:  StatusHealthy,
		Details: make(map[string]interface{}),
	}

	if err := c.check(ctx, info.Details); err != nil {
		h.logger.ErrorContext(ctx, c.name+" health check failed",
			slog.String("error", err.Error()))
		return ServiceInfo{Status: StatusUnhealthy, Message: err.Error()}
	}

	info.ResponseTime = time.Since(start).String()
	return info
}

func (h *HealthHandler) checkDatabase(ctx context.Context, details map[string]interface{}) error {
	if err := h.db.Ping(ctx); err != nil {
		return err
	}
	for k, v := range h.db.Health(ctx) {
		details[k] = v
	}
	return nil
}

func (h *HealthHandler) checkRedis(ctx context.Context, details map[string]interface{}) error {
	pong, err := h.redis.Ping(ctx).Result()
	if err != nil {
		return err
	}
	details["ping"] = pong

	if poolStats := h.redis.PoolStats(); poolStats != nil {
		details["total_conns"] = poolStats.TotalConns
		details["idle_conns"] = poolStats.IdleConns
		details["stale_conns"] = poolStats.StaleConns
	}
	return nil
}

func (h *HealthHandler) checkAsynq(_ context.Context, details map[string]interface{}) error {
	queues, err := h.asynq.Queues()
	if err != nil {
		return err
	}

	queueStats := make(map[string]interface{})
	for _, queue := range queues {
		qInfo, err := h.asynq.GetQueueInfo(queue)
		if err != nil {
			continue
		}
		queueStats[queue] = map[string]interface{}{
			"size":      qInfo.Size,
			"active":    qInfo.Active,
			"pending":   qInfo.Pending,
			"scheduled": qInfo.Scheduled,
			"retry":     qInfo.Retry,
			"archived":  qInfo.Archived,
			"completed": qInfo.Completed,
		}
	}
	details["queues"] = queueStats
	return nil
}

func (h *HealthHandler) write(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}

func systemInfo() SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAllocMB: memStats.Alloc / 1024 / 1024,
		NumGC:         memStats.NumGC,
	}
}
