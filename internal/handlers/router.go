// internal/handlers/router.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/lot-allocator/internal/handlers/middleware"
	"github.com/ammerola/lot-allocator/internal/pkg/config"
)

// Router groups the handlers served by the API
type Router struct {
	Allocation *AllocationHandler
	Export     *ExportHandler
	Report     *ReportHandler
	Health     *HealthHandler
}

// Handler builds the routed and middleware-wrapped HTTP handler
func (rt *Router) Handler(cfg *config.Config, logger *slog.Logger) http.Handler {
	apiV1 := "/api/v1"

	// Tenant-scoped API
	api := http.NewServeMux()
	api.HandleFunc("POST "+apiV1+"/allocations", rt.Allocation.Allocate)
	api.HandleFunc("POST "+apiV1+"/allocations/export", rt.Export.ExportAllocation)
	api.HandleFunc("GET "+apiV1+"/lots/expiring", rt.Allocation.ListExpiring)
	api.HandleFunc("GET "+apiV1+"/lots/expiring/export", rt.Export.ExportExpiring)
	api.HandleFunc("POST "+apiV1+"/lots/expiring/report", rt.Report.QueueExpiringReport)
	api.HandleFunc("GET "+apiV1+"/jobs/{id}", rt.Report.JobStatus)

	var apiHandler http.Handler = api
	apiHandler = middleware.Tenant(cfg.Security.TenantHeader)(apiHandler)
	if cfg.Server.RequestTimeout > 0 {
		apiHandler = middleware.Timeout(cfg.Server.RequestTimeout)(apiHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(apiV1+"/", apiHandler)
	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /health/live", rt.Health.Liveness)
		mux.HandleFunc("GET /health/ready", rt.Health.Readiness)
	}

	slow := cfg.Server.RequestTimeout / 2
	if slow <= 0 {
		slow = time.Second
	}

	// Applied innermost first
	var handler http.Handler = mux
	handler = middleware.Compression(handler)
	handler = middleware.Logger(logger, slow)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(cfg.Security.RequestIDHeader)(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins,
			cfg.Security.TenantHeader, cfg.Security.RequestIDHeader)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return handler
}
