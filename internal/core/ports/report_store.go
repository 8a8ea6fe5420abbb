// internal/core/ports/report_store.go
package ports

import (
	"context"
	"io"
	"time"
)

// ReportStore persists generated report files
type ReportStore interface {
	// Upload stores data under key and returns its location
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	// PresignedURL returns a time-limited download link for key
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
