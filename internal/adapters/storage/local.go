// internal/adapters/storage/local.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ammerola/lot-allocator/internal/core/ports"
)

// LocalStorage implements ports.ReportStore on the local filesystem.
// Used in development when no bucket is configured.
type LocalStorage struct {
	basePath string
	logger   *slog.Logger
}

var _ ports.ReportStore = (*LocalStorage)(nil)

// NewLocalStorage creates a new local storage client
func NewLocalStorage(basePath string, logger *slog.Logger) *LocalStorage {
	return &LocalStorage{
		basePath: basePath,
		logger:   logger.With(slog.String("storage", "local")),
	}
}

func (l *LocalStorage) path(key string) (string, error) {
	p := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return p, nil
}

// Upload writes data under basePath/key
func (l *LocalStorage) Upload(ctx context.Context, key string, data io.Reader, _ string) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, data)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	l.logger.InfoContext(ctx, "file stored",
		slog.String("path", p),
		slog.Int64("size", n))

	return p, nil
}

// PresignedURL returns a file URL; local files do not expire
func (l *LocalStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	return "file://" + filepath.ToSlash(p), nil
}
