// internal/core/ports/database.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Querier is the read surface the repositories need. *db.Database and
// pgx transactions both satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Database defines the port for database operations used by health checks
// and the repositories.
type Database interface {
	Querier
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
	Close()
}
