// internal/adapters/db/repository.go
package db

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ScanOne scans a single row, mapping pgx.ErrNoRows to (nil, nil)
func ScanOne[T any](row pgx.Row, scan func(pgx.Row) (T, error)) (*T, error) {
	entity, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// ScanAll drains rows into a slice and closes them
func ScanAll[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	var results []T
	for rows.Next() {
		entity, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// datePtr converts a nullable DATE column
func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
