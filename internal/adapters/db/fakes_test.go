package db_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier records the last statement and replays canned rows
type fakeQuerier struct {
	rows     [][]any
	rowErr   error
	queryErr error

	lastSQL  string
	lastArgs []any
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{values: f.rows, err: f.rowErr, idx: -1}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	if f.queryErr != nil {
		return fakeRow{err: f.queryErr}
	}
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: f.rows[0]}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	values [][]any
	err    error
	idx    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.idx+1 >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.values[r.idx], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.idx], nil
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: got %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Ptr {
			return errors.New("scan: destination must be a pointer")
		}
		target.Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// fakeBatchSender acknowledges each queued statement, failing at failAt (1-based)
type fakeBatchSender struct {
	batch  *pgx.Batch
	failAt int
}

func (f *fakeBatchSender) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	return &fakeBatchResults{failAt: f.failAt}
}

type fakeBatchResults struct {
	n      int
	failAt int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	r.n++
	if r.n == r.failAt {
		return pgconn.CommandTag{}, errors.New("duplicate key value")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return fakeRow{err: errors.New("not supported")} }
func (r *fakeBatchResults) Close() error             { return nil }
