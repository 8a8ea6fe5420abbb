package db

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations_Paired(t *testing.T) {
	ups, err := fs.Glob(Migrations, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(Migrations, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))

	src, err := EmbeddedSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestAppliedMigrations(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	query := regexp.QuoteMeta(`SELECT version, dirty FROM "public"."schema_migrations" ORDER BY version ASC`)

	t.Run("returns_rows_in_order", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows([]string{"version", "dirty"}).
				AddRow(int64(1), false).
				AddRow(int64(2), true),
		)

		applied, err := appliedMigrations(context.Background(), sqlDB, "public", "schema_migrations")
		require.NoError(t, err)
		assert.Equal(t, []AppliedMigration{{Version: 1}, {Version: 2, Dirty: true}}, applied)
	})

	t.Run("wraps_query_error", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnError(errors.New("relation does not exist"))

		_, err := appliedMigrations(context.Background(), sqlDB, "public", "schema_migrations")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query migrations")
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewMigrator_RequiresConfig(t *testing.T) {
	_, err := NewMigrator(nil, nil)
	assert.EqualError(t, err, "migration config is required")
}
