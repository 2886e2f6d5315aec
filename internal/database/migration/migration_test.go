package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentinel = "SELECT to_regclass('public.batches') IS NOT NULL"

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when table exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		var buf bytes.Buffer
		require.NoError(t, EnsureMigrated(ctx, db, zerolog.New(&buf), "db"))
		assert.Contains(t, buf.String(), "db_migration_skip")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs every step", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS batches").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_batches_created_at").WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, EnsureMigrated(ctx, db, zerolog.Nop(), "db"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS batches").WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, zerolog.Nop(), "db")
		assert.EqualError(t, err, "migration step create_table_batches failed: permission denied")
	})

	t.Run("sentinel failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).WillReturnError(errors.New("conn refused"))

		err = EnsureMigrated(ctx, db, zerolog.Nop(), "db")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}
