// Package storetest opens throwaway record stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/talentsync/internal/storage/sqlstore"
)

// NewSQLite opens a migrated SQLite store under t.TempDir and closes it on cleanup
func NewSQLite(tb testing.TB) *sqlstore.Store {
	tb.Helper()

	ctx := context.Background()
	s, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver: sqlstore.DriverSQLite,
		DSN:    filepath.Join(tb.TempDir(), "talentsync.db"),
	})
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = s.Close(ctx) })

	require.NoError(tb, s.Migrate(ctx))
	return s
}
