package prefs_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-dayreport/internal/models"
	"ms-dayreport/internal/prefs"
	"ms-dayreport/internal/report"
)

func setupTestStore(t *testing.T) *prefs.Store {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.ColumnPref)(nil)))

	return prefs.NewStore(bunDB)
}

func TestVisibleColumns_DefaultsForUnknownUser(t *testing.T) {
	store := setupTestStore(t)

	columns, err := store.VisibleColumns(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, report.DefaultColumns(), columns)
}

func TestSaveVisibleColumns_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.SaveVisibleColumns(ctx, "admin-1", []string{"event", "tickets"})
	require.NoError(t, err)

	columns, err := store.VisibleColumns(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"event", "tickets"}, columns)
}

func TestSaveVisibleColumns_OverwritesWholesale(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVisibleColumns(ctx, "admin-1", []string{"event", "tickets", "email"}))
	require.NoError(t, store.SaveVisibleColumns(ctx, "admin-1", []string{"status"}))

	columns, err := store.VisibleColumns(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, columns)
}

func TestSaveVisibleColumns_UsersAreIndependent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVisibleColumns(ctx, "admin-1", []string{"event"}))
	require.NoError(t, store.SaveVisibleColumns(ctx, "admin-2", []string{"phone", "status"}))

	columns1, err := store.VisibleColumns(ctx, "admin-1")
	require.NoError(t, err)
	columns2, err := store.VisibleColumns(ctx, "admin-2")
	require.NoError(t, err)

	assert.Equal(t, []string{"event"}, columns1)
	assert.Equal(t, []string{"phone", "status"}, columns2)
}

func TestSaveVisibleColumns_EmptySetPersists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVisibleColumns(ctx, "admin-1", []string{}))

	columns, err := store.VisibleColumns(ctx, "admin-1")
	require.NoError(t, err)
	assert.Empty(t, columns)
}
