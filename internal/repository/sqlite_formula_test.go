package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/wattson/internal/db"
	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/testutil"
)

func seedFormulas(t *testing.T, repo *SQLiteFormulaRepo) {
	t.Helper()
	require.NoError(t, repo.ReplaceAll(context.Background(), []domain.CatalogEntry{
		{ID: "F1", Name: "高炉工序能耗", Unit: "kgce/t", Position: 0},
		{ID: "F2", Name: "吨钢耗电", Unit: "kWh/t", Position: 1},
		{ID: "F3", Name: "焦化工序能耗", Unit: "kgce/t", Position: 2},
	}))
}

func TestFormulaRepo_ListAll_PositionOrder(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteFormulaRepo(database)
	seedFormulas(t, repo)

	entries, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "F1", entries[0].ID)
	assert.Equal(t, "F3", entries[2].ID)
	assert.Equal(t, "kWh/t", entries[1].Unit)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFormulaRepo_ReplaceAll_SwapsCatalog(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteFormulaRepo(database)
	seedFormulas(t, repo)

	err := repo.ReplaceAll(context.Background(), []domain.CatalogEntry{
		{ID: "F9", Name: "综合能耗", Position: 0},
	})
	require.NoError(t, err)

	entries, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "F9", entries[0].ID)
}

func TestFormulaRepo_ReplaceAll_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedFormulas(t, NewSQLiteFormulaRepo(database))

	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: boom}

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteFormulaRepo(tx).ReplaceAll(ctx, []domain.CatalogEntry{
			{ID: "F7", Name: "烧结工序能耗", Position: 0},
			{ID: "F8", Name: "轧钢工序能耗", Position: 1},
		})
	})
	require.ErrorIs(t, err, boom)

	// The delete and first insert must both have been rolled back.
	entries, listErr := NewSQLiteFormulaRepo(database).ListAll(context.Background())
	require.NoError(t, listErr)
	assert.Len(t, entries, 3, "old catalog should survive a failed import")
}
