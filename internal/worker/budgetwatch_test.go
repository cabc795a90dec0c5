package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rashody/internal/amqp"
	"rashody/internal/storage"
)

func newTestWatcher(t *testing.T) (*BudgetWatcher, *storage.Repository) {
	t.Helper()
	repo, err := storage.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewBudgetWatcher(repo), repo
}

func TestBudgetWatcher_CheckToday_NoBudget(t *testing.T) {
	w, repo := newTestWatcher(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, "такси")
	require.NoError(t, err)
	_, err = repo.CreateExpense(ctx, 250, cat.ID, time.Now())
	require.NoError(t, err)

	status, err := w.CheckToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250.0, status.Total)
	assert.Zero(t, status.Limit)
	assert.False(t, status.Exceeded, "a zero limit can never be exceeded")
}

func TestBudgetWatcher_CheckToday_Exceeded(t *testing.T) {
	w, repo := newTestWatcher(t)
	ctx := context.Background()

	_, err := repo.SetBudget(ctx, "base", 100)
	require.NoError(t, err)
	cat, err := repo.CreateCategory(ctx, "такси")
	require.NoError(t, err)
	_, err = repo.CreateExpense(ctx, 150, cat.ID, time.Now())
	require.NoError(t, err)

	status, err := w.CheckToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150.0, status.Total)
	assert.Equal(t, 100.0, status.Limit)
	assert.True(t, status.Exceeded)
}

func TestBudgetWatcher_CheckToday_IgnoresOldExpenses(t *testing.T) {
	w, repo := newTestWatcher(t)
	ctx := context.Background()

	_, err := repo.SetBudget(ctx, "base", 100)
	require.NoError(t, err)
	cat, err := repo.CreateCategory(ctx, "такси")
	require.NoError(t, err)
	_, err = repo.CreateExpense(ctx, 500, cat.ID, time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)

	status, err := w.CheckToday(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Total)
	assert.False(t, status.Exceeded)
}

func TestBudgetWatcher_Handle(t *testing.T) {
	w, repo := newTestWatcher(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, "такси")
	require.NoError(t, err)
	e, err := repo.CreateExpense(ctx, 250, cat.ID, time.Now())
	require.NoError(t, err)

	require.NoError(t, w.Handle(ctx, amqp.NewExpenseRecorded(e)))
	require.NoError(t, w.Handle(ctx, amqp.NewExpenseDeleted(e.ID)))
	require.NoError(t, w.Handle(ctx, &amqp.Event{Type: "unknown.event"}))
}
