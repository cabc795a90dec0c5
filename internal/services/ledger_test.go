package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rashody/internal/core"
	"rashody/internal/storage"
)

func newTestLedger(t *testing.T) (*Ledger, *storage.Repository) {
	t.Helper()
	repo, err := storage.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	l := NewLedger(repo, nil, "руб", 10)
	l.now = func() time.Time { return time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC) }
	return l, repo
}

func seedTaxi(t *testing.T, repo *storage.Repository) *core.Category {
	t.Helper()
	ctx := context.Background()
	cat, err := repo.CreateCategory(ctx, "taxi")
	require.NoError(t, err)
	_, err = repo.CreateAlias(ctx, "такси", cat.ID)
	require.NoError(t, err)
	return cat
}

func TestLedger_RecordExpense_RoundTrip(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	taxi := seedTaxi(t, repo)

	e, label, err := l.RecordExpense(ctx, "250 такси")
	require.NoError(t, err)
	assert.Equal(t, 250.0, e.Amount)
	assert.Equal(t, taxi.ID, e.CategoryID)
	assert.Equal(t, "такси", label)

	detail, found, err := l.CategoryDetail(ctx, taxi.ID, core.PeriodToday)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, detail, "250 руб")
	assert.Contains(t, detail, "2026-09-15")
	assert.Contains(t, detail, "/del")
}

func TestLedger_RecordExpense_Malformed(t *testing.T) {
	l, _ := newTestLedger(t)

	_, _, err := l.RecordExpense(context.Background(), "не число")
	var malformed *core.MalformedEntryError
	require.ErrorAs(t, err, &malformed)
}

func TestLedger_RecordExpense_UnknownCategory(t *testing.T) {
	l, repo := newTestLedger(t)
	seedTaxi(t, repo)

	_, _, err := l.RecordExpense(context.Background(), "250 самолёт")
	var unknown *core.UnknownCategoryError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "самолёт", unknown.Label)
}

func TestLedger_Report_Idempotent(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	seedTaxi(t, repo)

	_, _, err := l.RecordExpense(ctx, "250 такси")
	require.NoError(t, err)
	_, _, err = l.RecordExpense(ctx, "100 taxi")
	require.NoError(t, err)

	first, err := l.Report(ctx, core.PeriodToday)
	require.NoError(t, err)
	second, err := l.Report(ctx, core.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated reads without writes must match exactly")
	assert.Contains(t, first, "всего — 350 руб")
}

func TestLedger_Report_WithBudget(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	seedTaxi(t, repo)
	_, err := repo.SetBudget(ctx, "base", 500)
	require.NoError(t, err)

	today, err := l.Report(ctx, core.PeriodToday)
	require.NoError(t, err)
	assert.Contains(t, today, "из 500")

	// daily limit × day-of-month (the 15th)
	month, err := l.Report(ctx, core.PeriodMonth)
	require.NoError(t, err)
	assert.Contains(t, month, "из 7500")
}

func TestLedger_DeleteExpense(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	seedTaxi(t, repo)

	e, _, err := l.RecordExpense(ctx, "250 такси")
	require.NoError(t, err)

	before, err := l.Report(ctx, core.PeriodToday)
	require.NoError(t, err)
	assert.Contains(t, before, "250")

	require.NoError(t, l.DeleteExpense(ctx, e.ID))

	after, err := l.Report(ctx, core.PeriodToday)
	require.NoError(t, err)
	assert.Contains(t, after, "всего — 0 руб")

	// idempotent
	require.NoError(t, l.DeleteExpense(ctx, e.ID))
}

func TestLedger_CategoryDetail_Absent(t *testing.T) {
	l, _ := newTestLedger(t)

	_, found, err := l.CategoryDetail(context.Background(), 999, core.PeriodToday)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLedger_RecordedReply(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	seedTaxi(t, repo)

	e, label, err := l.RecordExpense(ctx, "250 такси")
	require.NoError(t, err)

	reply, err := l.RecordedReply(ctx, e, label)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Добавлены траты 250 руб на такси."))
	assert.Contains(t, reply, "Расходы сегодня:")
}

func TestLedger_CreateCategory_Normalizes(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	cat, err := l.CreateCategory(ctx, " Такси ", []string{" Кэб "})
	require.NoError(t, err)
	assert.Equal(t, "такси", cat.Name)
	require.Len(t, cat.Aliases, 1)
	assert.Equal(t, "кэб", cat.Aliases[0].Name)

	// both normalized forms resolve
	_, _, err = l.RecordExpense(ctx, "10 такси")
	require.NoError(t, err)
	_, _, err = l.RecordExpense(ctx, "10 КЭБ")
	require.NoError(t, err)
}

func TestLedger_RecentReport(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	seedTaxi(t, repo)

	_, _, err := l.RecordExpense(ctx, "250 такси")
	require.NoError(t, err)

	recent, err := l.RecentReport(ctx)
	require.NoError(t, err)
	assert.Contains(t, recent, "Последние сохранённые траты:")
	assert.Contains(t, recent, "250 руб на taxi")
}

func TestLedger_CategoriesReport(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	seedTaxi(t, repo)

	text, err := l.CategoriesReport(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "* taxi (такси)")
}
