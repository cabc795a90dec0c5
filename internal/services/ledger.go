// Package services orchestrates the ledger operations: recording an expense
// (parse, resolve, persist, publish) and producing the report surfaces the
// front end delivers.
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"rashody/internal/core"
	"rashody/internal/report"
	"rashody/internal/storage"
)

// EventPublisher publishes ledger events for downstream consumers. A nil
// publisher disables publishing without disabling the ledger.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, e *core.Expense) error
	PublishExpenseDeleted(ctx context.Context, id int64) error
}

type Ledger struct {
	repo        *storage.Repository
	events      EventPublisher
	currency    string
	recentLimit int
	now         func() time.Time
}

func NewLedger(repo *storage.Repository, events EventPublisher, currency string, recentLimit int) *Ledger {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Ledger{
		repo:        repo,
		events:      events,
		currency:    currency,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// RecordExpense turns one raw text line into a persisted expense: parse the
// line, resolve the label to a category, create the row, then publish an
// expense.recorded event. A failed publish is logged, not surfaced — the
// expense is already committed.
func (l *Ledger) RecordExpense(ctx context.Context, text string) (*core.Expense, string, error) {
	entry, err := core.ParseEntry(text)
	if err != nil {
		return nil, "", err
	}

	categoryID, err := l.repo.ResolveCategory(ctx, entry.CategoryLabel)
	if err != nil {
		return nil, "", err
	}

	e, err := l.repo.CreateExpense(ctx, entry.Amount, categoryID, l.now())
	if err != nil {
		return nil, "", err
	}

	if l.events != nil {
		if err := l.events.PublishExpenseRecorded(ctx, e); err != nil {
			slog.ErrorContext(ctx, "publish expense.recorded failed", "id", e.ID, "error", err)
		}
	}
	return e, entry.CategoryLabel, nil
}

// RecordedReply builds the confirmation the submitter sees: the recorded
// entry plus a refreshed today report.
func (l *Ledger) RecordedReply(ctx context.Context, e *core.Expense, label string) (string, error) {
	today, err := l.Report(ctx, core.PeriodToday)
	if err != nil {
		return "", err
	}
	return report.Recorded(e.Amount, label, l.currency) + "\n\n" + today, nil
}

// Report renders the aggregated report for the period, against the budget
// daily limit (zero when no budget row exists).
func (l *Ledger) Report(ctx context.Context, period core.Period) (string, error) {
	sum, err := l.summarize(ctx, period)
	if err != nil {
		return "", err
	}
	return report.Summary(sum, l.currency), nil
}

func (l *Ledger) summarize(ctx context.Context, period core.Period) (core.Summary, error) {
	cats, err := l.repo.Categories(ctx, storage.LoadExpenses)
	if err != nil {
		return core.Summary{}, err
	}
	var limit float64
	if budget, err := l.repo.Budget(ctx); err != nil {
		return core.Summary{}, err
	} else if budget != nil {
		limit = budget.DailyLimit
	}
	return core.Summarize(l.now(), period, cats, limit), nil
}

// CategoryDetail renders one category's in-window expenses. found is false
// when the category does not exist; that is not an error.
func (l *Ledger) CategoryDetail(ctx context.Context, categoryID int64, period core.Period) (string, bool, error) {
	cat, err := l.repo.CategoryByID(ctx, categoryID, storage.LoadExpenses)
	if err != nil {
		return "", false, err
	}
	if cat == nil {
		return "", false, nil
	}
	in := core.WindowExpenses(l.now(), period, cat.Expenses)
	return report.CategoryDetail(cat.Name, period, in, l.currency), true, nil
}

// DeleteExpense removes the expense if it exists; deleting an unknown id is
// a no-op. Publishes expense.deleted on success.
func (l *Ledger) DeleteExpense(ctx context.Context, id int64) error {
	if err := l.repo.DeleteExpenseByID(ctx, id); err != nil {
		return err
	}
	if l.events != nil {
		if err := l.events.PublishExpenseDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "publish expense.deleted failed", "id", id, "error", err)
		}
	}
	return nil
}

// ListCategories returns every category with its aliases, ordered by id.
func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	return l.repo.Categories(ctx, storage.LoadAliases)
}

// CategoriesReport renders the categories list for the front end.
func (l *Ledger) CategoriesReport(ctx context.Context) (string, error) {
	cats, err := l.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	return report.Categories(cats), nil
}

// RecentExpenses returns the latest recorded expenses, newest first.
func (l *Ledger) RecentExpenses(ctx context.Context) ([]core.RecentExpense, error) {
	return l.repo.RecentExpenses(ctx, l.recentLimit)
}

// RecentReport renders the recent-expenses list for the front end.
func (l *Ledger) RecentReport(ctx context.Context) (string, error) {
	entries, err := l.RecentExpenses(ctx)
	if err != nil {
		return "", err
	}
	return report.Recent(entries, l.currency), nil
}

// CreateCategory creates a category with optional aliases. Administrative:
// names are normalized the same way entry labels are, so the resolver's
// exact-match lookups stay consistent.
func (l *Ledger) CreateCategory(ctx context.Context, name string, aliases []string) (*core.Category, error) {
	cat, err := l.repo.CreateCategory(ctx, normalizeLabel(name))
	if err != nil {
		return nil, err
	}
	for _, alias := range aliases {
		a, err := l.repo.CreateAlias(ctx, normalizeLabel(alias), cat.ID)
		if err != nil {
			return nil, err
		}
		cat.Aliases = append(cat.Aliases, *a)
	}
	return cat, nil
}

// SetBudget upserts the single budget record.
func (l *Ledger) SetBudget(ctx context.Context, name string, dailyLimit float64) (*core.Budget, error) {
	return l.repo.SetBudget(ctx, strings.TrimSpace(name), dailyLimit)
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
