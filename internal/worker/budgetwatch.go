// Package worker watches recorded expenses against the static daily budget
// limit.
package worker

import (
	"context"
	"log/slog"
	"time"

	"rashody/internal/amqp"
	"rashody/internal/core"
	"rashody/internal/storage"
)

// BudgetWatcher consumes ledger events and warns when today's total passes
// the budget daily limit.
type BudgetWatcher struct {
	repo *storage.Repository
	now  func() time.Time
}

func NewBudgetWatcher(repo *storage.Repository) *BudgetWatcher {
	return &BudgetWatcher{repo: repo, now: time.Now}
}

// Status is the outcome of one budget check.
type Status struct {
	Total    float64
	Limit    float64
	Exceeded bool
}

// CheckToday aggregates today's spending and compares it against the budget
// daily limit. Without a budget row the limit is zero and nothing is ever
// exceeded.
func (w *BudgetWatcher) CheckToday(ctx context.Context) (Status, error) {
	cats, err := w.repo.Categories(ctx, storage.LoadExpenses)
	if err != nil {
		return Status{}, err
	}
	var limit float64
	if budget, err := w.repo.Budget(ctx); err != nil {
		return Status{}, err
	} else if budget != nil {
		limit = budget.DailyLimit
	}
	sum := core.Summarize(w.now(), core.PeriodToday, cats, limit)
	return Status{
		Total:    sum.Total,
		Limit:    limit,
		Exceeded: limit > 0 && sum.Total > limit,
	}, nil
}

// Handle processes one ledger event. Recorded expenses trigger a budget
// check; deletions are only logged.
func (w *BudgetWatcher) Handle(ctx context.Context, ev *amqp.Event) error {
	switch ev.Type {
	case amqp.TypeExpenseRecorded:
		status, err := w.CheckToday(ctx)
		if err != nil {
			return err
		}
		if status.Exceeded {
			slog.WarnContext(ctx, "daily budget limit exceeded",
				"total", status.Total,
				"limit", status.Limit,
				"expense_id", ev.ExpenseID)
		} else {
			slog.InfoContext(ctx, "expense recorded within budget",
				"total", status.Total,
				"limit", status.Limit,
				"expense_id", ev.ExpenseID)
		}
	case amqp.TypeExpenseDeleted:
		slog.InfoContext(ctx, "expense deleted", "expense_id", ev.ExpenseID)
	default:
		slog.WarnContext(ctx, "ignoring unknown event type", "type", ev.Type)
	}
	return nil
}
