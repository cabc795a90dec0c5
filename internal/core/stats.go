package core

import "time"

// Period selects the aggregation window: the current UTC calendar day or the
// current UTC calendar month.
type Period string

const (
	PeriodToday Period = "today"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts both the long period names and the short tags used in
// drill-down tokens ("d", "m").
func ParsePeriod(s string) (Period, bool) {
	switch s {
	case "today", "d":
		return PeriodToday, true
	case "month", "m":
		return PeriodMonth, true
	}
	return "", false
}

// Tag returns the short period marker embedded in report reference tokens.
func (p Period) Tag() string {
	if p == PeriodMonth {
		return "m"
	}
	return "d"
}

// Start returns the window boundary for p relative to now: the start of the
// current UTC day, or the first day of the current UTC month.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	if p == PeriodMonth {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

type (
	// CategoryTotal is one breakdown row: the in-window sum for a category.
	CategoryTotal struct {
		CategoryID int64
		Name       string
		Amount     float64
	}

	// Summary is the result of aggregating a window: the overall total, the
	// per-category breakdown ordered by category id, and the budget ceiling
	// the total is compared against.
	Summary struct {
		Period     Period
		Total      float64
		ByCategory []CategoryTotal
		Ceiling    float64
	}
)

// Summarize aggregates the given categories over the period's window.
// Categories must carry their expenses (eager-loaded) and arrive ordered by
// id; the breakdown preserves that order. Categories whose in-window sum is
// zero are left out of the breakdown. dailyLimit is the budget's static
// daily limit, zero when no budget row exists.
func Summarize(now time.Time, period Period, categories []Category, dailyLimit float64) Summary {
	s := Summary{Period: period, Ceiling: Ceiling(now, period, dailyLimit)}
	for _, c := range categories {
		var sum float64
		for _, e := range WindowExpenses(now, period, c.Expenses) {
			sum += e.Amount
		}
		if sum == 0 {
			continue
		}
		s.ByCategory = append(s.ByCategory, CategoryTotal{CategoryID: c.ID, Name: c.Name, Amount: sum})
		s.Total += sum
	}
	return s
}

// WindowExpenses returns the expenses whose creation date (UTC, truncated to
// day) falls on or after the period's window boundary.
func WindowExpenses(now time.Time, period Period, expenses []Expense) []Expense {
	start := period.Start(now)
	var in []Expense
	for _, e := range expenses {
		c := e.Created.UTC()
		day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, time.UTC)
		if !day.Before(start) {
			in = append(in, e)
		}
	}
	return in
}

// Ceiling returns the budget ceiling for the window: the flat daily limit
// for today, and the daily limit multiplied by the current day-of-month for
// the month window. The month formula is an accrued-so-far approximation,
// kept as-is.
func Ceiling(now time.Time, period Period, dailyLimit float64) float64 {
	if period == PeriodMonth {
		return dailyLimit * float64(now.UTC().Day())
	}
	return dailyLimit
}
