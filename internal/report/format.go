// Package report renders aggregation results into the user-facing strings
// the conversational front end delivers verbatim.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"rashody/internal/core"
)

// Amount renders a float amount without trailing zeros: 1500 not 1500.00.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Summary renders the daily or monthly report: period header, total against
// the budget ceiling, then one line per non-zero category with its
// drill-down token.
func Summary(s core.Summary, currency string) string {
	header := "Расходы сегодня:"
	if s.Period == core.PeriodMonth {
		header = "Расходы в текущем месяце:"
	}
	lines := []string{
		header,
		fmt.Sprintf("всего — %s %s из %s.", Amount(s.Total), currency, Amount(s.Ceiling)),
	}
	if len(s.ByCategory) > 0 {
		lines = append(lines, "")
		for _, row := range s.ByCategory {
			lines = append(lines, fmt.Sprintf("%s %s | %s (/cat%d_%s)",
				Amount(row.Amount), currency, row.Name, row.CategoryID, s.Period.Tag()))
		}
	}
	if s.Period == core.PeriodToday {
		lines = append(lines, "", "За текущий месяц: /month")
	}
	return strings.Join(lines, "\n")
}

// CategoryDetail lists one category's in-window expenses, each with its
// deletion token.
func CategoryDetail(category string, period core.Period, expenses []core.Expense, currency string) string {
	when := "сегодня"
	if period == core.PeriodMonth {
		when = "в текущем месяце"
	}
	lines := []string{fmt.Sprintf("Расходы по категории «%s» %s:", category, when)}
	if len(expenses) == 0 {
		lines = append(lines, "", "Пока нет расходов.")
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "")
	for _, e := range expenses {
		lines = append(lines, fmt.Sprintf("%s %s | %s (/del%d)",
			Amount(e.Amount), currency, e.Created.UTC().Format("2006-01-02"), e.ID))
	}
	return strings.Join(lines, "\n")
}

// Categories lists every category with its alias names.
func Categories(cats []core.Category) string {
	if len(cats) == 0 {
		return "Категории трат пока не заведены."
	}
	items := make([]string, 0, len(cats))
	for _, c := range cats {
		item := c.Name
		if len(c.Aliases) > 0 {
			names := make([]string, 0, len(c.Aliases))
			for _, a := range c.Aliases {
				names = append(names, a.Name)
			}
			item += " (" + strings.Join(names, ", ") + ")"
		}
		items = append(items, item)
	}
	return "Категории трат:\n\n* " + strings.Join(items, "\n* ")
}

// Recent lists the latest recorded expenses, newest first, with deletion
// tokens.
func Recent(entries []core.RecentExpense, currency string) string {
	if len(entries) == 0 {
		return "Расходы ещё не заведены."
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s на %s — нажми /del%d для удаления",
			Amount(e.Amount), currency, e.CategoryName, e.ID))
	}
	return "Последние сохранённые траты:\n\n* " + strings.Join(lines, "\n* ")
}

// Recorded confirms a newly recorded expense.
func Recorded(amount float64, label, currency string) string {
	return fmt.Sprintf("Добавлены траты %s %s на %s.", Amount(amount), currency, label)
}
