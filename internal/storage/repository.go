// Package storage implements the ledger store on SQLite. Every public
// operation runs inside its own transaction: committed on success, rolled
// back and translated into *core.StorageError on any driver failure. Lookups
// that find nothing return nil without an error.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rashody/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// table binds an entity type to its SQL table at compile time. The shared
// CRUD helpers below are parameterized over it, so every entity kind goes
// through the same contract without reflection.
type table[T any] struct {
	name    string
	columns string
	scan    func(scanner) (T, error)
}

var expenseTable = table[core.Expense]{
	name:    "expense",
	columns: "id, amount, created, category_id",
	scan: func(s scanner) (core.Expense, error) {
		var e core.Expense
		err := s.Scan(&e.ID, &e.Amount, &e.Created, &e.CategoryID)
		return e, err
	},
}

var categoryTable = table[core.Category]{
	name:    "category",
	columns: "id, name",
	scan: func(s scanner) (core.Category, error) {
		var c core.Category
		err := s.Scan(&c.ID, &c.Name)
		return c, err
	},
}

var aliasTable = table[core.Alias]{
	name:    "aliases",
	columns: "id, name, category_id",
	scan: func(s scanner) (core.Alias, error) {
		var a core.Alias
		err := s.Scan(&a.ID, &a.Name, &a.CategoryID)
		return a, err
	},
}

var budgetTable = table[core.Budget]{
	name:    "budget",
	columns: "id, name, daily_limit",
	scan: func(s scanner) (core.Budget, error) {
		var b core.Budget
		err := s.Scan(&b.ID, &b.Name, &b.DailyLimit)
		return b, err
	},
}

func getByID[T any](ctx context.Context, q querier, tb table[T], id int64) (*T, error) {
	return getOne(ctx, q, tb, "id = ?", id)
}

func getByName[T any](ctx context.Context, q querier, tb table[T], name string) (*T, error) {
	return getOne(ctx, q, tb, "name = ?", name)
}

func getOne[T any](ctx context.Context, q querier, tb table[T], where string, args ...any) (*T, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE %s", tb.columns, tb.name, where), args...)
	v, err := tb.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// listWhere returns all rows matching the optional filter, ordered by id.
func listWhere[T any](ctx context.Context, q querier, tb table[T], where string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", tb.columns, tb.name)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := tb.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func deleteByID(ctx context.Context, q querier, tableName string, id int64) error {
	_, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", tableName), id)
	return err
}

// withTx runs fn inside a transaction scope. Any failure rolls the
// transaction back; non-user errors are translated into *core.StorageError
// carrying the entity kind and operation name.
func (r *Repository) withTx(ctx context.Context, entity, op string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.StorageError{Entity: entity, Op: op, Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if core.IsUserError(err) {
			return err
		}
		return &core.StorageError{Entity: entity, Op: op, Err: err}
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return &core.StorageError{Entity: entity, Op: op, Err: err}
	}
	return nil
}

// Load selects which related collections Categories and CategoryByID fetch
// alongside the category rows. The fetch is a single follow-up query per
// collection, bucketed in memory.
type Load uint8

const (
	LoadExpenses Load = 1 << iota
	LoadAliases
)

// CreateExpense persists a new expense and returns it with its assigned id.
// The created timestamp is normalized to UTC.
func (r *Repository) CreateExpense(ctx context.Context, amount float64, categoryID int64, created time.Time) (*core.Expense, error) {
	e := core.Expense{Amount: amount, Created: created.UTC(), CategoryID: categoryID}
	err := r.withTx(ctx, "expense", "create", func(tx *sql.Tx) error {
		id, err := insert(ctx, tx,
			"INSERT INTO expense (amount, created, category_id) VALUES (?, ?, ?)",
			e.Amount, e.Created, e.CategoryID)
		if err != nil {
			return err
		}
		e.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "expense saved", "id", e.ID, "amount", e.Amount, "category_id", e.CategoryID)
	return &e, nil
}

func (r *Repository) ExpenseByID(ctx context.Context, id int64) (*core.Expense, error) {
	var e *core.Expense
	err := r.withTx(ctx, "expense", "get by id", func(tx *sql.Tx) error {
		var err error
		e, err = getByID(ctx, tx, expenseTable, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExpenseByID deletes the expense if present; deleting a missing id is
// a no-op.
func (r *Repository) DeleteExpenseByID(ctx context.Context, id int64) error {
	return r.withTx(ctx, "expense", "delete by id", func(tx *sql.Tx) error {
		return deleteByID(ctx, tx, expenseTable.name, id)
	})
}

// RecentExpenses returns up to limit expenses, newest first, joined with
// their category names.
func (r *Repository) RecentExpenses(ctx context.Context, limit int) ([]core.RecentExpense, error) {
	var out []core.RecentExpense
	err := r.withTx(ctx, "expense", "list recent", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT e.id, e.amount, e.created, c.name
			 FROM expense e JOIN category c ON c.id = e.category_id
			 ORDER BY e.id DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e core.RecentExpense
			if err := rows.Scan(&e.ID, &e.Amount, &e.Created, &e.CategoryName); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) CategoryByID(ctx context.Context, id int64, load Load) (*core.Category, error) {
	var c *core.Category
	err := r.withTx(ctx, "category", "get by id", func(tx *sql.Tx) error {
		var err error
		c, err = getByID(ctx, tx, categoryTable, id)
		if err != nil || c == nil {
			return err
		}
		return attachRelated(ctx, tx, load, []*core.Category{c})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) CategoryByName(ctx context.Context, name string) (*core.Category, error) {
	var c *core.Category
	err := r.withTx(ctx, "category", "get by name", func(tx *sql.Tx) error {
		var err error
		c, err = getByName(ctx, tx, categoryTable, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Categories returns every category ordered by id, optionally with expenses
// and aliases eager-loaded.
func (r *Repository) Categories(ctx context.Context, load Load) ([]core.Category, error) {
	var cats []core.Category
	err := r.withTx(ctx, "category", "get all", func(tx *sql.Tx) error {
		var err error
		cats, err = listWhere(ctx, tx, categoryTable, "")
		if err != nil || load == 0 {
			return err
		}
		refs := make([]*core.Category, len(cats))
		for i := range cats {
			refs[i] = &cats[i]
		}
		return attachRelated(ctx, tx, load, refs)
	})
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// attachRelated batch-fetches the requested collections for the given
// categories: one query per collection, bucketed by category id.
func attachRelated(ctx context.Context, tx *sql.Tx, load Load, cats []*core.Category) error {
	if load == 0 || len(cats) == 0 {
		return nil
	}
	byID := make(map[int64]*core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	where, args := "", []any(nil)
	if len(cats) == 1 {
		where, args = "category_id = ?", []any{cats[0].ID}
	}

	if load&LoadExpenses != 0 {
		expenses, err := listWhere(ctx, tx, expenseTable, where, args...)
		if err != nil {
			return err
		}
		for _, e := range expenses {
			if c, ok := byID[e.CategoryID]; ok {
				c.Expenses = append(c.Expenses, e)
			}
		}
	}
	if load&LoadAliases != 0 {
		aliases, err := listWhere(ctx, tx, aliasTable, where, args...)
		if err != nil {
			return err
		}
		for _, a := range aliases {
			if c, ok := byID[a.CategoryID]; ok {
				c.Aliases = append(c.Aliases, a)
			}
		}
	}
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, name string) (*core.Category, error) {
	c := core.Category{Name: name}
	err := r.withTx(ctx, "category", "create", func(tx *sql.Tx) error {
		id, err := insert(ctx, tx, "INSERT INTO category (name) VALUES (?)", name)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id int64, name string) error {
	return r.withTx(ctx, "category", "update", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE category SET name = ? WHERE id = ?", name, id)
		return err
	})
}

// DeleteCategoryByID deletes a category; its expenses and aliases go with it
// through the cascading foreign keys, inside the same transaction.
func (r *Repository) DeleteCategoryByID(ctx context.Context, id int64) error {
	return r.withTx(ctx, "category", "delete by id", func(tx *sql.Tx) error {
		return deleteByID(ctx, tx, categoryTable.name, id)
	})
}

func (r *Repository) AliasByName(ctx context.Context, name string) (*core.Alias, error) {
	var a *core.Alias
	err := r.withTx(ctx, "alias", "get by name", func(tx *sql.Tx) error {
		var err error
		a, err = getByName(ctx, tx, aliasTable, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repository) CreateAlias(ctx context.Context, name string, categoryID int64) (*core.Alias, error) {
	a := core.Alias{Name: name, CategoryID: categoryID}
	err := r.withTx(ctx, "alias", "create", func(tx *sql.Tx) error {
		id, err := insert(ctx, tx, "INSERT INTO aliases (name, category_id) VALUES (?, ?)", name, categoryID)
		if err != nil {
			return err
		}
		a.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Budget returns the single meaningful budget row, or nil when none exists.
// A missing budget is a valid state, not an error.
func (r *Repository) Budget(ctx context.Context) (*core.Budget, error) {
	var b *core.Budget
	err := r.withTx(ctx, "budget", "get", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT 1", budgetTable.columns, budgetTable.name))
		v, err := budgetTable.scan(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		b = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SetBudget upserts the budget row under id 1, keeping the record singular.
func (r *Repository) SetBudget(ctx context.Context, name string, dailyLimit float64) (*core.Budget, error) {
	b := core.Budget{ID: 1, Name: name, DailyLimit: dailyLimit}
	err := r.withTx(ctx, "budget", "set", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budget (id, name, daily_limit) VALUES (1, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, daily_limit = excluded.daily_limit`,
			name, dailyLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, id int64, dailyLimit float64) error {
	return r.withTx(ctx, "budget", "update", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE budget SET daily_limit = ? WHERE id = ?", dailyLimit, id)
		return err
	})
}

// ResolveCategory maps a normalized label to its category id: first an exact
// category-name lookup, then an alias lookup. A label matching neither fails
// with *core.UnknownCategoryError; no category is ever created implicitly.
func (r *Repository) ResolveCategory(ctx context.Context, label string) (int64, error) {
	var id int64
	err := r.withTx(ctx, "category", "resolve", func(tx *sql.Tx) error {
		cat, err := getByName(ctx, tx, categoryTable, label)
		if err != nil {
			return err
		}
		if cat != nil {
			id = cat.ID
			return nil
		}
		alias, err := getByName(ctx, tx, aliasTable, label)
		if err != nil {
			return err
		}
		if alias == nil {
			return &core.UnknownCategoryError{Label: label}
		}
		id = alias.CategoryID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
