package core

import (
	"errors"
	"fmt"
	"time"
)

type (
	// Expense is one recorded spend. Immutable once created; rows are only
	// ever deleted, never updated in place.
	Expense struct {
		ID         int64
		Amount     float64
		Created    time.Time // UTC
		CategoryID int64
	}

	// Category owns its expenses and aliases. Deleting a category cascades
	// to both collections at the storage level.
	Category struct {
		ID       int64
		Name     string
		Expenses []Expense
		Aliases  []Alias
	}

	// Alias maps an alternate user label to a canonical category.
	Alias struct {
		ID         int64
		Name       string
		CategoryID int64
	}

	// Budget holds the static daily spending limit. At most one meaningful
	// row exists; a missing row means the limit is zero.
	Budget struct {
		ID         int64
		Name       string
		DailyLimit float64
	}

	// RecentExpense is an expense joined with its category name, for the
	// recent-expenses listing.
	RecentExpense struct {
		ID           int64
		Amount       float64
		Created      time.Time
		CategoryName string
	}
)

// MalformedEntryError reports input text that does not match the
// "amount label" shape. Its message is shown to the submitter verbatim.
type MalformedEntryError struct {
	Text string // the raw input that failed to parse
}

func (e *MalformedEntryError) Error() string {
	return "Не могу понять сообщение. Напишите сообщение в формате, например:\n1500 метро"
}

// UnknownCategoryError reports a label that resolves to neither a category
// nor an alias. A data-entry error, not a system fault.
type UnknownCategoryError struct {
	Label string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("Категории с именем '%s' не существует", e.Label)
}

// StorageError wraps a persistence-layer failure after the enclosing
// transaction has been rolled back.
type StorageError struct {
	Entity string // entity kind the operation was acting on
	Op     string // operation name, e.g. "create", "get by name"
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsUserError reports whether err is user-recoverable: a malformed entry or
// an unknown category. Such errors are echoed back to the submitter; anything
// else is a system failure and only a generic message leaves the boundary.
func IsUserError(err error) bool {
	var malformed *MalformedEntryError
	var unknown *UnknownCategoryError
	return errors.As(err, &malformed) || errors.As(err, &unknown)
}
