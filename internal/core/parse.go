// Package core holds the domain model of the ledger: entities, the error
// taxonomy, entry-text parsing and windowed aggregation. Everything here is
// pure; persistence lives in internal/storage.
package core

import (
	"regexp"
	"strconv"
	"strings"
)

// entryPattern matches "amount label": a numeric token that may contain
// internal spaces and at most one decimal point, then whitespace, then a
// free-text remainder.
var entryPattern = regexp.MustCompile(`^\s*(\d[\d ]*(?:\.\d+)?)\s+(.+)$`)

// Entry is the structured form of one submitted expense line.
type Entry struct {
	Amount        float64
	CategoryLabel string
}

// ParseEntry parses a raw text line like "1500 метро" or "1 500 такси" into
// an Entry. The amount token has internal spaces stripped before conversion;
// the remainder is trimmed and lower-cased into the category label.
// A line that does not match the shape fails with *MalformedEntryError.
func ParseEntry(raw string) (Entry, error) {
	m := entryPattern.FindStringSubmatch(raw)
	if m == nil {
		return Entry{}, &MalformedEntryError{Text: raw}
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], " ", ""), 64)
	if err != nil || amount <= 0 {
		return Entry{}, &MalformedEntryError{Text: raw}
	}

	label := strings.ToLower(strings.TrimSpace(m[2]))
	if label == "" {
		return Entry{}, &MalformedEntryError{Text: raw}
	}

	return Entry{Amount: amount, CategoryLabel: label}, nil
}
