package core

import (
	"errors"
	"testing"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		amount  float64
		label   string
		wantErr bool
	}{
		{name: "simple", raw: "1500 метро", amount: 1500, label: "метро"},
		{name: "decimal amount", raw: "99.5 кофе", amount: 99.5, label: "кофе"},
		{name: "internal spaces in amount", raw: "1 500 такси", amount: 1500, label: "такси"},
		{name: "spaced decimal", raw: "1 500.25 такси", amount: 1500.25, label: "такси"},
		{name: "label lower-cased and trimmed", raw: "250  Такси ", amount: 250, label: "такси"},
		{name: "multi-word label", raw: "300 продукты еда", amount: 300, label: "продукты еда"},
		{name: "latin label", raw: "10 taxi", amount: 10, label: "taxi"},
		{name: "no numeric prefix", raw: "не число", wantErr: true},
		{name: "no remainder", raw: "42", wantErr: true},
		{name: "remainder only spaces", raw: "42   ", wantErr: true},
		{name: "empty input", raw: "", wantErr: true},
		{name: "two decimal points", raw: "1.2.3 кофе", wantErr: true},
		{name: "no space before label", raw: "99.5кофе", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntry(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEntry(%q) = %+v, want error", tt.raw, got)
				}
				var malformed *MalformedEntryError
				if !errors.As(err, &malformed) {
					t.Fatalf("ParseEntry(%q) error = %T, want *MalformedEntryError", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntry(%q) error: %v", tt.raw, err)
			}
			if got.Amount != tt.amount {
				t.Errorf("amount = %v, want %v", got.Amount, tt.amount)
			}
			if got.CategoryLabel != tt.label {
				t.Errorf("label = %q, want %q", got.CategoryLabel, tt.label)
			}
		})
	}
}

func TestParseEntry_ErrorMessage(t *testing.T) {
	_, err := ParseEntry("не число")
	if err == nil {
		t.Fatal("want error")
	}
	want := "Не могу понять сообщение. Напишите сообщение в формате, например:\n1500 метро"
	if err.Error() != want {
		t.Errorf("error message = %q, want %q", err.Error(), want)
	}
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(&MalformedEntryError{Text: "x"}) {
		t.Error("malformed entry should be a user error")
	}
	if !IsUserError(&UnknownCategoryError{Label: "x"}) {
		t.Error("unknown category should be a user error")
	}
	if IsUserError(&StorageError{Entity: "expense", Op: "create", Err: errors.New("boom")}) {
		t.Error("storage failure must not be a user error")
	}
	if IsUserError(errors.New("plain")) {
		t.Error("plain error must not be a user error")
	}
}
