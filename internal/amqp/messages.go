package amqp

import (
	"encoding/json"
	"time"

	"rashody/internal/core"
)

const (
	TypeExpenseRecorded = "expense.recorded"
	TypeExpenseDeleted  = "expense.deleted"
)

// Event is the envelope for ledger events. Deleted events carry only the
// expense id; recorded events carry the full entry so consumers don't have
// to read it back.
type Event struct {
	Type       string    `json:"type"`
	ExpenseID  int64     `json:"expense_id"`
	Amount     float64   `json:"amount,omitempty"`
	CategoryID int64     `json:"category_id,omitempty"`
	Created    time.Time `json:"created,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewExpenseRecorded(e *core.Expense) *Event {
	return &Event{
		Type:       TypeExpenseRecorded,
		ExpenseID:  e.ID,
		Amount:     e.Amount,
		CategoryID: e.CategoryID,
		Created:    e.Created,
		Timestamp:  time.Now().UTC(),
	}
}

func NewExpenseDeleted(id int64) *Event {
	return &Event{
		Type:      TypeExpenseDeleted,
		ExpenseID: id,
		Timestamp: time.Now().UTC(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
