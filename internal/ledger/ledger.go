package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format entries are submitted and rendered in.
const DateLayout = "2006-01-02"

// ErrUnknownOwner is returned by stores when the owning user does not exist.
var ErrUnknownOwner = errors.New("entry owner does not exist")

// Kind classifies an entry.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Entry is a single income or expense record owned by one user.
type Entry struct {
	ID        string
	OwnerID   string
	Kind      Kind
	Amount    decimal.Decimal
	Note      string
	Date      time.Time
	CreatedAt time.Time
}

// Summary aggregates a user's entries.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
	Count   int
}

// Store persists entries. Every read is filtered by owner.
type Store interface {
	Add(ctx context.Context, entry Entry) error
	// ListByOwner returns the owner's entries, newest date first.
	ListByOwner(ctx context.Context, ownerID string) ([]Entry, error)
}

// Summarize totals entries by kind.
func Summarize(entries []Entry) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range entries {
		switch e.Kind {
		case KindIncome:
			s.Income = s.Income.Add(e.Amount)
		case KindExpense:
			s.Expense = s.Expense.Add(e.Amount)
		}
		s.Count++
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// newestFirst orders by date, then creation time, both descending.
func newestFirst(a, b Entry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
