package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-app/tally/internal/apperrors"
)

// MaxNoteLength bounds the free-text note, in characters.
const MaxNoteLength = 500

const (
	// maxAmountLength bounds the textual amount before it is parsed.
	maxAmountLength = 32
	// Exponent bounds keep every comparison and stored value small: at most
	// eight decimal places and nothing beyond maxAmount's magnitude.
	minAmountExponent = -8
	maxAmountExponent = 12
)

// maxAmount keeps rendered amounts to a sane width.
var maxAmount = decimal.New(1, 12)

// AddInput carries an entry as submitted by a client. Amount is the textual
// form of the number.
type AddInput struct {
	Kind   string
	Amount string
	Note   string
	Date   string
}

// Service validates and records entries on behalf of an authenticated owner.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the entry service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Add validates in and stores it under ownerID.
func (s *Service) Add(ctx context.Context, ownerID string, in AddInput) (Entry, error) {
	if ownerID == "" {
		return Entry{}, apperrors.Authentication("Unauthorized")
	}
	kind := strings.ToLower(strings.TrimSpace(in.Kind))
	rawAmount := strings.TrimSpace(in.Amount)
	rawDate := strings.TrimSpace(in.Date)
	if kind == "" || rawAmount == "" || rawDate == "" {
		return Entry{}, apperrors.Validation("Type, amount, and date are required")
	}

	amount, ok := parseAmount(rawAmount)
	if !ok {
		return Entry{}, apperrors.Validation("Invalid amount")
	}
	if !Kind(kind).Valid() {
		return Entry{}, apperrors.Validation("Invalid type")
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return Entry{}, apperrors.Validation("Invalid date")
	}
	note := strings.TrimSpace(in.Note)
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return Entry{}, apperrors.Validation("Note is too long")
	}

	entry := Entry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Kind:      Kind(kind),
		Amount:    amount,
		Note:      note,
		Date:      date,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Add(ctx, entry); err != nil {
		if errors.Is(err, ErrUnknownOwner) {
			return Entry{}, apperrors.Authentication("Unauthorized")
		}
		return Entry{}, apperrors.Internal("add entry", err)
	}

	s.logger.InfoContext(ctx, "ledger.entry added",
		slog.String("entry_id", entry.ID),
		slog.String("user_id", ownerID),
		slog.String("kind", string(entry.Kind)),
	)
	return entry, nil
}

// History returns ownerID's entries, newest date first.
func (s *Service) History(ctx context.Context, ownerID string) ([]Entry, error) {
	if ownerID == "" {
		return nil, apperrors.Authentication("Unauthorized")
	}
	entries, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("list entries", err)
	}
	return entries, nil
}

// Summary totals ownerID's entries.
func (s *Service) Summary(ctx context.Context, ownerID string) (Summary, error) {
	entries, err := s.History(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(entries), nil
}

// parseAmount bounds length and exponent before any arithmetic, since
// rescaling a decimal costs time proportional to its exponent.
func parseAmount(raw string) (decimal.Decimal, bool) {
	if len(raw) > maxAmountLength {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := amount.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return decimal.Decimal{}, false
	}
	if !amount.IsPositive() || amount.GreaterThan(maxAmount) {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// ParseDate accepts a calendar day, or an RFC 3339 timestamp whose calendar
// day is kept.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
