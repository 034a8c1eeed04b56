package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Fixed-width so created_at sorts lexically.
const sqliteTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists entries in a modernc SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore builds a store on an already migrated handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Add inserts the entry.
func (s *SQLiteStore) Add(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, kind, amount, note, entry_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.OwnerID, string(entry.Kind), entry.Amount.String(), entry.Note,
		entry.Date.Format(DateLayout), entry.CreatedAt.UTC().Format(sqliteTimestampLayout),
	)
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && isForeignKeyViolation(sqliteErr) {
		return ErrUnknownOwner
	}
	return err
}

// ListByOwner returns the owner's entries, newest date first.
func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, amount, note, entry_date, created_at
		FROM entries
		WHERE user_id = ?
		ORDER BY entry_date DESC, created_at DESC, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                         Entry
			kind, amount, date, stamp string
		)
		if err := rows.Scan(&e.ID, &kind, &amount, &e.Note, &date, &stamp); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %s amount: %w", e.ID, err)
		}
		if e.Date, err = time.Parse(DateLayout, date); err != nil {
			return nil, fmt.Errorf("entry %s date: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
			return nil, fmt.Errorf("entry %s created_at: %w", e.ID, err)
		}
		e.OwnerID = ownerID
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func isForeignKeyViolation(err *sqlite.Error) bool {
	if err.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return err.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "FOREIGN KEY")
}
