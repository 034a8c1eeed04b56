package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgForeignKeyViolation = "23503"

// PostgresStore persists entries in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed entry store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add inserts the entry. Amounts travel as text so NUMERIC keeps every digit.
func (s *PostgresStore) Add(ctx context.Context, entry Entry) error {
	id, err := uuid.Parse(entry.ID)
	if err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	owner, err := uuid.Parse(entry.OwnerID)
	if err != nil {
		return ErrUnknownOwner
	}
	_, err = s.db.Exec(ctx, `INSERT INTO entries (id, user_id, kind, amount, note, entry_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, owner, string(entry.Kind), entry.Amount.String(), entry.Note, entry.Date, entry.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrUnknownOwner
	}
	return err
}

// ListByOwner returns the owner's entries, newest date first.
func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return []Entry{}, nil
	}
	rows, err := s.db.Query(ctx, `SELECT id, kind, amount::text, note, entry_date, created_at
        FROM entries
        WHERE user_id = $1
        ORDER BY entry_date DESC, created_at DESC, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id     uuid.UUID
			kind   string
			amount string
			e      Entry
		)
		if err := rows.Scan(&id, &kind, &amount, &e.Note, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %s amount: %w", id, err)
		}
		e.ID = id.String()
		e.OwnerID = ownerID
		e.Kind = Kind(kind)
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
