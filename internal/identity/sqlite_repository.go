package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository on a modernc SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a repository on an already migrated handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new user; the UNIQUE columns reject duplicates.
func (r *SQLiteRepository) Create(ctx context.Context, user User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && isUniqueViolation(sqliteErr) {
		field := FieldEmail
		if strings.Contains(sqliteErr.Error(), "users.username") {
			field = FieldUsername
		}
		return &DuplicateError{Field: field}
	}
	return err
}

// FindByID retrieves a user by ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?", id)
}

// FindByEmail retrieves a user by email.
func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
}

// FindByEmailOrUsername retrieves a user holding either value, email match first.
func (r *SQLiteRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (User, error) {
	return r.scanOne(ctx, `SELECT id, username, email, password_hash, created_at FROM users
		WHERE email = ? OR username = ?
		ORDER BY (email = ?) DESC
		LIMIT 1`, email, username, email)
}

func (r *SQLiteRepository) scanOne(ctx context.Context, query string, args ...any) (User, error) {
	var (
		u         User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// isUniqueViolation accepts both the extended and the primary result code.
func isUniqueViolation(err *sqlite.Error) bool {
	if err.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "UNIQUE")
}
