package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Repository persists users. Create must reject duplicate usernames and
// emails atomically with the insert.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. The users_username_key and users_email_key
// constraints make the uniqueness check part of the insert.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`, userID, user.Username, user.Email, user.PasswordHash, user.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{Field: fieldForConstraint(pgErr.ConstraintName)}
	}
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.scanOne(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, userID)
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

// FindByEmailOrUsername returns any user holding either value, preferring
// the email match.
func (r *PostgresRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (User, error) {
	return r.scanOne(ctx, `SELECT id, username, email, password_hash, created_at FROM users
        WHERE email = $1 OR username = $2
        ORDER BY (email = $1) DESC
        LIMIT 1`, email, username)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (User, error) {
	var (
		id   uuid.UUID
		user User
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(&id, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func fieldForConstraint(name string) string {
	if strings.Contains(name, FieldUsername) {
		return FieldUsername
	}
	return FieldEmail
}
