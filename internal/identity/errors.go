package identity

import (
	"errors"

	"github.com/tally-app/tally/internal/apperrors"
)

const (
	// FieldEmail names the email column in conflict reports.
	FieldEmail = "email"
	// FieldUsername names the username column in conflict reports.
	FieldUsername = "username"
)

var (
	// ErrNotFound is returned by repositories when no user matches.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicate is matched by every DuplicateError.
	ErrDuplicate = errors.New("duplicate user")

	// ErrInvalidCredentials is the single error for unknown email, wrong
	// password and unusable stored hash alike.
	ErrInvalidCredentials = apperrors.Authentication("Invalid credentials")
)

// DuplicateError reports a unique constraint hit at the storage layer.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field
}

// Is matches ErrDuplicate.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func emailConflict() error {
	return apperrors.Conflict(FieldEmail, "Email already in use")
}

func usernameConflict() error {
	return apperrors.Conflict(FieldUsername, "Username already taken")
}

// conflictFor names the colliding field of existing. Email wins when both
// fields collide.
func conflictFor(existing User, email string) error {
	if existing.Email == email {
		return emailConflict()
	}
	return usernameConflict()
}
