package identity

import "time"

// User represents a registered account holder.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RegisterInput carries the fields accepted by Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}
