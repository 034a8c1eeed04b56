package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tally-app/tally/internal/apperrors"
	"github.com/tally-app/tally/internal/notification"
	"github.com/tally-app/tally/internal/password"
)

// Service manages registration and credential checks.
type Service struct {
	repo     Repository
	hasher   password.Hasher
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

// NewService creates a new identity service. notifier may be nil.
func NewService(repo Repository, hasher password.Hasher, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hasher: hasher, notifier: notifier, logger: logger, now: time.Now}
}

// Register validates input, rejects duplicate usernames and emails, then
// stores a new user with a hashed password. It issues no token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	if username == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return User{}, apperrors.Validation("All fields are required")
	}
	if !validEmail(email) {
		v := apperrors.Validation("Invalid email address")
		v.Field = FieldEmail
		return User{}, v
	}

	existing, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		return User{}, conflictFor(existing, email)
	case !errors.Is(err, ErrNotFound):
		return User{}, apperrors.Internal("lookup user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeValidation {
			return User{}, err
		}
		return User{}, apperrors.Internal("hash password", err)
	}

	user := User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return User{}, s.resolveConflict(ctx, err, email, username)
		}
		return User{}, apperrors.Internal("create user", err)
	}

	if s.notifier != nil {
		err := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindUserRegistered,
			Destination: user.Email,
			Body:        fmt.Sprintf("Welcome, %s", user.Username),
			UserID:      user.ID,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "registration notice failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}

	return user, nil
}

// resolveConflict names the colliding field after a storage-level unique
// violation lost a race with a concurrent registration.
func (s *Service) resolveConflict(ctx context.Context, dupErr error, email, username string) error {
	if existing, err := s.repo.FindByEmailOrUsername(ctx, email, username); err == nil {
		return conflictFor(existing, email)
	}
	var dup *DuplicateError
	if errors.As(dupErr, &dup) && dup.Field == FieldUsername {
		return usernameConflict()
	}
	return emailConflict()
}

// Authenticate checks an email/password pair. Every failure other than
// missing input or a storage outage yields ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, plaintext string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || plaintext == "" {
		return User{}, apperrors.Validation("Email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		// Burn a comparable amount of time so unknown emails are not
		// distinguishable by latency.
		_, _ = s.hasher.Verify(plaintext, s.decoy())
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, apperrors.Internal("lookup user", err)
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash unusable", slog.String("user_id", user.ID), slog.Any("error", err))
		return User{}, ErrInvalidCredentials
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user with the given ID.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperrors.Authentication("Unauthorized")
	}
	if err != nil {
		return User{}, apperrors.Internal("lookup user", err)
	}
	return user, nil
}

func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("decoy hash unavailable", slog.Any("error", err))
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
