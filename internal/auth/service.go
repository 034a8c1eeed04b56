package auth

import (
	"context"
	"time"

	"github.com/tally-app/tally/internal/apperrors"
	"github.com/tally-app/tally/internal/identity"
)

// Service logs users in by checking credentials and issuing access tokens.
type Service struct {
	ids    *identity.Service
	tokens *Tokens
	ttl    time.Duration
}

// NewService wires the login flow.
func NewService(ids *identity.Service, tokens *Tokens) *Service {
	return &Service{ids: ids, tokens: tokens, ttl: AccessTokenTTL}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	ExpiresIn int64
}

// Login verifies the email/password pair and issues a one hour access token.
// Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}

	token, exp, err := s.tokens.Issue(Subject{ID: user.ID, Username: user.Username}, s.ttl)
	if err != nil {
		return LoginResult{}, apperrors.Internal("issue token", err)
	}
	return LoginResult{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: exp,
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}
