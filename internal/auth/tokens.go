package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenTTL is the lifetime of every access token issued at login.
const AccessTokenTTL = time.Hour

// ErrInvalidToken is the only error Verify returns to callers, whatever the
// underlying cause (signature, structure, algorithm or expiry).
var ErrInvalidToken = errors.New("invalid token")

// Subject identifies the account a token is issued for.
type Subject struct {
	ID       string
	Username string
}

// accessClaims is the JWT payload. Username is a display convenience for
// clients and is never used for authorization.
type accessClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// Tokens issues and verifies HS256 access tokens. It keeps its own copy of the
// signing secret, which is never modified after construction.
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokens builds an issuer/verifier. now may be nil to use the wall clock.
func NewTokens(secret, issuer string, now func() time.Time) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	if now == nil {
		now = time.Now
	}
	t := &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		now:    now,
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	t.parser = jwt.NewParser(opts...)
	return t, nil
}

// Issue signs a token for sub that expires ttl from now.
func (t *Tokens) Issue(sub Subject, ttl time.Duration) (string, time.Time, error) {
	if sub.ID == "" {
		return "", time.Time{}, errors.New("token subject is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("invalid token ttl %s", ttl)
	}
	now := t.now()
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
		Username: sub.Username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp.Time, nil
}

// Verify checks signature, algorithm and expiry and returns the subject ID.
// A token is valid while now < exp.
func (t *Tokens) Verify(token string) (string, error) {
	var claims accessClaims
	_, err := t.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
