package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/apperrors"
)

const (
	userIDLocal  = "user_id"
	bearerScheme = "bearer"
)

// TokenVerifier resolves a bearer token to its subject user ID.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTAuth returns a middleware that validates bearer access tokens and stores
// the subject for downstream handlers. Every failure produces the same 401.
func JWTAuth(verifier TokenVerifier, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized()
		}
		sub, err := verifier.Verify(token)
		if err != nil {
			if logger != nil {
				logger.DebugContext(c.UserContext(), "bearer token rejected", slog.String("path", c.Path()), slog.Any("error", err))
			}
			return unauthorized()
		}
		c.Locals(userIDLocal, sub)
		return c.Next()
	}
}

// UserID returns the authenticated user ID, or "" outside JWTAuth.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(userIDLocal).(string)
	return uid
}

// RequireUserID is UserID for handlers mounted behind JWTAuth.
func RequireUserID(c *fiber.Ctx) (string, error) {
	uid := UserID(c)
	if uid == "" {
		return "", unauthorized()
	}
	return uid, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func unauthorized() error {
	return apperrors.Authentication("Unauthorized")
}
