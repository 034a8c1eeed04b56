package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-app/tally/internal/apperrors"
	"github.com/tally-app/tally/internal/logging"
)

func newAuthApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.CodeOf(err).HTTPStatus()).SendString(err.Error())
		},
	})
	app.Get("/whoami", JWTAuth(fakeVerifier{}, logging.Discard()), func(c *fiber.Ctx) error {
		uid, err := RequireUserID(c)
		if err != nil {
			return err
		}
		return c.SendString(uid)
	})
	return app
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	app := newAuthApp()

	headers := []string{"", "Bearer", "Bearer ", "Basic abc", "Token abc", "Bearer a b", "bad"}
	for _, h := range headers {
		req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
		if h != "" {
			req.Header.Set(fiber.HeaderAuthorization, h)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", h)
	}
}

func TestJWTAuthRejectsUnverifiableToken(t *testing.T) {
	app := newAuthApp()

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer bad")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTAuthInjectsSubject(t *testing.T) {
	app := newAuthApp()

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "bearer user-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user-42", string(body))
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("  BEARER abc.def.ghi ")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)

	_, ok = bearerToken("Bearerabc")
	assert.False(t, ok)
}
