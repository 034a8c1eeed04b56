package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-app/tally/internal/config"
	"github.com/tally-app/tally/internal/logging"
	"github.com/tally-app/tally/internal/middleware"
)

func testConfig() config.Config {
	return config.Config{
		AppName:        "tally",
		AppEnv:         "test",
		JWTSecret:      "test-secret-test-secret-test-secret",
		BcryptCost:     4,
		CORSOrigins:    []string{"*"},
		IdempotencyTTL: time.Minute,
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	logger := logging.Discard()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	require.NoError(t, Setup(app, Deps{Cfg: testConfig(), Cache: cache, Logger: logger}))
	return app
}

type result struct {
	status int
	header http.Header
	body   string
}

func (r result) json(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(r.body), v), r.body)
}

func send(t *testing.T, app *fiber.App, method, path, token, body string, headers ...string) result {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{status: resp.StatusCode, header: resp.Header, body: string(raw)}
}

func register(t *testing.T, app *fiber.App, username, email, password string) result {
	t.Helper()
	return send(t, app, fiber.MethodPost, "/register", "", `{"username":"`+username+`","email":"`+email+`","password":"`+password+`"}`)
}

func login(t *testing.T, app *fiber.App, email, password string) (string, string) {
	t.Helper()
	res := send(t, app, fiber.MethodPost, "/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, res.status, res.body)
	var out struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
		UserID    string `json:"user_id"`
	}
	res.json(t, &out)
	require.NotEmpty(t, out.Token)
	require.Equal(t, int64(3600), out.ExpiresIn)
	return out.Token, out.UserID
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newTestApp(t)

	res := register(t, app, "alice", "a@x.com", "secret1")
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, res.body)

	res = register(t, app, "alice", "other@x.com", "pw")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.JSONEq(t, `{"error":"Username already taken"}`, res.body)

	res = register(t, app, "someone", "a@x.com", "pw")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.JSONEq(t, `{"error":"Email already in use"}`, res.body)

	res = register(t, app, "", "b@x.com", "pw")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.JSONEq(t, `{"error":"All fields are required"}`, res.body)

	token, userID := login(t, app, "a@x.com", "secret1")

	wrong := send(t, app, fiber.MethodPost, "/login", "", `{"email":"a@x.com","password":"nope"}`)
	unknown := send(t, app, fiber.MethodPost, "/login", "", `{"email":"ghost@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, wrong.status)
	assert.Equal(t, wrong.status, unknown.status)
	assert.Equal(t, wrong.body, unknown.body)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrong.body)

	missing := send(t, app, fiber.MethodPost, "/login", "", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, missing.status)
	assert.JSONEq(t, `{"error":"Email and password are required"}`, missing.body)

	me := send(t, app, fiber.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, me.status, me.body)
	var profile map[string]any
	me.json(t, &profile)
	assert.Equal(t, userID, profile["user_id"])
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, me.body, "password")
}

func TestEntriesAreScopedToTokenSubject(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, register(t, app, "alice", "a@x.com", "pw-a").status)
	require.Equal(t, http.StatusCreated, register(t, app, "bob", "b@x.com", "pw-b").status)
	alice, aliceID := login(t, app, "a@x.com", "pw-a")
	bob, _ := login(t, app, "b@x.com", "pw-b")

	res := send(t, app, fiber.MethodPost, "/add-entry", alice, `{"type":"income","amount":"100","note":"pay","date":"2026-01-31","user_id":"someone-else"}`)
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.Contains(t, res.body, "Entry added successfully")

	res = send(t, app, fiber.MethodGet, "/history", bob, "")
	require.Equal(t, http.StatusOK, res.status)
	assert.JSONEq(t, `[]`, res.body)

	res = send(t, app, fiber.MethodGet, "/history", alice, "")
	require.Equal(t, http.StatusOK, res.status)
	var entries []map[string]any
	res.json(t, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, aliceID, entries[0]["user_id"])
	assert.Equal(t, float64(100), entries[0]["amount"])

	res = send(t, app, fiber.MethodGet, "/summary", alice, "")
	assert.JSONEq(t, `{"income":100,"expense":0,"balance":100,"count":1}`, res.body)
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, register(t, app, "alice", "a@x.com", "pw").status)
	token, _ := login(t, app, "a@x.com", "pw")

	tampered := token[:len(token)-2] + "xx"
	if tampered == token {
		tampered = token[:len(token)-2] + "yy"
	}
	for _, tok := range []string{"", "garbage", tampered} {
		for _, path := range []string{"/history", "/summary", "/me"} {
			res := send(t, app, fiber.MethodGet, path, tok, "")
			assert.Equal(t, http.StatusUnauthorized, res.status, path)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, res.body)
		}
		res := send(t, app, fiber.MethodPost, "/add-entry", tok, `{"type":"income","amount":1,"date":"2026-01-01"}`)
		assert.Equal(t, http.StatusUnauthorized, res.status)
	}

	res := send(t, app, fiber.MethodGet, "/history", "", "", fiber.HeaderAuthorization, "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestRegisterReplaysWithIdempotencyKey(t *testing.T) {
	app := newTestApp(t)
	body := `{"username":"alice","email":"a@x.com","password":"pw"}`

	first := send(t, app, fiber.MethodPost, "/register", "", body, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, first.status, first.body)
	second := send(t, app, fiber.MethodPost, "/register", "", body, "Idempotency-Key", "k1")
	assert.Equal(t, http.StatusCreated, second.status)
	assert.Equal(t, first.body, second.body)
	assert.Equal(t, "true", second.header.Get("Idempotent-Replayed"))

	// Without the key the retry is a real duplicate.
	third := send(t, app, fiber.MethodPost, "/register", "", body)
	assert.Equal(t, http.StatusBadRequest, third.status)

	// Another caller reusing the key with a different body is never told it
	// registered; the key is refused and bob can still register for real.
	bobBody := `{"username":"bob","email":"b@x.com","password":"pw-b"}`
	reused := send(t, app, fiber.MethodPost, "/register", "", bobBody, "Idempotency-Key", "k1")
	assert.Equal(t, http.StatusUnprocessableEntity, reused.status, reused.body)
	assert.Empty(t, reused.header.Get("Idempotent-Replayed"))

	fresh := send(t, app, fiber.MethodPost, "/register", "", bobBody)
	require.Equal(t, http.StatusCreated, fresh.status, fresh.body)
	login(t, app, "b@x.com", "pw-b")
}

func TestHealthAndFallbacks(t *testing.T) {
	app := newTestApp(t)

	res := send(t, app, fiber.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, `"redis":"ok"`)

	res = send(t, app, fiber.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, res.status)

	res = send(t, app, fiber.MethodOptions, "/add-entry", "", "",
		fiber.HeaderOrigin, "https://app.example",
		fiber.HeaderAccessControlRequestMethod, fiber.MethodPost,
	)
	assert.Equal(t, http.StatusNoContent, res.status)
	assert.Equal(t, "*", res.header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestSetupRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	err := Setup(fiber.New(), Deps{Cfg: cfg, Logger: logging.Discard()})
	assert.Error(t, err)
}
