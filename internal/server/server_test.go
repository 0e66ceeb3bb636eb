package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/messagely/messagely/internal/config"
	"github.com/messagely/messagely/internal/logging"
	"github.com/messagely/messagely/internal/routes"
)

func testConfig() config.Config {
	return config.Config{
		AppName:          "messagely-test",
		Port:             "0",
		StorageDriver:    config.DriverMemory,
		SecretKey:        "test-secret",
		BcryptWorkFactor: 4,
	}
}

func newTestApp(t *testing.T, cache *redis.Client) *fiber.App {
	t.Helper()
	srv, err := New(routes.Deps{Cfg: testConfig(), Cache: cache, Logger: logging.Discard()})
	require.NoError(t, err)
	return srv.App()
}

type response struct {
	status int
	body   map[string]any
}

func call(t *testing.T, app *fiber.App, method, path, token string, payload any, headers ...string) response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), "body %s", raw)
	}
	return out
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp := call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username":   username,
		"password":   "pw-" + username,
		"first_name": username,
		"last_name":  "Tester",
		"phone":      "+1555000" + username,
	})
	require.Equal(t, fiber.StatusCreated, resp.status, resp.body)
	token, _ := resp.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func messageField(t *testing.T, r response, field string) any {
	t.Helper()
	m, ok := r.body["message"].(map[string]any)
	require.True(t, ok, "no message in %v", r.body)
	return m[field]
}

func TestMessagingScenario(t *testing.T) {
	app := newTestApp(t, nil)

	alice := register(t, app, "alice")
	register(t, app, "bob")
	carol := register(t, app, "carol")

	dup := call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "x", "first_name": "A", "last_name": "B", "phone": "1",
	})
	require.Equal(t, fiber.StatusBadRequest, dup.status)
	require.Equal(t, "username taken, please pick another", dup.body["error"])

	bad := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"username": "bob", "password": "nope"})
	require.Equal(t, fiber.StatusBadRequest, bad.status)
	require.Equal(t, "invalid username/password", bad.body["error"])

	unknown := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"username": "zed", "password": "nope"})
	require.Equal(t, bad, unknown)

	login := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"username": "bob", "password": "pw-bob"})
	require.Equal(t, fiber.StatusOK, login.status)
	bob, _ := login.body["token"].(string)
	require.NotEmpty(t, bob)

	sent := call(t, app, fiber.MethodPost, "/messages", alice, map[string]string{"to_username": "bob", "body": "hi bob"})
	require.Equal(t, fiber.StatusCreated, sent.status, sent.body)
	require.Equal(t, "alice", messageField(t, sent, "from_username"))
	id := int64(messageField(t, sent, "id").(float64))
	path := fmt.Sprintf("/messages/%d", id)

	require.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, path, "", nil).status)
	require.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, path, "forged", nil).status)
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, path, alice, nil).status)
	require.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodGet, path, carol, nil).status)
	require.Equal(t, fiber.StatusNotFound, call(t, app, fiber.MethodGet, "/messages/999", carol, nil).status)
	require.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodGet, "/messages/abc", bob, nil).status)

	detail := call(t, app, fiber.MethodGet, path, bob, nil)
	require.Equal(t, fiber.StatusOK, detail.status)
	require.Nil(t, messageField(t, detail, "read_at"))
	from, _ := messageField(t, detail, "from_user").(map[string]any)
	require.Equal(t, "alice", from["username"])

	require.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodPost, path+"/read", alice, nil).status)

	first := call(t, app, fiber.MethodPost, path+"/read", bob, nil)
	require.Equal(t, fiber.StatusOK, first.status)
	readAt := messageField(t, first, "read_at")
	require.NotNil(t, readAt)

	second := call(t, app, fiber.MethodPost, path+"/read", bob, nil)
	require.Equal(t, readAt, messageField(t, second, "read_at"))

	inbox := call(t, app, fiber.MethodGet, "/users/bob/to", bob, nil)
	require.Equal(t, fiber.StatusOK, inbox.status)
	require.Len(t, inbox.body["messages"], 1)
	outbox := call(t, app, fiber.MethodGet, "/users/alice/from", alice, nil)
	require.Len(t, outbox.body["messages"], 1)
	require.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodGet, "/users/bob/to", alice, nil).status)

	users := call(t, app, fiber.MethodGet, "/users", carol, nil)
	require.Equal(t, fiber.StatusOK, users.status)
	require.Len(t, users.body["users"], 3)

	profile := call(t, app, fiber.MethodGet, "/users/carol", carol, nil)
	require.Equal(t, fiber.StatusOK, profile.status)

	ghost := call(t, app, fiber.MethodPost, "/messages", alice, map[string]string{"to_username": "ghost", "body": "boo"})
	require.Equal(t, fiber.StatusNotFound, ghost.status)

	blank := call(t, app, fiber.MethodPost, "/messages", alice, map[string]string{"to_username": "bob"})
	require.Equal(t, fiber.StatusBadRequest, blank.status)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	app := newTestApp(t, nil)

	resp := call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username":   "dave",
		"password":   strings.Repeat("p", 73),
		"first_name": "Dave",
		"last_name":  "Tester",
		"phone":      "+15550004",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.status)
	require.Equal(t, "invalid input: password must be at most 72 characters", resp.body["error"])

	// Fits the character limit but not bcrypt's byte limit.
	resp = call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username":   "dave",
		"password":   strings.Repeat("é", 40),
		"first_name": "Dave",
		"last_name":  "Tester",
		"phone":      "+15550004",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.status)
	require.Equal(t, "invalid input: password must be at most 72 bytes", resp.body["error"])

	login := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"username": "dave", "password": "x"})
	require.Equal(t, fiber.StatusBadRequest, login.status)
	require.Equal(t, "invalid username/password", login.body["error"])
}

func TestSendIsIdempotentWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := newTestApp(t, cache)
	alice := register(t, app, "alice")
	register(t, app, "bob")

	payload := map[string]string{"to_username": "bob", "body": "once"}
	first := call(t, app, fiber.MethodPost, "/messages", alice, payload, "Idempotency-Key", "k1")
	require.Equal(t, fiber.StatusCreated, first.status)
	again := call(t, app, fiber.MethodPost, "/messages", alice, payload, "Idempotency-Key", "k1")
	require.Equal(t, fiber.StatusCreated, again.status)
	require.Equal(t, messageField(t, first, "id"), messageField(t, again, "id"))

	other := call(t, app, fiber.MethodPost, "/messages", alice, payload, "Idempotency-Key", "k2")
	require.NotEqual(t, messageField(t, first, "id"), messageField(t, other, "id"))
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)
	resp := call(t, app, fiber.MethodGet, "/healthz", "", nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	require.Equal(t, "memory", resp.body["storage"])
}

func TestNewRejectsMissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SecretKey = ""
	_, err := New(routes.Deps{Cfg: cfg, Logger: logging.Discard()})
	require.Error(t, err)
}
