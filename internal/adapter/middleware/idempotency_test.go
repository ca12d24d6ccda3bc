package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/gobank/internal/adapter/middleware"
)

type cachedResponse struct {
	status int
	body   []byte
}

type fakeRow struct {
	cached *cachedResponse
}

func (r fakeRow) Scan(dest ...any) error {
	if r.cached == nil {
		return pgx.ErrNoRows
	}
	*dest[0].(*int) = r.cached.status
	*dest[1].(*[]byte) = r.cached.body
	return nil
}

type fakeStore struct {
	responses map[string]cachedResponse
}

func newFakeStore() *fakeStore {
	return &fakeStore{responses: make(map[string]cachedResponse)}
}

func (s *fakeStore) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if c, ok := s.responses[args[0].(string)]; ok {
		return fakeRow{cached: &c}
	}
	return fakeRow{}
}

func (s *fakeStore) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	s.responses[args[0].(string)] = cachedResponse{
		status: args[1].(int),
		body:   append([]byte(nil), args[2].([]byte)...),
	}
	return pgconn.CommandTag{}, nil
}

func sendWithKey(t *testing.T, app *fiber.App, key string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestIdempotency(t *testing.T) {
	t.Run("successful response is replayed", func(t *testing.T) {
		store := newFakeStore()
		calls := 0

		app := fiber.New()
		app.Post("/pay", middleware.Idempotency(store), func(c *fiber.Ctx) error {
			calls++
			return c.Status(http.StatusCreated).JSON(fiber.Map{"call": calls})
		})

		first := sendWithKey(t, app, "key-1")
		assert.Equal(t, http.StatusCreated, first.StatusCode)

		second := sendWithKey(t, app, "key-1")
		assert.Equal(t, http.StatusCreated, second.StatusCode)
		assert.Equal(t, "true", second.Header.Get("X-Idempotency-Hit"))
		body, _ := io.ReadAll(second.Body)
		assert.JSONEq(t, `{"call": 1}`, string(body))
		assert.Equal(t, 1, calls)
	})

	t.Run("transient failure is not pinned to the key", func(t *testing.T) {
		store := newFakeStore()
		calls := 0

		app := fiber.New()
		app.Post("/pay", middleware.Idempotency(store), func(c *fiber.Ctx) error {
			calls++
			if calls == 1 {
				return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to update account balance"})
			}
			return c.Status(http.StatusCreated).JSON(fiber.Map{"call": calls})
		})

		first := sendWithKey(t, app, "key-1")
		assert.Equal(t, http.StatusBadGateway, first.StatusCode)

		// The retry must reach the handler again, not replay the 502.
		second := sendWithKey(t, app, "key-1")
		assert.Equal(t, http.StatusCreated, second.StatusCode)
		assert.Empty(t, second.Header.Get("X-Idempotency-Hit"))
		assert.Equal(t, 2, calls)
	})

	t.Run("requests without a key pass through", func(t *testing.T) {
		store := newFakeStore()
		calls := 0

		app := fiber.New()
		app.Post("/pay", middleware.Idempotency(store), func(c *fiber.Ctx) error {
			calls++
			return c.SendStatus(http.StatusCreated)
		})

		sendWithKey(t, app, "")
		sendWithKey(t, app, "")
		assert.Equal(t, 2, calls)
		assert.Empty(t, store.responses)
	})
}
