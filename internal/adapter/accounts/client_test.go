package accounts_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/gobank/internal/adapter/accounts"
)

func TestValidateAccountOwnership(t *testing.T) {
	accountID := uuid.New()
	userID := uuid.New()

	t.Run("owned account", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, fmt.Sprintf("/accounts/%s/ownership", accountID), r.URL.Path)
			assert.Equal(t, userID.String(), r.URL.Query().Get("user_id"))
			json.NewEncoder(w).Encode(map[string]bool{"owned": true})
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		owned, err := client.ValidateAccountOwnership(context.Background(), accountID, userID)
		require.NoError(t, err)
		assert.True(t, owned)
	})

	t.Run("unknown account reads as not owned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		owned, err := client.ValidateAccountOwnership(context.Background(), accountID, userID)
		require.NoError(t, err)
		assert.False(t, owned)
	})

	t.Run("server error is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		_, err := client.ValidateAccountOwnership(context.Background(), accountID, userID)
		assert.Error(t, err)
	})
}

func TestGetAccountBalance(t *testing.T) {
	accountID := uuid.New()

	t.Run("parses balance without float drift", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, fmt.Sprintf("/accounts/%s/balance", accountID), r.URL.Path)
			io.WriteString(w, `{"balance": 1234.56789, "accountNumber": "100200300"}`)
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		balance, err := client.GetAccountBalance(context.Background(), accountID)
		require.NoError(t, err)
		assert.Equal(t, "1234.56789", balance.String())
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		_, err := client.GetAccountBalance(context.Background(), accountID)
		assert.Error(t, err)
	})
}

func TestUpdateAccountBalance(t *testing.T) {
	accountID := uuid.New()

	t.Run("sends the balance as a JSON number", func(t *testing.T) {
		var gotBody string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, fmt.Sprintf("/accounts/%s/balance", accountID), r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		ok, err := client.UpdateAccountBalance(context.Background(), accountID, decimal.RequireFromString("600.00"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"balance": 600.00}`, gotBody)
	})

	t.Run("404 is a remote-reported failure, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		ok, err := client.UpdateAccountBalance(context.Background(), accountID, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unreachable server is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := accounts.NewClient(srv.URL, time.Second)
		_, err := client.UpdateAccountBalance(context.Background(), accountID, decimal.NewFromInt(100))
		assert.Error(t, err)
	})
}
