package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client talks to the accounts service, which owns every balance. One
// synchronous round trip per call, no retries, no caching of balances.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ValidateAccountOwnership reports whether the account belongs to the user.
// An unknown account reads as not owned.
func (c *Client) ValidateAccountOwnership(ctx context.Context, accountID, userID uuid.UUID) (bool, error) {
	url := fmt.Sprintf("%s/accounts/%s/ownership?user_id=%s", c.baseURL, accountID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("accounts service returned %d", resp.StatusCode)
	}

	var result struct {
		Owned bool `json:"owned"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return result.Owned, nil
}

// GetAccountBalance returns the account's current balance. The balance
// arrives as a JSON number and never passes through float64.
func (c *Client) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/accounts/%s/balance", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("accounts service returned %d", resp.StatusCode)
	}

	var result struct {
		Balance       json.Number `json:"balance"`
		AccountNumber string      `json:"accountNumber"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("decode response: %w", err)
	}

	balance, err := decimal.NewFromString(result.Balance.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", result.Balance, err)
	}
	return balance, nil
}

// UpdateAccountBalance overwrites the account's balance. A non-2xx status is
// a remote-reported failure (false, nil); only transport problems return an
// error.
func (c *Client) UpdateAccountBalance(ctx context.Context, accountID uuid.UUID, newBalance decimal.Decimal) (bool, error) {
	payload := struct {
		Balance json.Number `json:"balance"`
	}{Balance: json.Number(newBalance.String())}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/balance", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
