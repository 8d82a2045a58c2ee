package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/go-petr/pet-wallet/pkg/web"
)

// ErrUnexpectedResponse is returned when the wallet API answers with anything but a ledger result.
var ErrUnexpectedResponse = errors.New("unexpected wallet response")

// Client is the wallet API as seen by one simulated user.
type Client interface {
	Deposit(ctx context.Context, userID string, amount int64, currency string) (string, error)
	Withdraw(ctx context.Context, userID string, amount int64, currency string) (string, error)
	Balances(ctx context.Context, userID string) (map[string]int64, error)
}

// HTTPClient calls the wallet HTTP API with the bearer token of a single user.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient returns a client sending requests to baseURL, e.g. "http://localhost:8080".
func NewHTTPClient(baseURL, token string, httpClient *http.Client) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// HTTPClientFactory issues a token for every user and gives each user its own HTTPClient.
func HTTPClientFactory(baseURL string, maker tokenpkg.Maker, tokenTTL, timeout time.Duration) func(userID string) (Client, error) {
	return func(userID string) (Client, error) {
		token, _, err := maker.CreateToken(userID, tokenTTL)
		if err != nil {
			return nil, fmt.Errorf("cannot create token for %s: %w", userID, err)
		}

		return NewHTTPClient(baseURL, token, &http.Client{Timeout: timeout}), nil
	}
}

type operationRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Deposit adds amount to the balance of the user and returns the ledger message.
func (c *HTTPClient) Deposit(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	return c.operation(ctx, userID, "deposit", amount, currency)
}

// Withdraw subtracts amount from the balance of the user and returns the ledger message.
func (c *HTTPClient) Withdraw(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	return c.operation(ctx, userID, "withdraw", amount, currency)
}

func (c *HTTPClient) operation(ctx context.Context, userID, op string, amount int64, currency string) (string, error) {
	body, err := json.Marshal(operationRequest{Amount: amount, Currency: currency})
	if err != nil {
		return "", err
	}

	var res web.Response

	if err := c.do(ctx, http.MethodPost, c.walletURL(userID, op), bytes.NewReader(body), &res); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if res.Message == nil {
		return "", fmt.Errorf("%s: %w: no message", op, ErrUnexpectedResponse)
	}

	return *res.Message, nil
}

type responseBalances struct {
	Data struct {
		Balances map[string]int64 `json:"balances"`
	} `json:"data"`
}

// Balances returns the amount held by the user in every currency.
func (c *HTTPClient) Balances(ctx context.Context, userID string) (map[string]int64, error) {
	var res responseBalances

	if err := c.do(ctx, http.MethodGet, c.walletURL(userID, "balances"), nil, &res); err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}

	if res.Data.Balances == nil {
		return map[string]int64{}, nil
	}

	return res.Data.Balances, nil
}

func (c *HTTPClient) walletURL(userID, op string) string {
	return c.baseURL + "/wallets/" + url.PathEscape(userID) + "/" + op
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthHeaderKey, middleware.AuthTypeBearer+" "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	return nil
}
