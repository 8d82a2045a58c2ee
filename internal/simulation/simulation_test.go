package simulation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-wallet/cmd/httpserver"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
)

func newWalletServer(t *testing.T) (*httptest.Server, *httpserver.Server) {
	t.Helper()

	config := configpkg.Config{
		DBDriver:            configpkg.DriverMemory,
		TokenSymmetricKey:   "12345678901234567890123456789012",
		TokenMaker:          configpkg.TokenPaseto,
		SupportedCurrencies: "USD,EUR,GBP",
		LockBackend:         configpkg.LockLocal,
		LedgerMaxRetries:    3,
	}

	server, err := httpserver.New(nil, zerolog.Nop(), config)
	require.NoError(t, err)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return ts, server
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "OK",
			config: Config{Users: 250, Workers: 1, Rounds: 1},
		},
		{
			name:    "NoUsers",
			config:  Config{Users: 0, Workers: 1, Rounds: 1},
			wantErr: ErrInvalidUsers,
		},
		{
			name:    "TooManyUsers",
			config:  Config{Users: 251, Workers: 1, Rounds: 1},
			wantErr: ErrInvalidUsers,
		},
		{
			name:    "NoWorkers",
			config:  Config{Users: 1, Workers: 0, Rounds: 1},
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "NoRounds",
			config:  Config{Users: 1, Workers: 1, Rounds: 0},
			wantErr: ErrInvalidRounds,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.config.Validate(), tc.wantErr)
		})
	}
}

func TestRunEveryRoundInOrder(t *testing.T) {
	ts, server := newWalletServer(t)

	newClient := HTTPClientFactory(ts.URL, server.TokenMaker, time.Minute, 5*time.Second)

	sim, err := New(Config{Users: 1, Workers: 1, Rounds: 3, RunID: "ordered"}, newClient)
	require.NoError(t, err)

	next := 0
	sim.pick = func(n int) int {
		i := next % n
		next++
		return i
	}

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	want := &Report{
		Calls:    map[string]int{"deposit": 6, "withdraw": 9, "balances": 5},
		Messages: map[string]int{"": 8, "Insufficient funds": 6, "Unknown currency": 1},
		Failures: map[string]int{},
		Rounds:   map[string]int{"Round A": 1, "Round B": 1, "Round C": 1},
	}

	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("sim.Run returned unexpected report (-want +got):\n%s", diff)
	}

	c, err := newClient(sim.UserID(1))
	require.NoError(t, err)

	balances, err := c.Balances(context.Background(), sim.UserID(1))
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"USD": 0, "EUR": 100}, balances)
}

func TestRunConcurrentUsers(t *testing.T) {
	ts, server := newWalletServer(t)

	newClient := HTTPClientFactory(ts.URL, server.TokenMaker, time.Minute, 5*time.Second)

	config := Config{Users: 5, Workers: 4, Rounds: 10}

	sim, err := New(config, newClient)
	require.NoError(t, err)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, report.Failures)

	rounds := 0
	for _, n := range report.Rounds {
		rounds += n
	}

	require.Equal(t, config.Users*config.Workers*config.Rounds, rounds)
	require.Equal(t, report.Rounds["Round B"], report.Messages["Unknown currency"])

	for i := 1; i <= config.Users; i++ {
		c, err := newClient(sim.UserID(i))
		require.NoError(t, err)

		balances, err := c.Balances(context.Background(), sim.UserID(i))
		require.NoError(t, err)

		for currency, amount := range balances {
			require.GreaterOrEqual(t, amount, int64(0), currency)
		}
	}
}

type failingClient struct {
	calls int
}

func (c *failingClient) Deposit(context.Context, string, int64, string) (string, error) {
	c.calls++
	return "", errors.New("connection refused")
}

func (c *failingClient) Withdraw(context.Context, string, int64, string) (string, error) {
	c.calls++
	return "", errors.New("connection refused")
}

func (c *failingClient) Balances(context.Context, string) (map[string]int64, error) {
	c.calls++
	return nil, errors.New("connection refused")
}

func TestPlayRecordsFailures(t *testing.T) {
	c := &failingClient{}
	report := NewReport()

	err := Rounds[1].Play(context.Background(), c, "alice", report)
	require.NoError(t, err)

	require.Equal(t, 5, c.calls)
	require.Equal(t, map[string]int{"deposit": 1, "withdraw": 4}, report.Failures)
	require.Empty(t, report.Messages)
	require.Equal(t, 1, report.Rounds["Round B"])
}

func TestPlayStopsWhenCanceled(t *testing.T) {
	c := &failingClient{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Rounds[0].Play(ctx, c, "alice", NewReport())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, c.calls)
}

func TestHTTPClientUnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	c := NewHTTPClient(ts.URL, "token", ts.Client())

	_, err := c.Deposit(context.Background(), "alice", 100, "USD")
	require.ErrorIs(t, err, ErrUnexpectedResponse)

	_, err = c.Balances(context.Background(), "alice")
	require.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestHTTPClientUnauthorized(t *testing.T) {
	ts, _ := newWalletServer(t)

	c := NewHTTPClient(ts.URL, "not-a-token", ts.Client())

	_, err := c.Withdraw(context.Background(), "alice", 100, "USD")
	require.ErrorIs(t, err, ErrUnexpectedResponse)
}
