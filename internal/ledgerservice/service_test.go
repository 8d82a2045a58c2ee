package ledgerservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/memrepo"
	"github.com/go-petr/pet-wallet/internal/metrics"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/lockpkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// faultyRepo injects failures into the units of work of a RepoMem.
type faultyRepo struct {
	*memrepo.RepoMem

	mu         sync.Mutex
	conflicts  int
	failAppend bool
	failSave   bool
}

func (r *faultyRepo) ExecTx(ctx context.Context, fn func(domain.Store) error) error {
	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()

		return errorspkg.ErrConflict
	}
	r.mu.Unlock()

	return r.RepoMem.ExecTx(ctx, func(st domain.Store) error {
		return fn(faultyStore{Store: st, failAppend: r.failAppend, failSave: r.failSave})
	})
}

type faultyStore struct {
	domain.Store
	failAppend bool
	failSave   bool
}

func (s faultyStore) AppendTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if s.failAppend {
		return domain.Transaction{}, errDiskFull
	}

	return s.Store.AppendTransaction(ctx, t)
}

func (s faultyStore) SaveBalance(ctx context.Context, b domain.Balance) (domain.Balance, error) {
	if s.failSave {
		return domain.Balance{}, errDiskFull
	}

	return s.Store.SaveBalance(ctx, b)
}

// nopLocker lets every operation through, leaving isolation to the store.
type nopLocker struct{}

func (nopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, _ string) (func(), error) {
	return nil, context.DeadlineExceeded
}

func newTestService(repo Repo) *Service {
	return New(repo, lockpkg.NewTable(), currencypkg.Default, nil, 3)
}

func balancesOf(t *testing.T, repo Repo, userID string) map[string]int64 {
	t.Helper()

	balances, err := repo.FindBalances(context.Background(), userID)
	require.NoError(t, err)

	res := make(map[string]int64, len(balances))
	for _, b := range balances {
		res[b.Currency] = b.Amount
	}

	return res
}

func TestExecute(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	type op struct {
		kind     domain.Kind
		amount   int64
		currency string
		wantErr  error
	}

	testCases := []struct {
		name         string
		ops          []op
		wantBalances map[string]int64
		wantLog      int
	}{
		{
			name:         "Deposit",
			ops:          []op{{domain.Deposit, 100, "USD", nil}},
			wantBalances: map[string]int64{"USD": 100},
			wantLog:      1,
		},
		{
			name:         "WithdrawNeverSeenAccount",
			ops:          []op{{domain.Withdraw, 100, "USD", domain.ErrInsufficientFunds}},
			wantBalances: map[string]int64{},
		},
		{
			name: "WithdrawMoreThanBalance",
			ops: []op{
				{domain.Deposit, 100, "USD", nil},
				{domain.Withdraw, 200, "USD", domain.ErrInsufficientFunds},
			},
			wantBalances: map[string]int64{"USD": 100},
			wantLog:      1,
		},
		{
			name: "CurrenciesAreIsolated",
			ops: []op{
				{domain.Deposit, 100, "USD", nil},
				{domain.Deposit, 100, "EUR", nil},
				{domain.Withdraw, 100, "USD", nil},
			},
			wantBalances: map[string]int64{"USD": 0, "EUR": 100},
			wantLog:      3,
		},
		{
			name:         "UnknownCurrency",
			ops:          []op{{domain.Withdraw, 100, "USD2", domain.ErrUnknownCurrency}},
			wantBalances: map[string]int64{},
		},
		{
			name:         "ZeroAmount",
			ops:          []op{{domain.Deposit, 0, "USD", domain.ErrInvalidAmount}},
			wantBalances: map[string]int64{},
		},
		{
			name:         "NegativeAmount",
			ops:          []op{{domain.Withdraw, -5, "USD", domain.ErrInvalidAmount}},
			wantBalances: map[string]int64{},
		},
		{
			name:         "CurrencyCheckedBeforeAmount",
			ops:          []op{{domain.Deposit, -5, "GPB", domain.ErrUnknownCurrency}},
			wantBalances: map[string]int64{},
		},
		{
			name:         "AmountCheckedBeforeFunds",
			ops:          []op{{domain.Withdraw, 0, "USD", domain.ErrInvalidAmount}},
			wantBalances: map[string]int64{},
		},
		{
			name: "DepositOverflow",
			ops: []op{
				{domain.Deposit, 1<<63 - 1, "GBP", nil},
				{domain.Deposit, 1, "GBP", domain.ErrInvalidAmount},
			},
			wantBalances: map[string]int64{"GBP": 1<<63 - 1},
			wantLog:      1,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := memrepo.NewRepoMem()
			service := newTestService(repo)
			service.now = func() time.Time { return now }

			userID := randompkg.UserID()

			for _, o := range tc.ops {
				receipt, err := service.Execute(ctx, userID, o.amount, o.currency, o.kind)
				require.ErrorIs(t, err, o.wantErr)

				if o.wantErr != nil {
					require.Empty(t, receipt)
					continue
				}

				require.Equal(t, o.kind, receipt.Transaction.Kind())
				require.Equal(t, now, receipt.Transaction.CreatedAt)
				require.Equal(t, receipt.Transaction.ID, receipt.Balance.LastTransactionID)
				require.Equal(t, now, receipt.Balance.ModifiedAt)
			}

			if diff := cmp.Diff(tc.wantBalances, balancesOf(t, repo, userID)); diff != "" {
				t.Errorf("balances returned unexpected difference (-want +got):\n%s", diff)
			}

			log, err := repo.ListTransactions(ctx, domain.ListTransactionsParams{UserID: userID})
			require.NoError(t, err)
			require.Len(t, log, tc.wantLog)
		})
	}
}

func TestExecuteReceipt(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.NewRepoMem()
	service := newTestService(repo)

	first, err := service.Execute(ctx, "alice", 100, "EUR", domain.Deposit)
	require.NoError(t, err)

	second, err := service.Execute(ctx, "alice", 40, "EUR", domain.Withdraw)
	require.NoError(t, err)

	want := domain.Receipt{
		Transaction: domain.Transaction{
			ID:             first.Transaction.ID + 1,
			UserID:         "alice",
			Currency:       "EUR",
			WithdrawAmount: 40,
			CreatedAt:      time.Now().UTC(),
		},
		Balance: domain.Balance{
			ID:                first.Balance.ID,
			UserID:            "alice",
			Currency:          "EUR",
			Amount:            60,
			LastTransactionID: first.Transaction.ID + 1,
			ModifiedAt:        time.Now().UTC(),
		},
	}

	if diff := cmp.Diff(want, second, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("Execute returned unexpected difference (-want +got):\n%s", diff)
	}
}

func TestExecuteStorageFailure(t *testing.T) {
	testCases := []struct {
		name       string
		failAppend bool
		failSave   bool
	}{
		{name: "AppendTransaction", failAppend: true},
		{name: "SaveBalance", failSave: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := &faultyRepo{RepoMem: memrepo.NewRepoMem()}
			service := newTestService(repo)

			_, err := service.Execute(ctx, "alice", 100, "USD", domain.Deposit)
			require.NoError(t, err)

			repo.failAppend, repo.failSave = tc.failAppend, tc.failSave

			_, err = service.Execute(ctx, "alice", 50, "USD", domain.Withdraw)
			require.ErrorIs(t, err, errorspkg.ErrInternal)

			require.Equal(t, map[string]int64{"USD": 100}, balancesOf(t, repo, "alice"))

			log, err := repo.ListTransactions(ctx, domain.ListTransactionsParams{UserID: "alice"})
			require.NoError(t, err)
			require.Len(t, log, 1)
		})
	}
}

func TestExecuteRetriesConflicts(t *testing.T) {
	testCases := []struct {
		name      string
		conflicts int
		wantErr   error
	}{
		{name: "RecoversWithinBudget", conflicts: 3},
		{name: "GivesUp", conflicts: 4, wantErr: errorspkg.ErrInternal},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := &faultyRepo{RepoMem: memrepo.NewRepoMem(), conflicts: tc.conflicts}
			m := metrics.New(prometheus.NewRegistry())
			service := New(repo, lockpkg.NewTable(), currencypkg.Default, m, 3)

			_, err := service.Execute(ctx, "alice", 10, "USD", domain.Deposit)
			require.ErrorIs(t, err, tc.wantErr)

			require.Equal(t, 3.0, testutil.ToFloat64(m.ConflictsTotal.WithLabelValues("deposit")))
		})
	}
}

func TestExecuteLockFailure(t *testing.T) {
	repo := memrepo.NewRepoMem()
	service := New(repo, failingLocker{}, currencypkg.Default, nil, 3)

	_, err := service.Execute(context.Background(), "alice", 10, "USD", domain.Deposit)
	require.ErrorIs(t, err, errorspkg.ErrInternal)
	require.Empty(t, balancesOf(t, repo, "alice"))
}

func TestExecuteMockedStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domain.NewMockTxStore(ctrl)
	store := domain.NewMockStore(ctrl)

	repo.EXPECT().ExecTx(gomock.Any(), gomock.Any()).
		Times(1).
		DoAndReturn(func(_ context.Context, fn func(domain.Store) error) error {
			return fn(store)
		})

	gomock.InOrder(
		store.EXPECT().FindBalance(gomock.Any(), "alice", "USD").
			Return(domain.Balance{ID: 4, UserID: "alice", Currency: "USD", Amount: 30}, nil),
		store.EXPECT().AppendTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tr domain.Transaction) (domain.Transaction, error) {
				tr.ID = 9
				return tr, nil
			}),
		store.EXPECT().SaveBalance(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b domain.Balance) (domain.Balance, error) {
				return b, nil
			}),
	)

	receipt, err := New(repo, lockpkg.NewTable(), currencypkg.Default, nil, 0).
		Execute(context.Background(), "alice", 30, "USD", domain.Withdraw)
	require.NoError(t, err)
	require.Equal(t, int64(0), receipt.Balance.Amount)
	require.Equal(t, int64(9), receipt.Balance.LastTransactionID)
	require.Equal(t, int64(4), receipt.Balance.ID)
}

func TestConcurrentWithdrawals(t *testing.T) {
	const n = 50

	ctx := context.Background()
	repo := memrepo.NewRepoMem()
	m := metrics.New(prometheus.NewRegistry())
	service := New(repo, lockpkg.NewTable(), currencypkg.Default, m, 3)

	_, err := service.Execute(ctx, "alice", 500, "USD", domain.Deposit)
	require.NoError(t, err)

	var wg sync.WaitGroup

	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := service.Execute(ctx, "alice", 500, "USD", domain.Withdraw)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var ok, insufficient int

	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	require.Equal(t, 1, ok)
	require.Equal(t, n-1, insufficient)
	require.Equal(t, map[string]int64{"USD": 0}, balancesOf(t, repo, "alice"))
	require.Equal(t, float64(n-1), testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("withdraw", OutcomeInsufficientFunds)))
}

func TestConcurrentDepositsWithoutLocks(t *testing.T) {
	const n = 20

	ctx := context.Background()
	repo := memrepo.NewRepoMem()
	// Every conflicting unit of work loses to a committed one, so n retries always suffice.
	service := New(repo, nopLocker{}, currencypkg.Default, nil, n)

	var wg sync.WaitGroup

	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := service.Execute(ctx, "bob", 10, "GBP", domain.Deposit)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, map[string]int64{"GBP": 10 * n}, balancesOf(t, repo, "bob"))

	log, err := repo.ListTransactions(ctx, domain.ListTransactionsParams{UserID: "bob"})
	require.NoError(t, err)
	require.Len(t, log, n)
}

func TestConcurrentAccountsProceedInParallel(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.NewRepoMem()
	locks := lockpkg.NewTable()
	service := New(repo, locks, currencypkg.Default, nil, 3)

	// Holding the lock of one account must not block another account.
	unlock, err := locks.Lock(ctx, domain.AccountKey("alice", "USD"))
	require.NoError(t, err)
	defer unlock()

	_, err = service.Execute(ctx, "alice", 10, "EUR", domain.Deposit)
	require.NoError(t, err)

	_, err = service.Execute(ctx, "bob", 10, "USD", domain.Deposit)
	require.NoError(t, err)

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err = service.Execute(timeoutCtx, "alice", 10, "USD", domain.Deposit)
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.NewRepoMem()
	service := newTestService(repo)

	for _, c := range []string{"USD", "EUR", "USD"} {
		_, err := service.Execute(ctx, "alice", 10, c, domain.Deposit)
		require.NoError(t, err)
	}

	got, err := service.History(ctx, domain.ListTransactionsParams{UserID: "alice", Currency: "USD"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = service.History(ctx, domain.ListTransactionsParams{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	_, err = service.History(ctx, domain.ListTransactionsParams{UserID: "alice", Currency: "XXX"})
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
}
