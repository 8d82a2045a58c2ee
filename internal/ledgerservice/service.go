// Package ledgerservice manages the transaction engine of the ledger.
package ledgerservice

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-petr/pet-wallet/internal/accountservice"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by ledger service layer.
type Repo interface {
	domain.Store
	ExecTx(ctx context.Context, fn func(domain.Store) error) error
}

// Locker serializes the operations on one account.
//
// Lock blocks until the key is free or ctx is done. The returned func releases the key.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Recorder collects the outcomes of ledger operations.
type Recorder interface {
	ObserveTransaction(kind, outcome string, elapsed time.Duration)
	ObserveConflict(kind string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransaction(string, string, time.Duration) {}
func (nopRecorder) ObserveConflict(string)                           {}

// Outcome labels reported to the Recorder.
const (
	OutcomeOK                = "ok"
	OutcomeUnknownCurrency   = "unknown_currency"
	OutcomeInvalidAmount     = "invalid_amount"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeError             = "error"
)

// Service facilitates ledger service layer logic.
type Service struct {
	repo       Repo
	locker     Locker
	currencies currencypkg.Set
	recorder   Recorder
	maxRetries int
	now        func() time.Time
}

// New returns ledger service struct to execute deposits and withdrawals.
//
// A nil recorder disables metrics. maxRetries is the number of times a unit of work
// rejected for a storage conflict is run again.
func New(repo Repo, locker Locker, currencies currencypkg.Set, recorder Recorder, maxRetries int) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Service{
		repo:       repo,
		locker:     locker,
		currencies: currencies,
		recorder:   recorder,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Execute applies a deposit or a withdrawal of amount minor units to the account of the user.
//
// Business rejections are reported as domain.ErrUnknownCurrency, domain.ErrInvalidAmount and
// domain.ErrInsufficientFunds, checked in this order. Any storage failure is reported as
// errorspkg.ErrInternal and leaves the account untouched.
func (s *Service) Execute(ctx context.Context, userID string, amount int64, currency string, kind domain.Kind) (domain.Receipt, error) {
	start := time.Now()

	receipt, err := s.execute(ctx, userID, amount, currency, kind)

	s.recorder.ObserveTransaction(kind.String(), outcome(err), time.Since(start))

	return receipt, err
}

func (s *Service) execute(ctx context.Context, userID string, amount int64, currency string, kind domain.Kind) (domain.Receipt, error) {
	l := zerolog.Ctx(ctx)

	if !s.currencies.IsSupported(currency) {
		l.Info().Str("currency", currency).Msg("unknown currency")
		return domain.Receipt{}, domain.ErrUnknownCurrency
	}

	if amount <= 0 {
		l.Info().Int64("amount", amount).Msg("invalid amount")
		return domain.Receipt{}, domain.ErrInvalidAmount
	}

	unlock, err := s.locker.Lock(ctx, domain.AccountKey(userID, currency))
	if err != nil {
		l.Error().Err(err).Msg("cannot lock account")
		return domain.Receipt{}, errorspkg.ErrInternal
	}
	defer unlock()

	for attempt := 0; ; attempt++ {
		receipt, err := s.commit(ctx, userID, amount, currency, kind)
		if !errors.Is(err, errorspkg.ErrConflict) {
			return receipt, err
		}

		if attempt >= s.maxRetries {
			l.Error().Err(err).Int("attempts", attempt+1).Msg("giving up on conflicting unit of work")
			return domain.Receipt{}, errorspkg.ErrInternal
		}

		s.recorder.ObserveConflict(kind.String())
		l.Info().Err(err).Int("attempt", attempt+1).Msg("retrying unit of work")
	}
}

// commit runs one unit of work. Its writes are all stored or none is.
func (s *Service) commit(ctx context.Context, userID string, amount int64, currency string, kind domain.Kind) (domain.Receipt, error) {
	var receipt domain.Receipt

	err := s.repo.ExecTx(ctx, func(st domain.Store) error {
		balance, err := accountservice.ResolveOrCreate(ctx, st, userID, currency)
		if err != nil {
			return err
		}

		switch kind {
		case domain.Withdraw:
			if balance.Amount < amount {
				return domain.ErrInsufficientFunds
			}
		case domain.Deposit:
			if balance.Amount > math.MaxInt64-amount {
				return domain.ErrInvalidAmount
			}
		default:
			return errorspkg.ErrInternal
		}

		t := domain.NewTransaction(kind, userID, currency, amount, s.now().UTC())

		t, err = st.AppendTransaction(ctx, t)
		if err != nil {
			return err
		}

		balance.Apply(t)

		balance, err = st.SaveBalance(ctx, balance)
		if err != nil {
			return err
		}

		receipt = domain.Receipt{Transaction: t, Balance: balance}

		return nil
	})

	if err != nil {
		return domain.Receipt{}, normalize(ctx, err)
	}

	return receipt, nil
}

// normalize keeps the errors callers react to and reports every other one as ErrInternal.
func normalize(ctx context.Context, err error) error {
	for _, known := range []error{
		domain.ErrInsufficientFunds,
		domain.ErrInvalidAmount,
		errorspkg.ErrConflict,
		errorspkg.ErrInternal,
	} {
		if errors.Is(err, known) {
			return known
		}
	}

	zerolog.Ctx(ctx).Error().Err(err).Send()

	return errorspkg.ErrInternal
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrUnknownCurrency):
		return OutcomeUnknownCurrency
	case errors.Is(err, domain.ErrInvalidAmount):
		return OutcomeInvalidAmount
	case errors.Is(err, domain.ErrInsufficientFunds):
		return OutcomeInsufficientFunds
	}

	return OutcomeError
}

// History returns the log entries of the user in id order.
func (s *Service) History(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	if arg.Currency != "" && !s.currencies.IsSupported(arg.Currency) {
		return nil, domain.ErrUnknownCurrency
	}

	items, err := s.repo.ListTransactions(ctx, arg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
