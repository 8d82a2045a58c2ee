// Package accountservice manages business logic layer of account balances.
package accountservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	FindBalance(ctx context.Context, userID, currency string) (domain.Balance, error)
	FindBalances(ctx context.Context, userID string) ([]domain.Balance, error)
}

// ResolveOrCreate returns the balance of the account.
//
// An account without a balance row gets a zero balance that is not persisted.
// Any other repo failure is reported as it is, never as a missing balance.
func ResolveOrCreate(ctx context.Context, repo Repo, userID, currency string) (domain.Balance, error) {
	b, err := repo.FindBalance(ctx, userID, currency)

	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, domain.ErrBalanceNotFound):
		return domain.NewBalance(userID, currency), nil
	case errors.Is(err, errorspkg.ErrConflict):
		return domain.Balance{}, err
	}

	zerolog.Ctx(ctx).Error().Err(err).Msgf("ResolveOrCreate(ctx, %q, %q)", userID, currency)

	return domain.Balance{}, errorspkg.ErrInternal
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage balance reads.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// List returns every balance of the user ordered by currency.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Balance, error) {
	balances, err := s.repo.FindBalances(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return balances, nil
}

// Balances returns the amount of every currency the user holds a balance in.
//
// The map is empty, not nil, for a user without balances.
func (s *Service) Balances(ctx context.Context, userID string) (map[string]int64, error) {
	balances, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make(map[string]int64, len(balances))
	for _, b := range balances {
		res[b.Currency] = b.Amount
	}

	return res, nil
}
