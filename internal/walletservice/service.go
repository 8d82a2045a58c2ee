// Package walletservice provides the wallet facade: deposit, withdraw and balance inquiry
// reported with the messages clients rely on.
package walletservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
)

// Messages returned by Deposit and Withdraw.
const (
	MsgOK                = ""
	MsgUnknownCurrency   = "Unknown currency"
	MsgInvalidAmount     = "Invalid amount"
	MsgInsufficientFunds = "Insufficient funds"
)

// Engine provides the ledger operations needed by the wallet service.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Engine interface {
	Execute(ctx context.Context, userID string, amount int64, currency string, kind domain.Kind) (domain.Receipt, error)
	History(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
	Audit(ctx context.Context, userID string) (domain.AuditReport, error)
}

// BalanceReader provides the balance reads needed by the wallet service.
type BalanceReader interface {
	Balances(ctx context.Context, userID string) (map[string]int64, error)
}

// Service facilitates wallet service layer logic.
type Service struct {
	engine   Engine
	balances BalanceReader
}

// New returns wallet service struct.
func New(engine Engine, balances BalanceReader) *Service {
	return &Service{
		engine:   engine,
		balances: balances,
	}
}

// Deposit adds amount to the balance of the user in currency.
//
// The message is empty on success. The error is non-nil only when the storage failed.
func (s *Service) Deposit(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	_, err := s.engine.Execute(ctx, userID, amount, currency, domain.Deposit)
	return message(err)
}

// Withdraw subtracts amount from the balance of the user in currency.
//
// The message is empty on success. The error is non-nil only when the storage failed.
func (s *Service) Withdraw(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	_, err := s.engine.Execute(ctx, userID, amount, currency, domain.Withdraw)
	return message(err)
}

// GetBalances returns the amount of every currency the user holds. The map is empty for an unknown user.
func (s *Service) GetBalances(ctx context.Context, userID string) (map[string]int64, error) {
	return s.balances.Balances(ctx, userID)
}

// History returns a page of the log of the user, optionally restricted to one currency.
func (s *Service) History(ctx context.Context, userID, currency string, pageID, pageSize int32) ([]domain.Transaction, error) {
	arg := domain.ListTransactionsParams{
		UserID:   userID,
		Currency: currency,
		Limit:    pageSize,
		Offset:   (pageID - 1) * pageSize,
	}

	return s.engine.History(ctx, arg)
}

// Audit reconciles the balances of the user with the log.
func (s *Service) Audit(ctx context.Context, userID string) (domain.AuditReport, error) {
	return s.engine.Audit(ctx, userID)
}

func message(err error) (string, error) {
	switch {
	case err == nil:
		return MsgOK, nil
	case errors.Is(err, domain.ErrUnknownCurrency):
		return MsgUnknownCurrency, nil
	case errors.Is(err, domain.ErrInvalidAmount):
		return MsgInvalidAmount, nil
	case errors.Is(err, domain.ErrInsufficientFunds):
		return MsgInsufficientFunds, nil
	}

	return "", errorspkg.ErrInternal
}
