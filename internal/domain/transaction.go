package domain

import (
	"errors"
	"time"
)

var (
	// ErrUnknownCurrency indicates that the currency is not supported.
	ErrUnknownCurrency = errors.New("Unknown currency")
	// ErrInvalidAmount indicates a non positive amount, or one that would overflow the balance.
	ErrInvalidAmount = errors.New("Invalid amount")
	// ErrInsufficientFunds indicates that the balance does not cover the withdrawal.
	ErrInsufficientFunds = errors.New("Insufficient funds")
)

// Kind tells deposits and withdrawals apart.
type Kind int

// Transaction kinds.
const (
	Deposit Kind = iota + 1
	Withdraw
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	}

	return "unknown"
}

// Transaction is an entry of the append-only ledger log.
//
// Exactly one of DepositAmount and WithdrawAmount is non-zero.
type Transaction struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	Currency       string    `json:"currency"`
	DepositAmount  int64     `json:"deposit_amount"`
	WithdrawAmount int64     `json:"withdraw_amount"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewTransaction builds an unpersisted log entry of the given kind.
func NewTransaction(kind Kind, userID, currency string, amount int64, at time.Time) Transaction {
	t := Transaction{
		UserID:    userID,
		Currency:  currency,
		CreatedAt: at,
	}

	if kind == Deposit {
		t.DepositAmount = amount
	} else {
		t.WithdrawAmount = amount
	}

	return t
}

// Kind returns the kind of the transaction.
func (t Transaction) Kind() Kind {
	if t.DepositAmount != 0 {
		return Deposit
	}

	return Withdraw
}

// Delta is the signed effect of the transaction on its balance.
func (t Transaction) Delta() int64 {
	return t.DepositAmount - t.WithdrawAmount
}

// ListTransactionsParams is the input data to read the log of a user.
//
// An empty Currency matches every currency; a zero Limit means no limit.
type ListTransactionsParams struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

// Receipt is the result of an accepted transaction.
type Receipt struct {
	Transaction Transaction `json:"transaction"`
	Balance     Balance     `json:"balance"`
}
