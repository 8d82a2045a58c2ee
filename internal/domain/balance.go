// Package domain provides definitions of all ledger entities.
package domain

import (
	"errors"
	"time"
)

// ErrBalanceNotFound indicates that no balance row exists for the account.
var ErrBalanceNotFound = errors.New("balance not found")

// Balance holds the current amount of one user in one currency.
//
// Amount is denominated in minor units. ID is zero until the balance is persisted.
type Balance struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"user_id"`
	Currency          string    `json:"currency"`
	Amount            int64     `json:"amount"`
	LastTransactionID int64     `json:"last_transaction_id"`
	ModifiedAt        time.Time `json:"modified_at"`
}

// NewBalance returns an unpersisted zero balance for the account.
func NewBalance(userID, currency string) Balance {
	return Balance{
		UserID:   userID,
		Currency: currency,
	}
}

// IsNew reports whether the balance was never persisted.
func (b Balance) IsNew() bool {
	return b.ID == 0
}

// Apply folds the transaction into the balance.
func (b *Balance) Apply(t Transaction) {
	b.Amount += t.Delta()
	b.LastTransactionID = t.ID
	b.ModifiedAt = t.CreatedAt
}

// AccountKey identifies the account of a user in a currency. It is the unit of concurrency isolation.
func AccountKey(userID, currency string) string {
	// Currency codes have a fixed length, so the key is unambiguous whatever the user id contains.
	return currency + ":" + userID
}
