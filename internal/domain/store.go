package domain

import "context"

// Store is the persistence contract of the ledger.
//
//go:generate mockgen -source store.go -destination store_mock.go -package domain
type Store interface {
	// FindBalance returns ErrBalanceNotFound when the account has no balance row.
	FindBalance(ctx context.Context, userID, currency string) (Balance, error)
	// SaveBalance inserts a new balance or updates an existing one.
	SaveBalance(ctx context.Context, b Balance) (Balance, error)
	// AppendTransaction stores the entry and returns it with its assigned id.
	AppendTransaction(ctx context.Context, t Transaction) (Transaction, error)
	FindBalances(ctx context.Context, userID string) ([]Balance, error)
	ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error)
}

// TxStore is a Store able to run a unit of work.
//
// ExecTx commits every write made through the Store given to fn if and only if fn returns nil.
// The error returned by fn is passed back unchanged.
type TxStore interface {
	Store
	ExecTx(ctx context.Context, fn func(Store) error) error
}
