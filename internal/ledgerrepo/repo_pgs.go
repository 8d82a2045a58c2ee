// Package ledgerrepo manages the Postgres repository layer of the ledger.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns ledger RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

var _ domain.TxStore = (*RepoPGS)(nil)

const findBalanceQuery = `
SELECT
	id, user_id, currency, amount, last_transaction_id, modified_at
FROM balances
WHERE user_id = $1 AND currency = $2
FOR UPDATE
`

// FindBalance returns the balance of the account and locks its row until the end of the transaction.
func (r *RepoPGS) FindBalance(ctx context.Context, userID, currency string) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, findBalanceQuery, userID, currency)

	var b domain.Balance

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Currency,
		&b.Amount,
		&b.LastTransactionID,
		&b.ModifiedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, domain.ErrBalanceNotFound
		}

		l.Error().Err(err).Msgf("FindBalance(ctx, %q, %q)", userID, currency)

		return b, mapError(err)
	}

	return b, nil
}

const insertBalanceQuery = `
INSERT INTO
    balances (user_id, currency, amount, last_transaction_id, modified_at)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, user_id, currency, amount, last_transaction_id, modified_at
`

const updateBalanceQuery = `
UPDATE balances
SET amount = $1, last_transaction_id = $2, modified_at = $3
WHERE id = $4
RETURNING id, user_id, currency, amount, last_transaction_id, modified_at
`

// SaveBalance inserts the balance when it was never persisted and updates it otherwise.
func (r *RepoPGS) SaveBalance(ctx context.Context, b domain.Balance) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	var row *sql.Row
	if b.IsNew() {
		row = r.db.QueryRowContext(ctx, insertBalanceQuery,
			b.UserID,
			b.Currency,
			b.Amount,
			b.LastTransactionID,
			b.ModifiedAt,
		)
	} else {
		row = r.db.QueryRowContext(ctx, updateBalanceQuery,
			b.Amount,
			b.LastTransactionID,
			b.ModifiedAt,
			b.ID,
		)
	}

	var saved domain.Balance

	err := row.Scan(
		&saved.ID,
		&saved.UserID,
		&saved.Currency,
		&saved.Amount,
		&saved.LastTransactionID,
		&saved.ModifiedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("SaveBalance(ctx, %+v)", b)

		if errors.Is(err, sql.ErrNoRows) {
			return saved, errorspkg.ErrInternal
		}

		return saved, mapError(err)
	}

	return saved, nil
}

const appendTransactionQuery = `
INSERT INTO
    transactions (user_id, currency, deposit_amount, withdraw_amount, created_at)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, user_id, currency, deposit_amount, withdraw_amount, created_at
`

// AppendTransaction adds the entry to the log and returns it with its id.
func (r *RepoPGS) AppendTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, appendTransactionQuery,
		t.UserID,
		t.Currency,
		t.DepositAmount,
		t.WithdrawAmount,
		t.CreatedAt,
	)

	var got domain.Transaction

	err := row.Scan(
		&got.ID,
		&got.UserID,
		&got.Currency,
		&got.DepositAmount,
		&got.WithdrawAmount,
		&got.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("AppendTransaction(ctx, %+v)", t)
		return got, mapError(err)
	}

	return got, nil
}

const findBalancesQuery = `
SELECT
	id, user_id, currency, amount, last_transaction_id, modified_at
FROM balances
WHERE user_id = $1
ORDER BY currency
`

// FindBalances returns every balance of the user ordered by currency.
func (r *RepoPGS) FindBalances(ctx context.Context, userID string) ([]domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, findBalancesQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, mapError(err)
	}
	defer rows.Close()

	items := []domain.Balance{}

	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Currency,
			&b.Amount,
			&b.LastTransactionID,
			&b.ModifiedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, b)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, mapError(err)
	}

	return items, nil
}

const listTransactionsQuery = `
SELECT
	id, user_id, currency, deposit_amount, withdraw_amount, created_at
FROM transactions
WHERE user_id = $1 AND ($2 = '' OR currency = $2)
ORDER BY id
LIMIT NULLIF($3, 0) OFFSET $4
`

// ListTransactions returns the log entries of the user in id order.
func (r *RepoPGS) ListTransactions(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listTransactionsQuery,
		arg.UserID,
		arg.Currency,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, mapError(err)
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Currency,
			&t.DepositAmount,
			&t.WithdrawAmount,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, mapError(err)
	}

	return items, nil
}

// ExecTx runs fn inside a serializable transaction and commits it when fn returns nil.
//
// A repo created with NewTxRepoPGS is already bound to a transaction, so fn runs on it directly.
func (r *RepoPGS) ExecTx(ctx context.Context, fn func(domain.Store) error) error {
	if r.conn == nil {
		return fn(r)
	}

	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		l.Error().Err(err).Send()
		return mapError(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(NewTxRepoPGS(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return mapError(err)
	}

	return nil
}
