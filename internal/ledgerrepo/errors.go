package ledgerrepo

import (
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the repository reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
)

const (
	balancesUserCurrencyKey = "balances_user_id_currency_key"
	balancesAmountCheck     = "balances_amount_check"
)

// mapError translates a driver error into an app error.
//
// Both lib/pq and pgx errors are understood, depending on the configured driver.
func mapError(err error) error {
	var code, constraint string

	var pqErr *pq.Error
	var pgErr *pgconn.PgError

	switch {
	case errors.As(err, &pqErr):
		code, constraint = string(pqErr.Code), pqErr.Constraint
	case errors.As(err, &pgErr):
		code, constraint = pgErr.Code, pgErr.ConstraintName
	default:
		return errorspkg.ErrInternal
	}

	return classify(code, constraint)
}

func classify(code, constraint string) error {
	switch code {
	case codeSerializationFailure, codeDeadlockDetected:
		return errorspkg.ErrConflict
	case codeUniqueViolation:
		// Two first transactions of the same account raced to insert its balance.
		if constraint == balancesUserCurrencyKey {
			return errorspkg.ErrConflict
		}
	case codeCheckViolation:
		if constraint == balancesAmountCheck {
			return domain.ErrInsufficientFunds
		}
	}

	return errorspkg.ErrInternal
}
