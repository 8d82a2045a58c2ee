package ledgerservice

import (
	"context"
	"sort"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// Audit compares every balance of the user with the sum of its log entries.
//
// It reports the accounts whose amount differs from the log and the entries
// newer than the last transaction applied to the balance.
func (s *Service) Audit(ctx context.Context, userID string) (domain.AuditReport, error) {
	l := zerolog.Ctx(ctx)

	report := domain.AuditReport{
		UserID:        userID,
		Discrepancies: []domain.Discrepancy{},
	}

	err := s.repo.ExecTx(ctx, func(st domain.Store) error {
		balances, err := st.FindBalances(ctx, userID)
		if err != nil {
			return err
		}

		log, err := st.ListTransactions(ctx, domain.ListTransactionsParams{UserID: userID})
		if err != nil {
			return err
		}

		report.Discrepancies = reconcile(balances, log)

		return nil
	})
	if err != nil {
		l.Error().Err(err).Msgf("Audit(ctx, %q)", userID)
		return domain.AuditReport{}, errorspkg.ErrInternal
	}

	report.Consistent = len(report.Discrepancies) == 0
	if !report.Consistent {
		l.Warn().Str("user_id", userID).Int("discrepancies", len(report.Discrepancies)).Msg("ledger audit failed")
	}

	return report, nil
}

func reconcile(balances []domain.Balance, log []domain.Transaction) []domain.Discrepancy {
	byCurrency := make(map[string]domain.Balance, len(balances))
	for _, b := range balances {
		byCurrency[b.Currency] = b
	}

	sums := make(map[string]int64)
	unapplied := make(map[string][]int64)

	for _, t := range log {
		sums[t.Currency] += t.Delta()

		if t.ID > byCurrency[t.Currency].LastTransactionID {
			unapplied[t.Currency] = append(unapplied[t.Currency], t.ID)
		}
	}

	currencies := make([]string, 0, len(sums))
	for c := range sums {
		currencies = append(currencies, c)
	}

	for c := range byCurrency {
		if _, ok := sums[c]; !ok {
			currencies = append(currencies, c)
		}
	}

	sort.Strings(currencies)

	res := []domain.Discrepancy{}

	for _, c := range currencies {
		b := byCurrency[c]

		if b.Amount == sums[c] && len(unapplied[c]) == 0 {
			continue
		}

		res = append(res, domain.Discrepancy{
			Currency:          c,
			BalanceAmount:     b.Amount,
			LedgerAmount:      sums[c],
			LastTransactionID: b.LastTransactionID,
			Unapplied:         unapplied[c],
		})
	}

	return res
}
