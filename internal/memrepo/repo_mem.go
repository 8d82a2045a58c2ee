// Package memrepo provides an in-memory ledger repository.
//
// Units of work stage their writes and validate what they read at commit time.
// A unit of work whose reads were overwritten meanwhile fails with errorspkg.ErrConflict.
package memrepo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoMem keeps balances and the transaction log in memory.
type RepoMem struct {
	mu           sync.Mutex
	balances     map[string]domain.Balance
	versions     map[string]uint64
	transactions []domain.Transaction
	lastBalance  int64
	lastTx       int64
}

// NewRepoMem returns an empty RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		balances: make(map[string]domain.Balance),
		versions: make(map[string]uint64),
	}
}

var _ domain.TxStore = (*RepoMem)(nil)

// FindBalance returns domain.ErrBalanceNotFound when the account has no balance.
func (r *RepoMem) FindBalance(ctx context.Context, userID, currency string) (domain.Balance, error) {
	b, _, err := r.findBalance(ctx, userID, currency)
	return b, err
}

func (r *RepoMem) findBalance(ctx context.Context, userID, currency string) (domain.Balance, uint64, error) {
	if err := ctx.Err(); err != nil {
		return domain.Balance{}, 0, errorspkg.ErrInternal
	}

	key := domain.AccountKey(userID, currency)

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[key]
	if !ok {
		return domain.Balance{}, r.versions[key], domain.ErrBalanceNotFound
	}

	return b, r.versions[key], nil
}

// SaveBalance stores the balance immediately.
func (r *RepoMem) SaveBalance(ctx context.Context, b domain.Balance) (domain.Balance, error) {
	if err := ctx.Err(); err != nil {
		return b, errorspkg.ErrInternal
	}

	cs := newChangeSet()
	cs.save(r, b)

	if err := r.commit(ctx, cs); err != nil {
		return domain.Balance{}, err
	}

	return cs.writes[domain.AccountKey(b.UserID, b.Currency)], nil
}

// AppendTransaction adds the entry to the log immediately.
func (r *RepoMem) AppendTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return t, errorspkg.ErrInternal
	}

	t.ID = r.nextTransactionID()

	cs := newChangeSet()
	cs.appended = append(cs.appended, t)

	if err := r.commit(ctx, cs); err != nil {
		return domain.Transaction{}, err
	}

	return t, nil
}

// FindBalances returns every balance of the user ordered by currency.
func (r *RepoMem) FindBalances(ctx context.Context, userID string) ([]domain.Balance, error) {
	items, _, err := r.findBalances(ctx, userID)
	return items, err
}

func (r *RepoMem) findBalances(ctx context.Context, userID string) ([]domain.Balance, map[string]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errorspkg.ErrInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := []domain.Balance{}
	versions := make(map[string]uint64)

	for key, b := range r.balances {
		if b.UserID == userID {
			items = append(items, b)
			versions[key] = r.versions[key]
		}
	}

	sortBalances(items)

	return items, versions, nil
}

// ListTransactions returns the log entries of the user in id order.
func (r *RepoMem) ListTransactions(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errorspkg.ErrInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return page(filterTransactions(r.transactions, arg.UserID, arg.Currency), arg.Limit, arg.Offset), nil
}

// ExecTx runs fn on a staging view and commits its writes when fn returns nil.
func (r *RepoMem) ExecTx(ctx context.Context, fn func(domain.Store) error) error {
	tx := &txRepo{
		parent:    r,
		changeSet: newChangeSet(),
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := r.commit(ctx, tx.changeSet); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Msg("unit of work rejected")
		return err
	}

	return nil
}

func (r *RepoMem) nextTransactionID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastTx++

	return r.lastTx
}

func (r *RepoMem) nextBalanceID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastBalance++

	return r.lastBalance
}

// changeSet is what a unit of work read and wrote.
type changeSet struct {
	reads    map[string]uint64
	writes   map[string]domain.Balance
	inserted map[string]bool
	appended []domain.Transaction
}

func newChangeSet() *changeSet {
	return &changeSet{
		reads:    make(map[string]uint64),
		writes:   make(map[string]domain.Balance),
		inserted: make(map[string]bool),
	}
}

// save stages b. A new balance gets its id now, like a sequence would give it.
func (cs *changeSet) save(r *RepoMem, b domain.Balance) domain.Balance {
	key := domain.AccountKey(b.UserID, b.Currency)

	if b.IsNew() {
		b.ID = r.nextBalanceID()
		cs.inserted[key] = true
	}

	cs.writes[key] = b

	return b
}

// commit validates the read set and applies the change set atomically.
func (r *RepoMem) commit(ctx context.Context, cs *changeSet) error {
	if err := ctx.Err(); err != nil {
		return errorspkg.ErrInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, version := range cs.reads {
		if r.versions[key] != version {
			return errorspkg.ErrConflict
		}
	}

	for key, b := range cs.writes {
		if b.Amount < 0 {
			return domain.ErrInsufficientFunds
		}

		cur, exists := r.balances[key]

		switch {
		case cs.inserted[key] && exists:
			return errorspkg.ErrConflict
		case !cs.inserted[key] && (!exists || cur.ID != b.ID):
			return errorspkg.ErrInternal
		}
	}

	for key, b := range cs.writes {
		r.balances[key] = b
		r.versions[key]++
	}

	if len(cs.appended) > 0 {
		r.transactions = append(r.transactions, cs.appended...)
		sort.Slice(r.transactions, func(i, j int) bool {
			return r.transactions[i].ID < r.transactions[j].ID
		})
	}

	return nil
}

// txRepo is the view of RepoMem given to a unit of work.
type txRepo struct {
	*changeSet
	parent *RepoMem
}

func (tx *txRepo) FindBalance(ctx context.Context, userID, currency string) (domain.Balance, error) {
	key := domain.AccountKey(userID, currency)

	if b, ok := tx.writes[key]; ok {
		return b, nil
	}

	b, version, err := tx.parent.findBalance(ctx, userID, currency)
	if err != nil && !errors.Is(err, domain.ErrBalanceNotFound) {
		return b, err
	}

	if _, seen := tx.reads[key]; !seen {
		tx.reads[key] = version
	}

	return b, err
}

func (tx *txRepo) SaveBalance(ctx context.Context, b domain.Balance) (domain.Balance, error) {
	if err := ctx.Err(); err != nil {
		return b, errorspkg.ErrInternal
	}

	return tx.save(tx.parent, b), nil
}

func (tx *txRepo) AppendTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return t, errorspkg.ErrInternal
	}

	t.ID = tx.parent.nextTransactionID()
	tx.appended = append(tx.appended, t)

	return t, nil
}

func (tx *txRepo) FindBalances(ctx context.Context, userID string) ([]domain.Balance, error) {
	committed, versions, err := tx.parent.findBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.Balance, len(committed))
	for _, b := range committed {
		key := domain.AccountKey(b.UserID, b.Currency)
		byKey[key] = b

		if _, seen := tx.reads[key]; !seen {
			tx.reads[key] = versions[key]
		}
	}

	for key, b := range tx.writes {
		if b.UserID == userID {
			byKey[key] = b
		}
	}

	items := make([]domain.Balance, 0, len(byKey))
	for _, b := range byKey {
		items = append(items, b)
	}

	sortBalances(items)

	return items, nil
}

func (tx *txRepo) ListTransactions(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	committed, err := tx.parent.ListTransactions(ctx, domain.ListTransactionsParams{
		UserID:   arg.UserID,
		Currency: arg.Currency,
	})
	if err != nil {
		return nil, err
	}

	items := append(committed, filterTransactions(tx.appended, arg.UserID, arg.Currency)...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	return page(items, arg.Limit, arg.Offset), nil
}

func sortBalances(items []domain.Balance) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Currency < items[j].Currency
	})
}

func filterTransactions(all []domain.Transaction, userID, currency string) []domain.Transaction {
	items := []domain.Transaction{}

	for _, t := range all {
		if t.UserID == userID && (currency == "" || t.Currency == currency) {
			items = append(items, t)
		}
	}

	return items
}

func page(items []domain.Transaction, limit, offset int32) []domain.Transaction {
	if offset < 0 {
		offset = 0
	}

	if int(offset) >= len(items) {
		return []domain.Transaction{}
	}

	items = items[offset:]

	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}

	return items
}
