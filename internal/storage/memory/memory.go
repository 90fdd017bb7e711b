// Package memory provides an in-memory store used for development and tests.
// It mirrors the durable backend's transaction contract: mutations are staged
// on a Tx and applied atomically on Commit, so a rollback never leaves
// partial state behind.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
)

// Store is an in-memory implementation of storage.Store guarded by a mutex.
type Store struct {
	mu sync.Mutex

	uuid       string
	currencies map[uuid.UUID]ledger.CurrencyNode
	accounts   map[uuid.UUID]ledger.Account
	txns       map[uuid.UUID]ledger.Transaction
	securities map[uuid.UUID]ledger.SecurityNode
	rates      map[ledger.RateKey]ledger.ExchangeRate
	budgets    map[uuid.UUID]ledger.Budget
	reminders  map[uuid.UUID]ledger.Reminder
	trash      map[uuid.UUID]ledger.TrashEntry
	prefs      map[string]string

	closed bool
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		uuid:       uuid.NewString(),
		currencies: make(map[uuid.UUID]ledger.CurrencyNode),
		accounts:   make(map[uuid.UUID]ledger.Account),
		txns:       make(map[uuid.UUID]ledger.Transaction),
		securities: make(map[uuid.UUID]ledger.SecurityNode),
		rates:      make(map[ledger.RateKey]ledger.ExchangeRate),
		budgets:    make(map[uuid.UUID]ledger.Budget),
		reminders:  make(map[uuid.UUID]ledger.Reminder),
		trash:      make(map[uuid.UUID]ledger.TrashEntry),
		prefs:      make(map[string]string),
	}
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) Info(_ context.Context) (storage.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.Info{}, errs.ErrClosed
	}
	return storage.Info{UUID: s.uuid, Version: storage.CurrentFileVersion}, nil
}

// Begin stages a transaction. Mutations collect as ops and apply under the
// store lock at Commit.
func (s *Store) Begin(_ context.Context) (storage.Tx, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, errs.ErrClosed
	}
	return &tx{store: s}, nil
}

type tx struct {
	store *Store
	ops   []func(*Store)
	done  bool
}

func (t *tx) stage(op func(*Store)) error {
	if t.done {
		return errs.ErrPersistence
	}
	t.ops = append(t.ops, op)
	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return errs.ErrPersistence
	}
	t.done = true
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.closed {
		return errs.ErrClosed
	}
	for _, op := range t.ops {
		op(t.store)
	}
	return nil
}

func (t *tx) Rollback() error {
	t.done = true
	t.ops = nil
	return nil
}

func (t *tx) PutCurrency(c ledger.CurrencyNode) error {
	return t.stage(func(s *Store) { s.currencies[c.ID] = c })
}

func (t *tx) DeleteCurrency(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.currencies, id) })
}

func (t *tx) PutAccount(a ledger.Account) error {
	a.Attributes = a.Attributes.Clone()
	return t.stage(func(s *Store) { s.accounts[a.ID] = a })
}

func (t *tx) DeleteAccount(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.accounts, id) })
}

func (t *tx) PutTransaction(txn ledger.Transaction) error {
	txn.Entries = append([]ledger.Entry(nil), txn.Entries...)
	return t.stage(func(s *Store) { s.txns[txn.ID] = txn })
}

func (t *tx) DeleteTransaction(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.txns, id) })
}

func (t *tx) PutSecurity(sec ledger.SecurityNode) error {
	sec.History = append([]ledger.SecurityHistoryNode(nil), sec.History...)
	sec.Events = append([]ledger.SecurityHistoryEvent(nil), sec.Events...)
	return t.stage(func(s *Store) { s.securities[sec.ID] = sec })
}

func (t *tx) DeleteSecurity(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.securities, id) })
}

func (t *tx) PutExchangeRate(r ledger.ExchangeRate) error {
	r.Samples = append([]ledger.RateSample(nil), r.Samples...)
	return t.stage(func(s *Store) { s.rates[r.Key] = r })
}

func (t *tx) PutBudget(b ledger.Budget) error {
	b = *b.Clone()
	return t.stage(func(s *Store) { s.budgets[b.ID] = b })
}

func (t *tx) DeleteBudget(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.budgets, id) })
}

func (t *tx) PutReminder(r ledger.Reminder) error {
	return t.stage(func(s *Store) { s.reminders[r.ID] = r })
}

func (t *tx) DeleteReminder(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.reminders, id) })
}

func (t *tx) PutTrashEntry(e ledger.TrashEntry) error {
	return t.stage(func(s *Store) { s.trash[e.ID] = e })
}

func (t *tx) DeleteTrashEntry(id uuid.UUID) error {
	return t.stage(func(s *Store) { delete(s.trash, id) })
}

func (t *tx) SetPreference(key, value string) error {
	return t.stage(func(s *Store) { s.prefs[key] = value })
}

func (s *Store) Currencies(_ context.Context) ([]ledger.CurrencyNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.CurrencyNode, 0, len(s.currencies))
	for _, c := range s.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *Store) Accounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		a.Attributes = a.Attributes.Clone()
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *Store) Transactions(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		t.Entries = append([]ledger.Entry(nil), t.Entries...)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *Store) Securities(_ context.Context) ([]ledger.SecurityNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.SecurityNode, 0, len(s.securities))
	for _, sec := range s.securities {
		sec.History = append([]ledger.SecurityHistoryNode(nil), sec.History...)
		sec.Events = append([]ledger.SecurityHistoryEvent(nil), sec.Events...)
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *Store) ExchangeRates(_ context.Context) ([]ledger.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.ExchangeRate, 0, len(s.rates))
	for _, r := range s.rates {
		r.Samples = append([]ledger.RateSample(nil), r.Samples...)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

func (s *Store) Budgets(_ context.Context) ([]ledger.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, *b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Reminders(_ context.Context) ([]ledger.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *Store) TrashEntries(_ context.Context) ([]ledger.TrashEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.TrashEntry, 0, len(s.trash))
	for _, e := range s.trash {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrashedAt.Before(out[j].TrashedAt) })
	return out, nil
}

func (s *Store) Preferences(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.prefs))
	for k, v := range s.prefs {
		out[k] = v
	}
	return out, nil
}
