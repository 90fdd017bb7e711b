// Package engine is the bookkeeping facade. One Engine owns one open book:
// it loads the full object graph from storage at boot, serves reads from
// memory, and funnels every mutation through a store transaction before
// touching the in-memory state. All operations are serialized by a single
// mutex; expected failures come back as internal/errs sentinels.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
	"github.com/tinoosan/bookkeep/internal/storage/sqlite"
)

const (
	prefDefaultCurrency  = "defaultCurrency"
	prefAccountSeparator = "accountSeparator"

	defaultSeparator       = ":"
	defaultReminderHorizon = 15 * 24 * time.Hour
)

// Options tune engine boot. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// Store overrides the file-backed store; testing and in-memory books.
	// When set, path and password are ignored.
	Store storage.Store
	// DefaultCurrency seeds a fresh book. Defaults to USD.
	DefaultCurrency string
	// ReminderHorizon is the pending-reminder lookahead window.
	ReminderHorizon time.Duration
}

// Engine is an open book. Obtain one with Boot and release it with Close;
// a closed engine fails every operation with errs.ErrClosed.
type Engine struct {
	mu     sync.Mutex
	store  storage.Store
	log    *slog.Logger
	closed bool

	horizon time.Duration

	accounts   map[uuid.UUID]*ledger.Account
	rootID     uuid.UUID
	txns       map[uuid.UUID]*ledger.Transaction
	txCounts   map[uuid.UUID]int
	nextSeq    int64
	currencies map[uuid.UUID]*ledger.CurrencyNode
	securities map[uuid.UUID]*ledger.SecurityNode
	rates      map[ledger.RateKey]*ledger.ExchangeRate
	budgets    map[uuid.UUID]*ledger.Budget
	reminders  map[uuid.UUID]*ledger.Reminder
	trash      map[uuid.UUID]*ledger.TrashEntry
	prefs      map[string]string
}

// Boot opens the book at path and loads its state. A fresh book is seeded
// with the default currency and a root account in one transaction.
func Boot(path, password string, opts Options) (*Engine, error) {
	store := opts.Store
	if store == nil {
		var err error
		store, err = sqlite.Open(path, password)
		if err != nil {
			return nil, err
		}
	}
	e := &Engine{
		store:   store,
		log:     opts.Logger,
		horizon: opts.ReminderHorizon,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.horizon <= 0 {
		e.horizon = defaultReminderHorizon
	}
	if err := e.load(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	if e.rootID == uuid.Nil {
		if err := e.seed(opts.DefaultCurrency); err != nil {
			store.Close()
			return nil, err
		}
	}
	e.log.Info("book open",
		"accounts", len(e.accounts),
		"transactions", len(e.txns),
		"currencies", len(e.currencies))
	return e, nil
}

// Close releases the underlying store. Safe to call once; every later
// operation fails with errs.ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errs.ErrClosed
	}
	e.closed = true
	e.log.Info("book closed")
	return e.store.Close()
}

func (e *Engine) load(ctx context.Context) error {
	e.accounts = make(map[uuid.UUID]*ledger.Account)
	e.txns = make(map[uuid.UUID]*ledger.Transaction)
	e.txCounts = make(map[uuid.UUID]int)
	e.currencies = make(map[uuid.UUID]*ledger.CurrencyNode)
	e.securities = make(map[uuid.UUID]*ledger.SecurityNode)
	e.rates = make(map[ledger.RateKey]*ledger.ExchangeRate)
	e.budgets = make(map[uuid.UUID]*ledger.Budget)
	e.reminders = make(map[uuid.UUID]*ledger.Reminder)
	e.trash = make(map[uuid.UUID]*ledger.TrashEntry)

	currencies, err := e.store.Currencies(ctx)
	if err != nil {
		return err
	}
	for i := range currencies {
		e.currencies[currencies[i].ID] = &currencies[i]
	}
	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return err
	}
	for i := range accounts {
		a := &accounts[i]
		e.accounts[a.ID] = a
		if a.IsRoot() && a.State == ledger.StateLive {
			e.rootID = a.ID
		}
	}
	txns, err := e.store.Transactions(ctx)
	if err != nil {
		return err
	}
	for i := range txns {
		t := &txns[i]
		e.txns[t.ID] = t
		if t.Seq >= e.nextSeq {
			e.nextSeq = t.Seq + 1
		}
		if t.State != ledger.StateLive {
			continue
		}
		for _, entry := range t.Entries {
			e.txCounts[entry.AccountID]++
		}
	}
	securities, err := e.store.Securities(ctx)
	if err != nil {
		return err
	}
	for i := range securities {
		e.securities[securities[i].ID] = &securities[i]
	}
	rates, err := e.store.ExchangeRates(ctx)
	if err != nil {
		return err
	}
	for i := range rates {
		e.rates[rates[i].Key] = &rates[i]
	}
	budgets, err := e.store.Budgets(ctx)
	if err != nil {
		return err
	}
	for i := range budgets {
		e.budgets[budgets[i].ID] = &budgets[i]
	}
	reminders, err := e.store.Reminders(ctx)
	if err != nil {
		return err
	}
	for i := range reminders {
		e.reminders[reminders[i].ID] = &reminders[i]
	}
	trash, err := e.store.TrashEntries(ctx)
	if err != nil {
		return err
	}
	for i := range trash {
		e.trash[trash[i].ID] = &trash[i]
	}
	e.prefs, err = e.store.Preferences(ctx)
	if err != nil {
		return err
	}
	if e.prefs == nil {
		e.prefs = make(map[string]string)
	}
	return nil
}

// seed creates the default currency and root account of a fresh book.
func (e *Engine) seed(symbol string) error {
	if symbol == "" {
		symbol = "USD"
	}
	currency := ledger.CurrencyNode{
		ID:     uuid.New(),
		Symbol: symbol,
		Scale:  2,
		State:  ledger.StateLive,
	}
	root := ledger.Account{
		ID:       uuid.New(),
		Name:     "Root Account",
		Type:     ledger.AccountTypeRoot,
		Currency: symbol,
		Visible:  true,
		State:    ledger.StateLive,
	}
	err := e.persist(func(tx storage.Tx) error {
		if err := tx.PutCurrency(currency); err != nil {
			return err
		}
		if err := tx.PutAccount(root); err != nil {
			return err
		}
		return tx.SetPreference(prefDefaultCurrency, symbol)
	})
	if err != nil {
		return err
	}
	e.currencies[currency.ID] = &currency
	e.accounts[root.ID] = &root
	e.rootID = root.ID
	e.prefs[prefDefaultCurrency] = symbol
	e.log.Info("book seeded", "currency", symbol)
	return nil
}

// persist runs fn inside one store transaction. The caller mutates memory
// only after persist returns nil; a failed transaction leaves both the
// store and the in-memory state untouched.
func (e *Engine) persist(fn func(tx storage.Tx) error) error {
	tx, err := e.store.Begin(context.Background())
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (e *Engine) guard() error {
	if e.closed {
		return errs.ErrClosed
	}
	return nil
}

// SetPreference stores an engine-scoped key/value preference.
func (e *Engine) SetPreference(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: empty preference key", errs.ErrInvalid)
	}
	err := e.persist(func(tx storage.Tx) error {
		return tx.SetPreference(key, value)
	})
	if err != nil {
		return err
	}
	e.prefs[key] = value
	opsTotal.WithLabelValues("set_preference").Inc()
	return nil
}

// Preference returns the stored value for key, or "" when unset.
func (e *Engine) Preference(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs[key]
}

// Info returns the underlying store metadata.
func (e *Engine) Info() (storage.Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return storage.Info{}, err
	}
	return e.store.Info(context.Background())
}
