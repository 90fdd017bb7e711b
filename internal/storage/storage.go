// Package storage defines the persisted object store contract. The engine
// loads full state at boot and treats memory as the read model; every
// mutation happens on a Tx and is atomic: begin, mutate, commit, with
// rollback on any failure. Backends never contain dangling foreign
// references because the engine persists referenced objects in the same
// transaction.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/ledger"
)

// File-format versions. A store records the version it was created with; an
// incompatible version fails the boot with errs.ErrVersionMismatch rather
// than silently truncating unknown fields.
const (
	CurrentFileVersion = 3.1
	MinimumFileVersion = 3.0
)

// Info is the store metadata readable without loading entity state.
type Info struct {
	UUID    string
	Version float64
}

// Tx is one exclusive store transaction. Put replaces any prior row for the
// same UUID; Delete is idempotent. Either Commit or Rollback must be called
// exactly once.
type Tx interface {
	PutCurrency(c ledger.CurrencyNode) error
	DeleteCurrency(id uuid.UUID) error

	PutAccount(a ledger.Account) error
	DeleteAccount(id uuid.UUID) error

	PutTransaction(t ledger.Transaction) error
	DeleteTransaction(id uuid.UUID) error

	PutSecurity(s ledger.SecurityNode) error
	DeleteSecurity(id uuid.UUID) error

	PutExchangeRate(r ledger.ExchangeRate) error

	PutBudget(b ledger.Budget) error
	DeleteBudget(id uuid.UUID) error

	PutReminder(r ledger.Reminder) error
	DeleteReminder(id uuid.UUID) error

	PutTrashEntry(e ledger.TrashEntry) error
	DeleteTrashEntry(id uuid.UUID) error

	SetPreference(key, value string) error

	Commit() error
	Rollback() error
}

// Store is one open bookkeeping file (or its in-memory equivalent). Reads
// return deep copies; mutating a returned value never changes stored state.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	Currencies(ctx context.Context) ([]ledger.CurrencyNode, error)
	Accounts(ctx context.Context) ([]ledger.Account, error)
	// Transactions returns all rows in insertion-stable order.
	Transactions(ctx context.Context) ([]ledger.Transaction, error)
	Securities(ctx context.Context) ([]ledger.SecurityNode, error)
	ExchangeRates(ctx context.Context) ([]ledger.ExchangeRate, error)
	Budgets(ctx context.Context) ([]ledger.Budget, error)
	Reminders(ctx context.Context) ([]ledger.Reminder, error)
	TrashEntries(ctx context.Context) ([]ledger.TrashEntry, error)
	Preferences(ctx context.Context) (map[string]string, error)

	Info(ctx context.Context) (Info, error)

	Close() error
}
