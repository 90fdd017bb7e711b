package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
)

// AddTransaction validates and persists a transaction with its entries in
// one store transaction. Every referenced account must be live and not a
// placeholder; multi-entry splits must sum to zero in the transaction
// currency at the transaction date.
func (e *Engine) AddTransaction(t *ledger.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if t == nil || len(t.Entries) == 0 {
		return fmt.Errorf("%w: transaction requires at least one entry", errs.ErrInvalid)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction requires a date", errs.ErrInvalid)
	}
	if _, ok := e.currencyBySymbol(t.Currency); !ok {
		return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, t.Currency)
	}
	for _, entry := range t.Entries {
		a, ok := e.accounts[entry.AccountID]
		if !ok || a.State != ledger.StateLive {
			return fmt.Errorf("%w: account %s", errs.ErrNotFound, entry.AccountID)
		}
		if a.Placeholder {
			return fmt.Errorf("%w: account %s is a placeholder", errs.ErrPlaceholder, entry.AccountID)
		}
		if _, ok := e.currencyBySymbol(entry.Currency); !ok {
			return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, entry.Currency)
		}
	}
	balanced, err := t.Balanced(e.convert)
	if err != nil {
		return err
	}
	if !balanced {
		return fmt.Errorf("%w: entries do not sum to zero in %s", errs.ErrUnbalanced, t.Currency)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, exists := e.txns[t.ID]; exists {
		return fmt.Errorf("%w: transaction %s already recorded", errs.ErrConflict, t.ID)
	}
	t.Date = ledger.Day(t.Date)
	if t.Reconciled == "" {
		t.Reconciled = ledger.NotReconciled
	}
	t.State = ledger.StateLive
	t.Seq = e.nextSeq
	for i := range t.Entries {
		if t.Entries[i].ID == uuid.Nil {
			t.Entries[i].ID = uuid.New()
		}
	}

	stored := *t
	stored.Entries = append([]ledger.Entry(nil), t.Entries...)
	err = e.persist(func(tx storage.Tx) error {
		return tx.PutTransaction(stored)
	})
	if err != nil {
		return err
	}
	e.txns[stored.ID] = &stored
	e.nextSeq++
	for _, entry := range stored.Entries {
		e.txCounts[entry.AccountID]++
	}
	opsTotal.WithLabelValues("add_transaction").Inc()
	e.log.Debug("transaction added", "id", stored.ID, "entries", len(stored.Entries))
	return nil
}

// RemoveTransaction detaches a transaction from its accounts and moves it
// to trash.
func (e *Engine) RemoveTransaction(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	t, ok := e.txns[id]
	if !ok || t.State != ledger.StateLive {
		return fmt.Errorf("%w: transaction %s", errs.ErrNotFound, id)
	}
	trashed := *t
	trashed.Entries = append([]ledger.Entry(nil), t.Entries...)
	trashed.State = ledger.StateTrashed
	return e.moveToTrash(ledger.KindTransaction, id, func(tx storage.Tx) error {
		return tx.PutTransaction(trashed)
	}, func() {
		e.txns[id] = &trashed
		for _, entry := range trashed.Entries {
			e.txCounts[entry.AccountID]--
		}
	})
}

// Transaction returns a copy of a live transaction.
func (e *Engine) Transaction(id uuid.UUID) (ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.txns[id]
	if !ok || t.State != ledger.StateLive {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s", errs.ErrNotFound, id)
	}
	out := *t
	out.Entries = append([]ledger.Entry(nil), t.Entries...)
	return out, nil
}

// Transactions returns live transactions in insertion-stable order.
func (e *Engine) Transactions() []ledger.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.Transaction, 0, len(e.txns))
	for _, t := range e.txns {
		if t.State != ledger.StateLive {
			continue
		}
		c := *t
		c.Entries = append([]ledger.Entry(nil), t.Entries...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// TransactionsWithAttachments returns live transactions carrying an
// attachment reference, in insertion-stable order.
func (e *Engine) TransactionsWithAttachments() []ledger.Transaction {
	all := e.Transactions()
	out := all[:0]
	for _, t := range all {
		if t.HasAttachment() {
			out = append(out, t)
		}
	}
	return out
}

// TransactionCount returns the number of live transactions posting against
// the account. The count is maintained incrementally, not recomputed.
func (e *Engine) TransactionCount(accountID uuid.UUID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txCounts[accountID]
}
