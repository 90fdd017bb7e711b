package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
)

// AddBudget persists a budget with all of its goal vectors in one store
// transaction. Every goal must match the budget's granularity exactly.
func (e *Engine) AddBudget(b *ledger.Budget) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if b == nil || b.Name == "" {
		return fmt.Errorf("%w: budget requires a name", errs.ErrInvalid)
	}
	if !b.Period.Valid() {
		return fmt.Errorf("%w: unknown budget period %q", errs.ErrInvalid, b.Period)
	}
	for accountID, goal := range b.Goals {
		a, ok := e.accounts[accountID]
		if !ok || a.State != ledger.StateLive {
			return fmt.Errorf("%w: account %s", errs.ErrNotFound, accountID)
		}
		if err := goal.Validate(); err != nil {
			return err
		}
		if goal.Period != b.Period {
			return fmt.Errorf("%w: goal period %s does not match budget period %s",
				errs.ErrInvalid, goal.Period, b.Period)
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, exists := e.budgets[b.ID]; exists {
		return fmt.Errorf("%w: budget %s already recorded", errs.ErrConflict, b.ID)
	}
	b.State = ledger.StateLive

	stored := b.Clone()
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutBudget(*stored)
	})
	if err != nil {
		return err
	}
	e.budgets[stored.ID] = stored
	opsTotal.WithLabelValues("add_budget").Inc()
	e.log.Debug("budget added", "id", stored.ID, "name", stored.Name)
	return nil
}

// UpdateBudget replaces a live budget and its goals wholesale.
func (e *Engine) UpdateBudget(b *ledger.Budget) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: nil budget", errs.ErrInvalid)
	}
	have, ok := e.budgets[b.ID]
	if !ok || have.State != ledger.StateLive {
		return fmt.Errorf("%w: budget %s", errs.ErrNotFound, b.ID)
	}
	if !b.Period.Valid() {
		return fmt.Errorf("%w: unknown budget period %q", errs.ErrInvalid, b.Period)
	}
	for _, goal := range b.Goals {
		if err := goal.Validate(); err != nil {
			return err
		}
		if goal.Period != b.Period {
			return fmt.Errorf("%w: goal period %s does not match budget period %s",
				errs.ErrInvalid, goal.Period, b.Period)
		}
	}
	stored := b.Clone()
	stored.State = ledger.StateLive
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutBudget(*stored)
	})
	if err != nil {
		return err
	}
	e.budgets[stored.ID] = stored
	opsTotal.WithLabelValues("update_budget").Inc()
	return nil
}

// RemoveBudget moves a budget to trash.
func (e *Engine) RemoveBudget(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	b, ok := e.budgets[id]
	if !ok || b.State != ledger.StateLive {
		return fmt.Errorf("%w: budget %s", errs.ErrNotFound, id)
	}
	trashed := b.Clone()
	trashed.State = ledger.StateTrashed
	return e.moveToTrash(ledger.KindBudget, id, func(tx storage.Tx) error {
		return tx.PutBudget(*trashed)
	}, func() {
		e.budgets[id] = trashed
	})
}

// Budget returns a deep copy of a live budget.
func (e *Engine) Budget(id uuid.UUID) (ledger.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.budgets[id]
	if !ok || b.State != ledger.StateLive {
		return ledger.Budget{}, fmt.Errorf("%w: budget %s", errs.ErrNotFound, id)
	}
	return *b.Clone(), nil
}

// BudgetList returns live budgets ordered by name.
func (e *Engine) BudgetList() []ledger.Budget {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.Budget, 0, len(e.budgets))
	for _, b := range e.budgets {
		if b.State == ledger.StateLive {
			out = append(out, *b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
