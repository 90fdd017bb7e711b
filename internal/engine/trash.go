package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
)

// moveToTrash marks an object trashed and inserts its trash wrapper in one
// store transaction. persistTrashed writes the object's trashed form inside
// the same transaction as the wrapper insert; apply flips the in-memory
// state and runs only after the transaction commits, so a failed write
// leaves both the store and memory untouched. Callers hold the engine lock.
func (e *Engine) moveToTrash(kind ledger.ObjectKind, objectID uuid.UUID, persistTrashed func(tx storage.Tx) error, apply func()) error {
	if _, exists := e.trashByObject(objectID); exists {
		return fmt.Errorf("%w: object %s is already in trash", errs.ErrConflict, objectID)
	}
	entry := ledger.TrashEntry{
		ID:        uuid.New(),
		ObjectID:  objectID,
		Kind:      kind,
		TrashedAt: time.Now().UTC(),
	}
	err := e.persist(func(tx storage.Tx) error {
		if err := persistTrashed(tx); err != nil {
			return err
		}
		return tx.PutTrashEntry(entry)
	})
	if err != nil {
		return err
	}
	apply()
	e.trash[entry.ID] = &entry
	opsTotal.WithLabelValues("move_to_trash").Inc()
	e.log.Debug("moved to trash", "kind", kind, "object", objectID)
	return nil
}

func (e *Engine) trashByObject(objectID uuid.UUID) (*ledger.TrashEntry, bool) {
	for _, entry := range e.trash {
		if entry.ObjectID == objectID {
			return entry, true
		}
	}
	return nil, false
}

// TrashEntries lists trash wrappers ordered by trash time.
func (e *Engine) TrashEntries() []ledger.TrashEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.TrashEntry, 0, len(e.trash))
	for _, entry := range e.trash {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TrashedAt.Equal(out[j].TrashedAt) {
			return out[i].TrashedAt.Before(out[j].TrashedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Purge permanently deletes a trashed object and its wrapper in one store
// transaction. Afterwards the object's UUID resolves to not found.
func (e *Engine) Purge(entryID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	entry, ok := e.trash[entryID]
	if !ok {
		return fmt.Errorf("%w: trash entry %s", errs.ErrNotFound, entryID)
	}
	return e.purgeLocked(entry)
}

func (e *Engine) purgeLocked(entry *ledger.TrashEntry) error {
	err := e.persist(func(tx storage.Tx) error {
		if err := e.deleteObject(tx, entry.Kind, entry.ObjectID); err != nil {
			return err
		}
		return tx.DeleteTrashEntry(entry.ID)
	})
	if err != nil {
		return err
	}
	switch entry.Kind {
	case ledger.KindAccount:
		delete(e.accounts, entry.ObjectID)
	case ledger.KindTransaction:
		delete(e.txns, entry.ObjectID)
	case ledger.KindCurrency:
		delete(e.currencies, entry.ObjectID)
	case ledger.KindSecurity:
		delete(e.securities, entry.ObjectID)
	case ledger.KindBudget:
		delete(e.budgets, entry.ObjectID)
	case ledger.KindReminder:
		delete(e.reminders, entry.ObjectID)
	}
	delete(e.trash, entry.ID)
	opsTotal.WithLabelValues("purge").Inc()
	e.log.Debug("purged", "kind", entry.Kind, "object", entry.ObjectID)
	return nil
}

func (e *Engine) deleteObject(tx storage.Tx, kind ledger.ObjectKind, id uuid.UUID) error {
	switch kind {
	case ledger.KindAccount:
		return tx.DeleteAccount(id)
	case ledger.KindTransaction:
		return tx.DeleteTransaction(id)
	case ledger.KindCurrency:
		return tx.DeleteCurrency(id)
	case ledger.KindSecurity:
		return tx.DeleteSecurity(id)
	case ledger.KindBudget:
		return tx.DeleteBudget(id)
	case ledger.KindReminder:
		return tx.DeleteReminder(id)
	}
	return fmt.Errorf("%w: unknown trash kind %q", errs.ErrInvalid, kind)
}

// EmptyTrash purges every wrapper trashed at or before the cutoff. It
// returns the number of objects purged; a failed purge stops the sweep.
func (e *Engine) EmptyTrash(olderThan time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return 0, err
	}
	var aged []*ledger.TrashEntry
	for _, entry := range e.trash {
		if !entry.TrashedAt.After(olderThan) {
			aged = append(aged, entry)
		}
	}
	sort.Slice(aged, func(i, j int) bool { return aged[i].TrashedAt.Before(aged[j].TrashedAt) })
	purged := 0
	for _, entry := range aged {
		if err := e.purgeLocked(entry); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
