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

func validReminderType(t ledger.ReminderType) bool {
	switch t {
	case ledger.ReminderDaily, ledger.ReminderWeekly, ledger.ReminderMonthly, ledger.ReminderYearly:
		return true
	}
	return false
}

// AddReminder registers a recurring reminder.
func (e *Engine) AddReminder(r *ledger.Reminder) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if r == nil || r.Description == "" {
		return fmt.Errorf("%w: reminder requires a description", errs.ErrInvalid)
	}
	if !validReminderType(r.Type) {
		return fmt.Errorf("%w: unknown reminder type %q", errs.ErrInvalid, r.Type)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: reminder requires a start date", errs.ErrInvalid)
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: reminder ends before it starts", errs.ErrInvalid)
	}
	if r.AccountID != uuid.Nil {
		a, ok := e.accounts[r.AccountID]
		if !ok || a.State != ledger.StateLive {
			return fmt.Errorf("%w: account %s", errs.ErrNotFound, r.AccountID)
		}
	}
	if r.Increment <= 0 {
		r.Increment = 1
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if _, exists := e.reminders[r.ID]; exists {
		return fmt.Errorf("%w: reminder %s already recorded", errs.ErrConflict, r.ID)
	}
	r.StartDate = ledger.Day(r.StartDate)
	if !r.EndDate.IsZero() {
		r.EndDate = ledger.Day(r.EndDate)
	}
	r.State = ledger.StateLive

	stored := *r
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutReminder(stored)
	})
	if err != nil {
		return err
	}
	e.reminders[stored.ID] = &stored
	opsTotal.WithLabelValues("add_reminder").Inc()
	return nil
}

// RemoveReminder moves a reminder to trash.
func (e *Engine) RemoveReminder(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	r, ok := e.reminders[id]
	if !ok || r.State != ledger.StateLive {
		return fmt.Errorf("%w: reminder %s", errs.ErrNotFound, id)
	}
	trashed := *r
	trashed.State = ledger.StateTrashed
	return e.moveToTrash(ledger.KindReminder, id, func(tx storage.Tx) error {
		return tx.PutReminder(trashed)
	}, func() {
		e.reminders[id] = &trashed
	})
}

// Reminders returns live reminders ordered by start date.
func (e *Engine) Reminders() []ledger.Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.Reminder, 0, len(e.reminders))
	for _, r := range e.reminders {
		if r.State == ledger.StateLive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// PendingReminders returns enabled reminders whose next occurrence falls
// within the configured lookahead horizon from ref.
func (e *Engine) PendingReminders(ref time.Time) []ledger.Reminder {
	horizon := e.horizon
	var out []ledger.Reminder
	for _, r := range e.Reminders() {
		if r.Pending(ref, horizon) {
			out = append(out, r)
		}
	}
	return out
}
