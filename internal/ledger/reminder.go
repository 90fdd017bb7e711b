package ledger

import (
	"time"

	"github.com/google/uuid"
)

// ReminderType enumerates recurrence kinds.
type ReminderType string

const (
	ReminderDaily   ReminderType = "daily"
	ReminderWeekly  ReminderType = "weekly"
	ReminderMonthly ReminderType = "monthly"
	ReminderYearly  ReminderType = "yearly"
)

// Reminder is a recurring obligation. "Pending" is a derived, query-time
// computation; the engine keeps no background timers and collaborators poll.
type Reminder struct {
	ID          uuid.UUID
	Type        ReminderType
	Description string
	StartDate   time.Time
	// EndDate is optional; zero means no end.
	EndDate   time.Time
	Increment int
	Enabled   bool
	AccountID uuid.UUID // optional association
	State     ObjectState
}

// step advances d by one recurrence increment.
func (r Reminder) step(d time.Time) time.Time {
	inc := r.Increment
	if inc <= 0 {
		inc = 1
	}
	switch r.Type {
	case ReminderWeekly:
		return d.AddDate(0, 0, 7*inc)
	case ReminderMonthly:
		return d.AddDate(0, inc, 0)
	case ReminderYearly:
		return d.AddDate(inc, 0, 0)
	default:
		return d.AddDate(0, 0, inc)
	}
}

// NextOccurrence returns the first occurrence on or after ref, or false when
// the recurrence has ended before ref. It is a pure function of the reminder
// definition and the reference date.
func (r Reminder) NextOccurrence(ref time.Time) (time.Time, bool) {
	ref = Day(ref)
	next := Day(r.StartDate)
	for next.Before(ref) {
		next = r.step(next)
	}
	if !r.EndDate.IsZero() && next.After(Day(r.EndDate)) {
		return time.Time{}, false
	}
	return next, true
}

// Pending reports whether the next occurrence falls within the lookahead
// horizon from ref. Disabled reminders are never pending.
func (r Reminder) Pending(ref time.Time, horizon time.Duration) bool {
	if !r.Enabled {
		return false
	}
	next, ok := r.NextOccurrence(ref)
	if !ok {
		return false
	}
	return !next.After(Day(ref).Add(horizon))
}
