// Package ledger holds the persisted entities of the bookkeeping engine and
// their pure domain logic. Every entity carries an immutable, randomly
// generated UUID assigned at creation; identity equality is by UUID, never by
// attribute equality.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// ObjectState is the soft-delete state attached to each entity's identity.
// Purged objects have no state: their rows no longer exist.
type ObjectState string

const (
	StateLive    ObjectState = "live"
	StateTrashed ObjectState = "trashed"
)

// ObjectKind discriminates trashed object references.
type ObjectKind string

const (
	KindAccount     ObjectKind = "account"
	KindTransaction ObjectKind = "transaction"
	KindCurrency    ObjectKind = "currency"
	KindSecurity    ObjectKind = "security"
	KindBudget      ObjectKind = "budget"
	KindReminder    ObjectKind = "reminder"
)

// TrashEntry wraps a reference to a removed object, recording when it was
// moved to trash. An object is reachable through at most one TrashEntry.
type TrashEntry struct {
	ID        uuid.UUID
	ObjectID  uuid.UUID
	Kind      ObjectKind
	TrashedAt time.Time
}

// Day normalizes t to midnight UTC. All transaction, rate and history dates
// have day-level granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a day-granularity date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
