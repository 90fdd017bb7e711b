package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
)

// SecurityHistoryEventType enumerates discrete corporate actions.
type SecurityHistoryEventType string

const (
	EventDividend SecurityHistoryEventType = "dividend"
	EventSplit    SecurityHistoryEventType = "split"
)

// SecurityHistoryNode is one dated price record of a security. At most one
// node exists per date; re-adding a date overwrites the prior node.
type SecurityHistoryNode struct {
	Date   time.Time
	Price  decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Volume int64
}

// SecurityHistoryEvent is one discrete corporate action. The event set has
// set semantics keyed by (type, date, value).
type SecurityHistoryEvent struct {
	ID    uuid.UUID
	Type  SecurityHistoryEventType
	Date  time.Time
	Value decimal.Decimal
}

func (e SecurityHistoryEvent) sameAs(o SecurityHistoryEvent) bool {
	return e.Type == o.Type && Day(e.Date).Equal(Day(o.Date)) && e.Value.Cmp(o.Value) == 0
}

// SecurityNode is a tradable commodity with a price history and corporate
// action events, reported in a given currency.
type SecurityNode struct {
	ID          uuid.UUID
	Symbol      string
	Description string
	Scale       int
	Currency    string
	History     []SecurityHistoryNode // sorted ascending by date
	Events      []SecurityHistoryEvent
	State       ObjectState
}

// AddHistory inserts or overwrites the price node for its date.
func (s *SecurityNode) AddHistory(n SecurityHistoryNode) {
	n.Date = Day(n.Date)
	i := sort.Search(len(s.History), func(i int) bool { return !s.History[i].Date.Before(n.Date) })
	if i < len(s.History) && s.History[i].Date.Equal(n.Date) {
		s.History[i] = n
		return
	}
	s.History = append(s.History, SecurityHistoryNode{})
	copy(s.History[i+1:], s.History[i:])
	s.History[i] = n
}

// HistoryOn returns the price node with the greatest date at or before the
// query date.
func (s *SecurityNode) HistoryOn(date time.Time) (SecurityHistoryNode, bool) {
	date = Day(date)
	i := sort.Search(len(s.History), func(i int) bool { return s.History[i].Date.After(date) })
	if i == 0 {
		return SecurityHistoryNode{}, false
	}
	return s.History[i-1], true
}

// AddEvent appends a corporate-action event. A duplicate (type, date, value)
// is rejected with errs.ErrConflict; the event set never holds duplicates.
func (s *SecurityNode) AddEvent(e SecurityHistoryEvent) error {
	for _, have := range s.Events {
		if have.sameAs(e) {
			return errs.ErrConflict
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Date = Day(e.Date)
	s.Events = append(s.Events, e)
	return nil
}

// RemoveEvent removes an event by identity. It reports whether an event was
// removed; on success the set's size shrinks by exactly one.
func (s *SecurityNode) RemoveEvent(id uuid.UUID) bool {
	for i, have := range s.Events {
		if have.ID == id {
			s.Events = append(s.Events[:i], s.Events[i+1:]...)
			return true
		}
	}
	return false
}
