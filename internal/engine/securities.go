package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/slug"
	"github.com/tinoosan/bookkeep/internal/storage"
)

func copySecurity(s *ledger.SecurityNode) ledger.SecurityNode {
	out := *s
	out.History = append([]ledger.SecurityHistoryNode(nil), s.History...)
	out.Events = append([]ledger.SecurityHistoryEvent(nil), s.Events...)
	return out
}

func (e *Engine) securityBySymbol(symbol string) (*ledger.SecurityNode, bool) {
	for _, s := range e.securities {
		if s.State == ledger.StateLive && s.Symbol == symbol {
			return s, true
		}
	}
	return nil, false
}

// AddSecurity registers a tradable security. Symbols are normalized and
// must be unique among live securities; the pricing currency must exist.
func (e *Engine) AddSecurity(s *ledger.SecurityNode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: nil security", errs.ErrInvalid)
	}
	s.Symbol = slug.NormalizeSymbol(s.Symbol)
	if !slug.IsSymbol(s.Symbol) {
		return fmt.Errorf("%w: malformed security symbol %q", errs.ErrInvalid, s.Symbol)
	}
	if _, ok := e.currencyBySymbol(s.Currency); !ok {
		return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, s.Currency)
	}
	if _, exists := e.securityBySymbol(s.Symbol); exists {
		return fmt.Errorf("%w: security %q already registered", errs.ErrConflict, s.Symbol)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.State = ledger.StateLive

	stored := copySecurity(s)
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutSecurity(stored)
	})
	if err != nil {
		return err
	}
	e.securities[stored.ID] = &stored
	opsTotal.WithLabelValues("add_security").Inc()
	e.log.Debug("security added", "symbol", stored.Symbol)
	return nil
}

// Security looks a live security up by symbol.
func (e *Engine) Security(symbol string) (ledger.SecurityNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.securityBySymbol(slug.NormalizeSymbol(symbol))
	if !ok {
		return ledger.SecurityNode{}, fmt.Errorf("%w: security %q", errs.ErrNotFound, symbol)
	}
	return copySecurity(s), nil
}

// Securities returns all live securities ordered by symbol.
func (e *Engine) Securities() []ledger.SecurityNode {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.SecurityNode, 0, len(e.securities))
	for _, s := range e.securities {
		if s.State == ledger.StateLive {
			out = append(out, copySecurity(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// updateSecurity applies mutate to a copy of the security, persists it, and
// swaps the copy in on commit.
func (e *Engine) updateSecurity(id uuid.UUID, op string, mutate func(*ledger.SecurityNode) error) error {
	if err := e.guard(); err != nil {
		return err
	}
	s, ok := e.securities[id]
	if !ok || s.State != ledger.StateLive {
		return fmt.Errorf("%w: security %s", errs.ErrNotFound, id)
	}
	updated := copySecurity(s)
	if err := mutate(&updated); err != nil {
		return err
	}
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutSecurity(updated)
	})
	if err != nil {
		return err
	}
	e.securities[id] = &updated
	opsTotal.WithLabelValues(op).Inc()
	return nil
}

// AddSecurityHistory inserts or overwrites the price node for its date.
func (e *Engine) AddSecurityHistory(id uuid.UUID, n ledger.SecurityHistoryNode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n.Date.IsZero() {
		return fmt.Errorf("%w: history node requires a date", errs.ErrInvalid)
	}
	return e.updateSecurity(id, "add_security_history", func(s *ledger.SecurityNode) error {
		s.AddHistory(n)
		return nil
	})
}

// AddSecurityHistoryEvent records a corporate action. A duplicate
// (type, date, value) fails with errs.ErrConflict.
func (e *Engine) AddSecurityHistoryEvent(id uuid.UUID, ev ledger.SecurityHistoryEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ev.Type != ledger.EventDividend && ev.Type != ledger.EventSplit {
		return fmt.Errorf("%w: unknown event type %q", errs.ErrInvalid, ev.Type)
	}
	return e.updateSecurity(id, "add_security_event", func(s *ledger.SecurityNode) error {
		return s.AddEvent(ev)
	})
}

// RemoveSecurityHistoryEvent removes an event by identity.
func (e *Engine) RemoveSecurityHistoryEvent(id, eventID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateSecurity(id, "remove_security_event", func(s *ledger.SecurityNode) error {
		if !s.RemoveEvent(eventID) {
			return fmt.Errorf("%w: event %s", errs.ErrNotFound, eventID)
		}
		return nil
	})
}
