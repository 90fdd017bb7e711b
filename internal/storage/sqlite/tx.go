package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
)

// tx wraps one *sql.Tx. Aggregates (transaction entries, security history,
// rate samples, budget goals) are rewritten wholesale on every Put; the
// UNIQUE and ON DELETE CASCADE constraints in the schema keep child rows
// consistent with their parent.
type tx struct {
	sql *sql.Tx
}

var _ storage.Tx = (*tx)(nil)

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", errs.ErrPersistence, err)
	}
	return &tx{sql: t}, nil
}

func (t *tx) exec(op, query string, args ...any) error {
	if _, err := t.sql.Exec(query, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrPersistence, op, err)
	}
	return nil
}

func (t *tx) PutCurrency(c ledger.CurrencyNode) error {
	return t.exec("put currency",
		`INSERT OR REPLACE INTO currencies (id, symbol, scale, prefix, suffix, state)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Symbol, c.Scale, c.Prefix, c.Suffix, string(c.State))
}

func (t *tx) DeleteCurrency(id uuid.UUID) error {
	return t.exec("delete currency", `DELETE FROM currencies WHERE id = ?`, id.String())
}

func (t *tx) PutAccount(a ledger.Account) error {
	attrs := []byte("{}")
	if len(a.Attributes) > 0 {
		var err error
		if attrs, err = a.Attributes.MarshalStableJSON(); err != nil {
			return fmt.Errorf("%w: encode account attributes: %v", errs.ErrPersistence, err)
		}
	}
	return t.exec("put account",
		`INSERT OR REPLACE INTO accounts
		 (id, parent_id, name, number, type, currency, placeholder, visible, child_order, attributes, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), fmtUUID(a.ParentID), a.Name, a.Number, string(a.Type), a.Currency,
		a.Placeholder, a.Visible, a.ChildOrder, string(attrs), string(a.State))
}

func (t *tx) DeleteAccount(id uuid.UUID) error {
	return t.exec("delete account", `DELETE FROM accounts WHERE id = ?`, id.String())
}

func (t *tx) PutTransaction(tr ledger.Transaction) error {
	err := t.exec("put transaction",
		`INSERT OR REPLACE INTO transactions
		 (id, seq, date, number, payee, memo, currency, reconciled, attachment, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID.String(), tr.Seq, fmtDay(tr.Date), tr.Number, tr.Payee, tr.Memo,
		tr.Currency, string(tr.Reconciled), tr.Attachment, string(tr.State))
	if err != nil {
		return err
	}
	if err := t.exec("clear entries",
		`DELETE FROM entries WHERE transaction_id = ?`, tr.ID.String()); err != nil {
		return err
	}
	for i, e := range tr.Entries {
		err := t.exec("put entry",
			`INSERT INTO entries (id, transaction_id, idx, account_id, amount, currency, memo)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), tr.ID.String(), i, e.AccountID.String(),
			e.Amount.String(), e.Currency, e.Memo)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) DeleteTransaction(id uuid.UUID) error {
	return t.exec("delete transaction", `DELETE FROM transactions WHERE id = ?`, id.String())
}

func (t *tx) PutSecurity(sec ledger.SecurityNode) error {
	err := t.exec("put security",
		`INSERT OR REPLACE INTO securities (id, symbol, description, scale, currency, state)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sec.ID.String(), sec.Symbol, sec.Description, sec.Scale, sec.Currency, string(sec.State))
	if err != nil {
		return err
	}
	if err := t.exec("clear security history",
		`DELETE FROM security_history WHERE security_id = ?`, sec.ID.String()); err != nil {
		return err
	}
	for _, n := range sec.History {
		err := t.exec("put security history",
			`INSERT INTO security_history (security_id, date, price, high, low, volume)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sec.ID.String(), fmtDay(n.Date), n.Price.String(), n.High.String(),
			n.Low.String(), n.Volume)
		if err != nil {
			return err
		}
	}
	if err := t.exec("clear security events",
		`DELETE FROM security_events WHERE security_id = ?`, sec.ID.String()); err != nil {
		return err
	}
	for _, ev := range sec.Events {
		err := t.exec("put security event",
			`INSERT INTO security_events (id, security_id, type, date, value)
			 VALUES (?, ?, ?, ?, ?)`,
			ev.ID.String(), sec.ID.String(), string(ev.Type), fmtDay(ev.Date), ev.Value.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) DeleteSecurity(id uuid.UUID) error {
	return t.exec("delete security", `DELETE FROM securities WHERE id = ?`, id.String())
}

func (t *tx) PutExchangeRate(r ledger.ExchangeRate) error {
	err := t.exec("put exchange rate",
		`INSERT OR REPLACE INTO exchange_rates (id, base, quote) VALUES (?, ?, ?)`,
		r.ID.String(), r.Key.Base, r.Key.Quote)
	if err != nil {
		return err
	}
	if err := t.exec("clear rate samples",
		`DELETE FROM rate_samples WHERE rate_id = ?`, r.ID.String()); err != nil {
		return err
	}
	for _, sample := range r.Samples {
		err := t.exec("put rate sample",
			`INSERT INTO rate_samples (rate_id, date, rate) VALUES (?, ?, ?)`,
			r.ID.String(), fmtDay(sample.Date), sample.Rate.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) PutBudget(b ledger.Budget) error {
	err := t.exec("put budget",
		`INSERT OR REPLACE INTO budgets (id, name, description, period, state)
		 VALUES (?, ?, ?, ?, ?)`,
		b.ID.String(), b.Name, b.Description, string(b.Period), string(b.State))
	if err != nil {
		return err
	}
	if err := t.exec("clear budget goals",
		`DELETE FROM budget_goals WHERE budget_id = ?`, b.ID.String()); err != nil {
		return err
	}
	for accountID, goal := range b.Goals {
		raw, err := encodeGoals(goal.Goals)
		if err != nil {
			return err
		}
		err = t.exec("put budget goal",
			`INSERT INTO budget_goals (budget_id, account_id, period, goals)
			 VALUES (?, ?, ?, ?)`,
			b.ID.String(), accountID.String(), string(goal.Period), raw)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) DeleteBudget(id uuid.UUID) error {
	return t.exec("delete budget", `DELETE FROM budgets WHERE id = ?`, id.String())
}

func (t *tx) PutReminder(r ledger.Reminder) error {
	return t.exec("put reminder",
		`INSERT OR REPLACE INTO reminders
		 (id, type, description, start_date, end_date, increment, enabled, account_id, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), string(r.Type), r.Description, fmtDay(r.StartDate),
		fmtOptionalDay(r.EndDate), r.Increment, r.Enabled, fmtUUID(r.AccountID), string(r.State))
}

func (t *tx) DeleteReminder(id uuid.UUID) error {
	return t.exec("delete reminder", `DELETE FROM reminders WHERE id = ?`, id.String())
}

func (t *tx) PutTrashEntry(e ledger.TrashEntry) error {
	return t.exec("put trash entry",
		`INSERT OR REPLACE INTO trash (id, object_id, kind, trashed_at) VALUES (?, ?, ?, ?)`,
		e.ID.String(), e.ObjectID.String(), string(e.Kind), fmtTimestamp(e.TrashedAt))
}

func (t *tx) DeleteTrashEntry(id uuid.UUID) error {
	return t.exec("delete trash entry", `DELETE FROM trash WHERE id = ?`, id.String())
}

func (t *tx) SetPreference(key, value string) error {
	return t.exec("set preference",
		`INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)`, key, value)
}

func (t *tx) Commit() error {
	if err := t.sql.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", errs.ErrPersistence, err)
	}
	return nil
}

func (t *tx) Rollback() error {
	if err := t.sql.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("%w: rollback: %v", errs.ErrPersistence, err)
	}
	return nil
}
