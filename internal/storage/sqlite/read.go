package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/meta"
)

func (s *Store) Currencies(ctx context.Context) ([]ledger.CurrencyNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, scale, prefix, suffix, state FROM currencies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("%w: load currencies: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.CurrencyNode
	for rows.Next() {
		var c ledger.CurrencyNode
		var id, state string
		if err := rows.Scan(&id, &c.Symbol, &c.Scale, &c.Prefix, &c.Suffix, &state); err != nil {
			return nil, fmt.Errorf("%w: scan currency: %v", errs.ErrPersistence, err)
		}
		if c.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		c.State = ledger.ObjectState(state)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Accounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, name, number, type, currency, placeholder, visible,
		        child_order, attributes, state
		 FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load accounts: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		var a ledger.Account
		var id, parent, typ, state, attrs string
		if err := rows.Scan(&id, &parent, &a.Name, &a.Number, &typ, &a.Currency,
			&a.Placeholder, &a.Visible, &a.ChildOrder, &attrs, &state); err != nil {
			return nil, fmt.Errorf("%w: scan account: %v", errs.ErrPersistence, err)
		}
		if a.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if a.ParentID, err = parseUUID(parent); err != nil {
			return nil, err
		}
		a.Type = ledger.AccountType(typ)
		a.State = ledger.ObjectState(state)
		a.Attributes = meta.Metadata{}
		if err := json.Unmarshal([]byte(attrs), &a.Attributes); err != nil {
			return nil, fmt.Errorf("%w: decode account attributes: %v", errs.ErrPersistence, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Transactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seq, date, number, payee, memo, currency, reconciled, attachment, state
		 FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: load transactions: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.Transaction
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var t ledger.Transaction
		var id, date, reconciled, state string
		if err := rows.Scan(&id, &t.Seq, &date, &t.Number, &t.Payee, &t.Memo,
			&t.Currency, &reconciled, &t.Attachment, &state); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", errs.ErrPersistence, err)
		}
		if t.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if t.Date, err = parseDay(date); err != nil {
			return nil, err
		}
		t.Reconciled = ledger.ReconciledState(reconciled)
		t.State = ledger.ObjectState(state)
		byID[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.QueryContext(ctx,
		`SELECT id, transaction_id, account_id, amount, currency, memo
		 FROM entries ORDER BY transaction_id, idx`)
	if err != nil {
		return nil, fmt.Errorf("%w: load entries: %v", errs.ErrPersistence, err)
	}
	defer erows.Close()

	for erows.Next() {
		var e ledger.Entry
		var id, txID, accountID, amount string
		if err := erows.Scan(&id, &txID, &accountID, &amount, &e.Currency, &e.Memo); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", errs.ErrPersistence, err)
		}
		if e.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if e.AccountID, err = parseUUID(accountID); err != nil {
			return nil, err
		}
		if e.Amount, err = parseDec(amount); err != nil {
			return nil, err
		}
		parent, err := parseUUID(txID)
		if err != nil {
			return nil, err
		}
		i, ok := byID[parent]
		if !ok {
			return nil, fmt.Errorf("%w: entry %s references missing transaction %s",
				errs.ErrPersistence, id, txID)
		}
		out[i].Entries = append(out[i].Entries, e)
	}
	return out, erows.Err()
}

func (s *Store) Securities(ctx context.Context) ([]ledger.SecurityNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, description, scale, currency, state FROM securities ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("%w: load securities: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.SecurityNode
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var sec ledger.SecurityNode
		var id, state string
		if err := rows.Scan(&id, &sec.Symbol, &sec.Description, &sec.Scale, &sec.Currency, &state); err != nil {
			return nil, fmt.Errorf("%w: scan security: %v", errs.ErrPersistence, err)
		}
		if sec.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		sec.State = ledger.ObjectState(state)
		byID[sec.ID] = len(out)
		out = append(out, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.db.QueryContext(ctx,
		`SELECT security_id, date, price, high, low, volume
		 FROM security_history ORDER BY security_id, date`)
	if err != nil {
		return nil, fmt.Errorf("%w: load security history: %v", errs.ErrPersistence, err)
	}
	defer hrows.Close()

	for hrows.Next() {
		var n ledger.SecurityHistoryNode
		var id, date, price, high, low string
		if err := hrows.Scan(&id, &date, &price, &high, &low, &n.Volume); err != nil {
			return nil, fmt.Errorf("%w: scan security history: %v", errs.ErrPersistence, err)
		}
		secID, err := parseUUID(id)
		if err != nil {
			return nil, err
		}
		if n.Date, err = parseDay(date); err != nil {
			return nil, err
		}
		if n.Price, err = parseDec(price); err != nil {
			return nil, err
		}
		if n.High, err = parseDec(high); err != nil {
			return nil, err
		}
		if n.Low, err = parseDec(low); err != nil {
			return nil, err
		}
		i, ok := byID[secID]
		if !ok {
			return nil, fmt.Errorf("%w: history row references missing security %s",
				errs.ErrPersistence, id)
		}
		out[i].History = append(out[i].History, n)
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}

	vrows, err := s.db.QueryContext(ctx,
		`SELECT id, security_id, type, date, value
		 FROM security_events ORDER BY security_id, date, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load security events: %v", errs.ErrPersistence, err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var ev ledger.SecurityHistoryEvent
		var id, secID, typ, date, value string
		if err := vrows.Scan(&id, &secID, &typ, &date, &value); err != nil {
			return nil, fmt.Errorf("%w: scan security event: %v", errs.ErrPersistence, err)
		}
		if ev.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		parent, err := parseUUID(secID)
		if err != nil {
			return nil, err
		}
		ev.Type = ledger.SecurityHistoryEventType(typ)
		if ev.Date, err = parseDay(date); err != nil {
			return nil, err
		}
		if ev.Value, err = parseDec(value); err != nil {
			return nil, err
		}
		i, ok := byID[parent]
		if !ok {
			return nil, fmt.Errorf("%w: event references missing security %s",
				errs.ErrPersistence, secID)
		}
		out[i].Events = append(out[i].Events, ev)
	}
	return out, vrows.Err()
}

func (s *Store) ExchangeRates(ctx context.Context) ([]ledger.ExchangeRate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base, quote FROM exchange_rates ORDER BY base, quote`)
	if err != nil {
		return nil, fmt.Errorf("%w: load exchange rates: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.ExchangeRate
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var r ledger.ExchangeRate
		var id string
		if err := rows.Scan(&id, &r.Key.Base, &r.Key.Quote); err != nil {
			return nil, fmt.Errorf("%w: scan exchange rate: %v", errs.ErrPersistence, err)
		}
		if r.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		byID[r.ID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := s.db.QueryContext(ctx,
		`SELECT rate_id, date, rate FROM rate_samples ORDER BY rate_id, date`)
	if err != nil {
		return nil, fmt.Errorf("%w: load rate samples: %v", errs.ErrPersistence, err)
	}
	defer srows.Close()

	for srows.Next() {
		var sample ledger.RateSample
		var id, date, rate string
		if err := srows.Scan(&id, &date, &rate); err != nil {
			return nil, fmt.Errorf("%w: scan rate sample: %v", errs.ErrPersistence, err)
		}
		rateID, err := parseUUID(id)
		if err != nil {
			return nil, err
		}
		if sample.Date, err = parseDay(date); err != nil {
			return nil, err
		}
		if sample.Rate, err = parseDec(rate); err != nil {
			return nil, err
		}
		i, ok := byID[rateID]
		if !ok {
			return nil, fmt.Errorf("%w: sample references missing exchange rate %s",
				errs.ErrPersistence, id)
		}
		out[i].Samples = append(out[i].Samples, sample)
	}
	return out, srows.Err()
}

func (s *Store) Budgets(ctx context.Context) ([]ledger.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, period, state FROM budgets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load budgets: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.Budget
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var b ledger.Budget
		var id, period, state string
		if err := rows.Scan(&id, &b.Name, &b.Description, &period, &state); err != nil {
			return nil, fmt.Errorf("%w: scan budget: %v", errs.ErrPersistence, err)
		}
		if b.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		b.Period = ledger.Period(period)
		b.State = ledger.ObjectState(state)
		b.Goals = make(map[uuid.UUID]ledger.BudgetGoal)
		byID[b.ID] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	grows, err := s.db.QueryContext(ctx,
		`SELECT budget_id, account_id, period, goals FROM budget_goals ORDER BY budget_id, account_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load budget goals: %v", errs.ErrPersistence, err)
	}
	defer grows.Close()

	for grows.Next() {
		var budgetID, accountID, period, raw string
		if err := grows.Scan(&budgetID, &accountID, &period, &raw); err != nil {
			return nil, fmt.Errorf("%w: scan budget goal: %v", errs.ErrPersistence, err)
		}
		bID, err := parseUUID(budgetID)
		if err != nil {
			return nil, err
		}
		aID, err := parseUUID(accountID)
		if err != nil {
			return nil, err
		}
		goals, err := decodeGoals(raw)
		if err != nil {
			return nil, err
		}
		i, ok := byID[bID]
		if !ok {
			return nil, fmt.Errorf("%w: goal row references missing budget %s",
				errs.ErrPersistence, budgetID)
		}
		out[i].Goals[aID] = ledger.BudgetGoal{Period: ledger.Period(period), Goals: goals}
	}
	return out, grows.Err()
}

func (s *Store) Reminders(ctx context.Context) ([]ledger.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, description, start_date, end_date, increment, enabled, account_id, state
		 FROM reminders ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load reminders: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.Reminder
	for rows.Next() {
		var r ledger.Reminder
		var id, typ, start, end, accountID, state string
		if err := rows.Scan(&id, &typ, &r.Description, &start, &end,
			&r.Increment, &r.Enabled, &accountID, &state); err != nil {
			return nil, fmt.Errorf("%w: scan reminder: %v", errs.ErrPersistence, err)
		}
		if r.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		r.Type = ledger.ReminderType(typ)
		if r.StartDate, err = parseDay(start); err != nil {
			return nil, err
		}
		if r.EndDate, err = parseOptionalDay(end); err != nil {
			return nil, err
		}
		if r.AccountID, err = parseUUID(accountID); err != nil {
			return nil, err
		}
		r.State = ledger.ObjectState(state)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) TrashEntries(ctx context.Context) ([]ledger.TrashEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, object_id, kind, trashed_at FROM trash ORDER BY trashed_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load trash: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	var out []ledger.TrashEntry
	for rows.Next() {
		var e ledger.TrashEntry
		var id, objectID, kind string
		var trashedAt sql.NullString
		if err := rows.Scan(&id, &objectID, &kind, &trashedAt); err != nil {
			return nil, fmt.Errorf("%w: scan trash entry: %v", errs.ErrPersistence, err)
		}
		if e.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if e.ObjectID, err = parseUUID(objectID); err != nil {
			return nil, err
		}
		e.Kind = ledger.ObjectKind(kind)
		if trashedAt.Valid {
			if e.TrashedAt, err = parseTimestamp(trashedAt.String); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Preferences(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("%w: load preferences: %v", errs.ErrPersistence, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%w: scan preference: %v", errs.ErrPersistence, err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
