package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/dictionary"
	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
)

// AddAccount attaches a new account under parentID. A nil parent attaches
// under the root. The account's child order is assigned at the end of the
// parent's children.
func (e *Engine) AddAccount(parentID uuid.UUID, a *ledger.Account) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if a == nil || a.Name == "" {
		return fmt.Errorf("%w: account requires a name", errs.ErrInvalid)
	}
	if a.Type == ledger.AccountTypeRoot {
		return fmt.Errorf("%w: a book has exactly one root account", errs.ErrInvalid)
	}
	if !dictionary.IsValidType(a.Type) {
		return fmt.Errorf("%w: unknown account type %q", errs.ErrInvalid, a.Type)
	}
	if _, ok := e.currencyBySymbol(a.Currency); !ok {
		return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, a.Currency)
	}
	if parentID == uuid.Nil {
		parentID = e.rootID
	}
	parent, ok := e.accounts[parentID]
	if !ok || parent.State != ledger.StateLive {
		return fmt.Errorf("%w: parent account %s", errs.ErrNotFound, parentID)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if _, exists := e.accounts[a.ID]; exists {
		return fmt.Errorf("%w: account %s already attached", errs.ErrConflict, a.ID)
	}
	if e.isAncestor(parentID, a.ID) {
		return fmt.Errorf("%w: account %s cannot parent itself", errs.ErrCycle, a.ID)
	}
	a.ParentID = parentID
	a.ChildOrder = e.nextChildOrder(parentID)
	a.State = ledger.StateLive

	stored := *a
	stored.Attributes = a.Attributes.Clone()
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutAccount(stored)
	})
	if err != nil {
		return err
	}
	e.accounts[stored.ID] = &stored
	opsTotal.WithLabelValues("add_account").Inc()
	e.log.Debug("account added", "id", stored.ID, "name", stored.Name, "parent", parentID)
	return nil
}

// RemoveAccount moves an account to trash. It fails with errs.ErrInUse while
// live children or transactions still reference the account.
func (e *Engine) RemoveAccount(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	a, ok := e.accounts[id]
	if !ok || a.State != ledger.StateLive {
		return fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
	}
	if a.IsRoot() {
		return fmt.Errorf("%w: the root account cannot be removed", errs.ErrInvalid)
	}
	for _, child := range e.accounts {
		if child.State == ledger.StateLive && child.ParentID == id {
			return fmt.Errorf("%w: account %s has child accounts", errs.ErrInUse, id)
		}
	}
	if e.txCounts[id] > 0 {
		return fmt.Errorf("%w: account %s has transactions", errs.ErrInUse, id)
	}
	trashed := *a
	trashed.Attributes = a.Attributes.Clone()
	trashed.State = ledger.StateTrashed
	return e.moveToTrash(ledger.KindAccount, id, func(tx storage.Tx) error {
		return tx.PutAccount(trashed)
	}, func() {
		e.accounts[id] = &trashed
	})
}

// Account returns a copy of a live account.
func (e *Engine) Account(id uuid.UUID) (ledger.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.accounts[id]
	if !ok || a.State != ledger.StateLive {
		return ledger.Account{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
	}
	out := *a
	out.Attributes = a.Attributes.Clone()
	return out, nil
}

// RootAccount returns the distinguished root of the account tree.
func (e *Engine) RootAccount() (ledger.Account, error) {
	return e.Account(e.rootID)
}

// Accounts returns all live accounts ordered by parent and child order.
func (e *Engine) Accounts() []ledger.Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		if a.State != ledger.StateLive {
			continue
		}
		c := *a
		c.Attributes = a.Attributes.Clone()
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentID != out[j].ParentID {
			return out[i].ParentID.String() < out[j].ParentID.String()
		}
		return out[i].ChildOrder < out[j].ChildOrder
	})
	return out
}

// AccountByName returns a copy of the first live account with the given
// name, walking the tree in parent then child order.
func (e *Engine) AccountByName(name string) (ledger.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var match *ledger.Account
	for _, a := range e.accounts {
		if a.State != ledger.StateLive || a.Name != name {
			continue
		}
		if match == nil || before(a, match) {
			match = a
		}
	}
	if match == nil {
		return ledger.Account{}, fmt.Errorf("%w: account named %q", errs.ErrNotFound, name)
	}
	out := *match
	out.Attributes = match.Attributes.Clone()
	return out, nil
}

func before(a, b *ledger.Account) bool {
	if a.ParentID != b.ParentID {
		return a.ParentID.String() < b.ParentID.String()
	}
	return a.ChildOrder < b.ChildOrder
}

// ChildAccounts returns the live children of parentID in child order.
func (e *Engine) ChildAccounts(parentID uuid.UUID) []ledger.Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []ledger.Account
	for _, a := range e.accounts {
		if a.State == ledger.StateLive && a.ParentID == parentID && !a.IsRoot() {
			c := *a
			c.Attributes = a.Attributes.Clone()
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildOrder < out[j].ChildOrder })
	return out
}

// AccountsByType returns live accounts of the given type.
func (e *Engine) AccountsByType(t ledger.AccountType) []ledger.Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []ledger.Account
	for _, a := range e.accounts {
		if a.State == ledger.StateLive && a.Type == t {
			c := *a
			c.Attributes = a.Attributes.Clone()
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (e *Engine) accountsByGroup(g ledger.AccountGroup) []ledger.Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []ledger.Account
	for _, a := range e.accounts {
		if a.State != ledger.StateLive {
			continue
		}
		if group, ok := dictionary.GroupFor(a.Type); ok && group == g {
			c := *a
			c.Attributes = a.Attributes.Clone()
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IncomeAccountList returns live accounts in the income group.
func (e *Engine) IncomeAccountList() []ledger.Account {
	return e.accountsByGroup(ledger.GroupIncome)
}

// ExpenseAccountList returns live accounts in the expense group.
func (e *Engine) ExpenseAccountList() []ledger.Account {
	return e.accountsByGroup(ledger.GroupExpense)
}

// BankAccountList returns live bank-type accounts.
func (e *Engine) BankAccountList() []ledger.Account {
	return e.AccountsByType(ledger.AccountTypeBank)
}

// InvestmentAccountList returns live accounts in the investment group.
func (e *Engine) InvestmentAccountList() []ledger.Account {
	return e.accountsByGroup(ledger.GroupInvest)
}

// SetAccountSeparator sets the separator used when rendering account paths.
// Rendering only; stored names are unaffected.
func (e *Engine) SetAccountSeparator(sep string) error {
	if sep == "" {
		return fmt.Errorf("%w: empty account separator", errs.ErrInvalid)
	}
	return e.SetPreference(prefAccountSeparator, sep)
}

// AccountSeparator returns the configured separator, defaulting to ":".
func (e *Engine) AccountSeparator() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sep := e.prefs[prefAccountSeparator]; sep != "" {
		return sep
	}
	return defaultSeparator
}

// PathName renders the account's ancestry joined by the separator. The root
// account itself is not part of the path.
func (e *Engine) PathName(id uuid.UUID) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.accounts[id]
	if !ok || a.State != ledger.StateLive {
		return "", fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
	}
	sep := e.prefs[prefAccountSeparator]
	if sep == "" {
		sep = defaultSeparator
	}
	var parts []string
	for cur := a; cur != nil && !cur.IsRoot(); {
		parts = append(parts, cur.Name)
		cur = e.accounts[cur.ParentID]
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, sep), nil
}

// SetAccountAttribute stores a key/value attribute on the account;
// last write wins.
func (e *Engine) SetAccountAttribute(id uuid.UUID, key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	a, ok := e.accounts[id]
	if !ok || a.State != ledger.StateLive {
		return fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
	}
	updated := *a
	updated.Attributes = a.Attributes.Clone()
	updated.Attributes.Set(key, value)
	if err := updated.Attributes.Validate(); err != nil {
		return err
	}
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutAccount(updated)
	})
	if err != nil {
		return err
	}
	e.accounts[id] = &updated
	opsTotal.WithLabelValues("set_account_attribute").Inc()
	return nil
}

// AccountAttribute returns the stored attribute value for key.
func (e *Engine) AccountAttribute(id uuid.UUID, key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.accounts[id]
	if !ok || a.State != ledger.StateLive {
		return "", false
	}
	v, ok := a.Attributes.Get(key)
	return v, ok
}

// Balance sums the account's entries dated within [start, end] inclusive,
// converting each at its transaction date into the requested currency.
// A missing rate fails with errs.ErrNoRateAvailable.
func (e *Engine) Balance(id uuid.UUID, start, end time.Time, currency string) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return decimal.Decimal{}, err
	}
	if a, ok := e.accounts[id]; !ok || a.State != ledger.StateLive {
		return decimal.Decimal{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
	}
	if _, ok := e.currencyBySymbol(currency); !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, currency)
	}
	start, end = ledger.Day(start), ledger.Day(end)

	sum := decimal.Decimal{}
	for _, t := range e.txns {
		if t.State != ledger.StateLive || t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		for _, entry := range t.Entries {
			if entry.AccountID != id {
				continue
			}
			amt := entry.Amount
			if entry.Currency != currency {
				var err error
				amt, err = e.convert(entry.Amount, entry.Currency, currency, t.Date)
				if err != nil {
					return decimal.Decimal{}, err
				}
			}
			var err error
			sum, err = sum.Add(amt)
			if err != nil {
				return decimal.Decimal{}, err
			}
		}
	}
	return sum, nil
}

// isAncestor reports whether candidate appears on the ancestor chain of id.
func (e *Engine) isAncestor(id, candidate uuid.UUID) bool {
	for id != uuid.Nil {
		if id == candidate {
			return true
		}
		a, ok := e.accounts[id]
		if !ok {
			return false
		}
		id = a.ParentID
	}
	return false
}

func (e *Engine) nextChildOrder(parentID uuid.UUID) int {
	next := 0
	for _, a := range e.accounts {
		if a.State == ledger.StateLive && a.ParentID == parentID && a.ChildOrder >= next {
			next = a.ChildOrder + 1
		}
	}
	return next
}
