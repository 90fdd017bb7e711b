package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/storage"
	"github.com/tinoosan/bookkeep/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Boot("", "", Options{Store: memory.New(), Logger: testLogger()})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func addAccount(t *testing.T, e *Engine, parent uuid.UUID, name string, typ ledger.AccountType) ledger.Account {
	t.Helper()
	a := ledger.Account{Name: name, Type: typ, Currency: "USD", Visible: true}
	if err := e.AddAccount(parent, &a); err != nil {
		t.Fatalf("add account %s: %v", name, err)
	}
	return a
}

func addTenDollars(t *testing.T, e *Engine, accountID uuid.UUID) ledger.Transaction {
	t.Helper()
	tr := ledger.NewSingleEntry(accountID, decimal.MustParse("10.00"), "USD",
		ledger.Date(2024, time.June, 1), "memo", "payee", "1")
	if err := e.AddTransaction(&tr); err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	return tr
}

func TestBootSeedsRootAndDefaultCurrency(t *testing.T) {
	e := newTestEngine(t)

	root, err := e.RootAccount()
	if err != nil {
		t.Fatalf("root account: %v", err)
	}
	if !root.IsRoot() {
		t.Errorf("root type = %s", root.Type)
	}
	if e.DefaultCurrency() != "USD" {
		t.Errorf("default currency = %q, want USD", e.DefaultCurrency())
	}
	if _, err := e.Currency("USD"); err != nil {
		t.Errorf("seed currency missing: %v", err)
	}
}

func TestAddAccountValidation(t *testing.T) {
	e := newTestEngine(t)

	bad := ledger.Account{Name: "No Currency", Type: ledger.AccountTypeBank, Currency: "JPY"}
	if err := e.AddAccount(uuid.Nil, &bad); !errors.Is(err, errs.ErrInvalid) {
		t.Errorf("unknown currency: err = %v, want ErrInvalid", err)
	}
	second := ledger.Account{Name: "Second Root", Type: ledger.AccountTypeRoot, Currency: "USD"}
	if err := e.AddAccount(uuid.Nil, &second); !errors.Is(err, errs.ErrInvalid) {
		t.Errorf("second root: err = %v, want ErrInvalid", err)
	}
	a := addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeChecking)
	if err := e.AddAccount(uuid.Nil, &a); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("double parenting: err = %v, want ErrConflict", err)
	}
}

func TestAddAccountAssignsChildOrder(t *testing.T) {
	e := newTestEngine(t)
	parent := addAccount(t, e, uuid.Nil, "Assets", ledger.AccountTypeBank)

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		addAccount(t, e, parent.ID, name, ledger.AccountTypeChecking)
	}
	children := e.ChildAccounts(parent.ID)
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	for i, c := range children {
		if c.Name != names[i] {
			t.Errorf("child %d = %s, want %s", i, c.Name, names[i])
		}
		if c.ChildOrder != i {
			t.Errorf("child %s order = %d, want %d", c.Name, c.ChildOrder, i)
		}
	}
}

func TestRemoveAccountGuards(t *testing.T) {
	e := newTestEngine(t)
	parent := addAccount(t, e, uuid.Nil, "Assets", ledger.AccountTypeBank)
	child := addAccount(t, e, parent.ID, "Checking", ledger.AccountTypeChecking)

	if err := e.RemoveAccount(parent.ID); !errors.Is(err, errs.ErrInUse) {
		t.Errorf("remove with children: err = %v, want ErrInUse", err)
	}
	addTenDollars(t, e, child.ID)
	if err := e.RemoveAccount(child.ID); !errors.Is(err, errs.ErrInUse) {
		t.Errorf("remove with transactions: err = %v, want ErrInUse", err)
	}
	root, _ := e.RootAccount()
	if err := e.RemoveAccount(root.ID); !errors.Is(err, errs.ErrInvalid) {
		t.Errorf("remove root: err = %v, want ErrInvalid", err)
	}

	leaf := addAccount(t, e, parent.ID, "Savings", ledger.AccountTypeBank)
	if err := e.RemoveAccount(leaf.ID); err != nil {
		t.Fatalf("remove leaf: %v", err)
	}
	if _, err := e.Account(leaf.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("removed account lookup: err = %v, want ErrNotFound", err)
	}
	entries := e.TrashEntries()
	if len(entries) != 1 || entries[0].ObjectID != leaf.ID || entries[0].Kind != ledger.KindAccount {
		t.Fatalf("trash = %+v", entries)
	}
}

func TestTransactionScenario(t *testing.T) {
	e := newTestEngine(t)
	checking := addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeChecking)

	var txns []ledger.Transaction
	for i := 0; i < 3; i++ {
		txns = append(txns, addTenDollars(t, e, checking.ID))
	}
	if n := e.TransactionCount(checking.ID); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
	start, end := ledger.Date(2024, time.January, 1), ledger.Date(2024, time.December, 31)
	balance, err := e.Balance(checking.ID, start, end, "USD")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(decimal.MustParse("30.00")) != 0 {
		t.Errorf("balance = %s, want 30.00", balance)
	}

	if err := e.RemoveTransaction(txns[1].ID); err != nil {
		t.Fatalf("remove transaction: %v", err)
	}
	if n := e.TransactionCount(checking.ID); n != 2 {
		t.Errorf("count after remove = %d, want 2", n)
	}
	balance, err = e.Balance(checking.ID, start, end, "USD")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(decimal.MustParse("20.00")) != 0 {
		t.Errorf("balance after remove = %s, want 20.00", balance)
	}
	if got := e.Transactions(); len(got) != 2 {
		t.Errorf("live transactions = %d, want 2", len(got))
	}
}

func TestTransactionOrderIsInsertionStable(t *testing.T) {
	e := newTestEngine(t)
	checking := addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeChecking)

	dates := []time.Time{
		ledger.Date(2024, time.March, 3),
		ledger.Date(2024, time.January, 1),
		ledger.Date(2024, time.February, 2),
	}
	var ids []uuid.UUID
	for _, d := range dates {
		tr := ledger.NewSingleEntry(checking.ID, decimal.MustParse("1.00"), "USD", d, "", "", "")
		if err := e.AddTransaction(&tr); err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, tr.ID)
	}
	got := e.Transactions()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := range ids {
		if got[i].ID != ids[i] {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, ids[i])
		}
	}
}

func TestUnbalancedSplitRejected(t *testing.T) {
	e := newTestEngine(t)
	checking := addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeChecking)
	groceries := addAccount(t, e, uuid.Nil, "Groceries", ledger.AccountTypeExpense)

	tr := ledger.Transaction{
		Date:     ledger.Date(2024, time.June, 1),
		Currency: "USD",
		Entries: []ledger.Entry{
			{AccountID: checking.ID, Amount: decimal.MustParse("-10.00"), Currency: "USD"},
			{AccountID: groceries.ID, Amount: decimal.MustParse("9.99"), Currency: "USD"},
		},
	}
	if err := e.AddTransaction(&tr); !errors.Is(err, errs.ErrUnbalanced) {
		t.Errorf("err = %v, want ErrUnbalanced", err)
	}
}

func TestPlaceholderRejectsTransactions(t *testing.T) {
	e := newTestEngine(t)
	holder := ledger.Account{
		Name: "Expenses", Type: ledger.AccountTypeExpense, Currency: "USD",
		Placeholder: true, Visible: true,
	}
	if err := e.AddAccount(uuid.Nil, &holder); err != nil {
		t.Fatalf("add placeholder: %v", err)
	}
	tr := ledger.NewSingleEntry(holder.ID, decimal.MustParse("5.00"), "USD",
		ledger.Date(2024, time.June, 1), "", "", "")
	if err := e.AddTransaction(&tr); !errors.Is(err, errs.ErrPlaceholder) {
		t.Errorf("err = %v, want ErrPlaceholder", err)
	}
	// Placeholders still hold children.
	child := ledger.Account{Name: "Rent", Type: ledger.AccountTypeExpense, Currency: "USD", Visible: true}
	if err := e.AddAccount(holder.ID, &child); err != nil {
		t.Errorf("child under placeholder: %v", err)
	}
}

func TestCrossCurrencyBalance(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AddCurrency(&ledger.CurrencyNode{Symbol: "EUR", Scale: 2}); err != nil {
		t.Fatalf("add currency: %v", err)
	}
	eurAcct := ledger.Account{Name: "Euro Cash", Type: ledger.AccountTypeCash, Currency: "EUR", Visible: true}
	if err := e.AddAccount(uuid.Nil, &eurAcct); err != nil {
		t.Fatalf("add account: %v", err)
	}
	tr := ledger.NewSingleEntry(eurAcct.ID, decimal.MustParse("10.00"), "EUR",
		ledger.Date(2024, time.June, 10), "", "", "")
	if err := e.AddTransaction(&tr); err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	start, end := ledger.Date(2024, time.June, 1), ledger.Date(2024, time.June, 30)
	if _, err := e.Balance(eurAcct.ID, start, end, "USD"); !errors.Is(err, errs.ErrNoRateAvailable) {
		t.Fatalf("no rate: err = %v, want ErrNoRateAvailable", err)
	}

	two := decimal.MustParse("2")
	if err := e.SetExchangeRate("EUR", "USD", two, ledger.Date(2024, time.June, 1)); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	balance, err := e.Balance(eurAcct.ID, start, end, "USD")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(decimal.MustParse("20.00")) != 0 {
		t.Errorf("balance = %s, want 20.00", balance)
	}
	// Same account in its own currency is untouched by rates.
	balance, err = e.Balance(eurAcct.ID, start, end, "EUR")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(decimal.MustParse("10.00")) != 0 {
		t.Errorf("balance = %s, want 10.00", balance)
	}
}

func TestExchangeRateSymmetry(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AddCurrency(&ledger.CurrencyNode{Symbol: "EUR", Scale: 2}); err != nil {
		t.Fatalf("add currency: %v", err)
	}
	date := ledger.Date(2024, time.June, 1)
	if err := e.SetExchangeRate("USD", "EUR", decimal.MustParse("0.5"), date); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	series, err := e.ExchangeRate("EUR", "USD")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	fwd, err := series.RateBetween("USD", "EUR", date)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if fwd.Cmp(decimal.MustParse("0.5")) != 0 {
		t.Errorf("forward = %s, want 0.5", fwd)
	}
	back, err := series.RateBetween("EUR", "USD", date)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if back.Cmp(decimal.MustParse("2")) != 0 {
		t.Errorf("back = %s, want 2", back)
	}
}

func TestDuplicateCurrencyRejected(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AddCurrency(&ledger.CurrencyNode{Symbol: "usd", Scale: 2}); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestActiveCurrencies(t *testing.T) {
	e := newTestEngine(t)
	for _, sym := range []string{"EUR", "GBP"} {
		if err := e.AddCurrency(&ledger.CurrencyNode{Symbol: sym, Scale: 2}); err != nil {
			t.Fatalf("add %s: %v", sym, err)
		}
	}
	eurAcct := ledger.Account{Name: "Euro", Type: ledger.AccountTypeCash, Currency: "EUR", Visible: true}
	if err := e.AddAccount(uuid.Nil, &eurAcct); err != nil {
		t.Fatalf("add account: %v", err)
	}
	active := e.ActiveCurrencies()
	symbols := make([]string, len(active))
	for i, c := range active {
		symbols[i] = c.Symbol
	}
	// GBP is registered but unreferenced; USD backs the root account.
	if len(symbols) != 2 || symbols[0] != "EUR" || symbols[1] != "USD" {
		t.Errorf("active = %v, want [EUR USD]", symbols)
	}
}

func TestSecurityEvents(t *testing.T) {
	e := newTestEngine(t)
	sec := ledger.SecurityNode{Symbol: "ACME", Scale: 2, Currency: "USD"}
	if err := e.AddSecurity(&sec); err != nil {
		t.Fatalf("add security: %v", err)
	}
	ev := ledger.SecurityHistoryEvent{
		Type: ledger.EventDividend, Date: ledger.Date(2024, time.May, 2),
		Value: decimal.MustParse("0.25"),
	}
	if err := e.AddSecurityHistoryEvent(sec.ID, ev); err != nil {
		t.Fatalf("add event: %v", err)
	}
	dup := ev
	dup.ID = uuid.Nil
	if err := e.AddSecurityHistoryEvent(sec.ID, dup); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate: err = %v, want ErrConflict", err)
	}
	got, err := e.Security("ACME")
	if err != nil {
		t.Fatalf("security: %v", err)
	}
	if len(got.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(got.Events))
	}
	if err := e.RemoveSecurityHistoryEvent(sec.ID, got.Events[0].ID); err != nil {
		t.Fatalf("remove event: %v", err)
	}
	got, _ = e.Security("ACME")
	if len(got.Events) != 0 {
		t.Errorf("events after remove = %d, want 0", len(got.Events))
	}
}

func TestSecurityHistoryOverwrite(t *testing.T) {
	e := newTestEngine(t)
	sec := ledger.SecurityNode{Symbol: "ACME", Scale: 2, Currency: "USD"}
	if err := e.AddSecurity(&sec); err != nil {
		t.Fatalf("add security: %v", err)
	}
	date := ledger.Date(2024, time.May, 1)
	for _, price := range []string{"10.00", "11.00"} {
		n := ledger.SecurityHistoryNode{Date: date, Price: decimal.MustParse(price)}
		if err := e.AddSecurityHistory(sec.ID, n); err != nil {
			t.Fatalf("add history: %v", err)
		}
	}
	got, _ := e.Security("ACME")
	if len(got.History) != 1 {
		t.Fatalf("history = %d, want 1", len(got.History))
	}
	if got.History[0].Price.Cmp(decimal.MustParse("11.00")) != 0 {
		t.Errorf("price = %s, want 11.00", got.History[0].Price)
	}
}

func TestBudgetGoalsFidelity(t *testing.T) {
	e := newTestEngine(t)
	groceries := addAccount(t, e, uuid.Nil, "Groceries", ledger.AccountTypeExpense)

	goal, err := ledger.NewBudgetGoal(ledger.PeriodWeekly)
	if err != nil {
		t.Fatalf("new goal: %v", err)
	}
	for i := range goal.Goals {
		goal.Goals[i] = decimal.MustParse("1.50")
	}
	b := ledger.Budget{Name: "Household", Period: ledger.PeriodWeekly}
	if err := b.SetGoal(groceries.ID, goal); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if err := e.AddBudget(&b); err != nil {
		t.Fatalf("add budget: %v", err)
	}

	got, err := e.Budget(b.ID)
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	stored, ok := got.Goal(groceries.ID)
	if !ok {
		t.Fatal("goal missing")
	}
	if len(stored.Goals) != 52 {
		t.Fatalf("goal length = %d, want 52", len(stored.Goals))
	}
	for i, g := range stored.Goals {
		if g.Cmp(decimal.MustParse("1.50")) != 0 {
			t.Fatalf("goal[%d] = %s, want 1.50", i, g)
		}
	}

	// Mismatched granularity is rejected up front.
	wrong := ledger.Budget{Name: "Wrong", Period: ledger.PeriodMonthly,
		Goals: map[uuid.UUID]ledger.BudgetGoal{groceries.ID: stored}}
	if err := e.AddBudget(&wrong); !errors.Is(err, errs.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestPendingReminders(t *testing.T) {
	e := newTestEngine(t)
	ref := ledger.Date(2024, time.June, 1)

	soon := ledger.Reminder{
		Type: ledger.ReminderWeekly, Description: "rent",
		StartDate: ref.AddDate(0, 0, 3), Enabled: true,
	}
	far := ledger.Reminder{
		Type: ledger.ReminderMonthly, Description: "insurance",
		StartDate: ref.AddDate(0, 2, 0), Enabled: true,
	}
	off := ledger.Reminder{
		Type: ledger.ReminderDaily, Description: "disabled",
		StartDate: ref, Enabled: false,
	}
	for _, r := range []*ledger.Reminder{&soon, &far, &off} {
		if err := e.AddReminder(r); err != nil {
			t.Fatalf("add reminder %s: %v", r.Description, err)
		}
	}
	pending := e.PendingReminders(ref)
	if len(pending) != 1 || pending[0].ID != soon.ID {
		t.Fatalf("pending = %+v, want only %s", pending, soon.ID)
	}
	if got := e.Reminders(); len(got) != 3 {
		t.Errorf("reminders = %d, want 3", len(got))
	}
}

func TestPurgeRemovesObject(t *testing.T) {
	e := newTestEngine(t)
	leaf := addAccount(t, e, uuid.Nil, "Obsolete", ledger.AccountTypeBank)
	if err := e.RemoveAccount(leaf.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	entries := e.TrashEntries()
	if len(entries) != 1 {
		t.Fatalf("trash = %d, want 1", len(entries))
	}
	if err := e.Purge(entries[0].ID); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if got := e.TrashEntries(); len(got) != 0 {
		t.Errorf("trash after purge = %d, want 0", len(got))
	}
	if _, err := e.Account(leaf.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("purged lookup: err = %v, want ErrNotFound", err)
	}
}

func TestEmptyTrash(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"A", "B"} {
		leaf := addAccount(t, e, uuid.Nil, name, ledger.AccountTypeBank)
		if err := e.RemoveAccount(leaf.ID); err != nil {
			t.Fatalf("remove %s: %v", name, err)
		}
	}
	purged, err := e.EmptyTrash(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("empty trash: %v", err)
	}
	if purged != 2 {
		t.Errorf("purged = %d, want 2", purged)
	}
	if got := e.TrashEntries(); len(got) != 0 {
		t.Errorf("trash = %d, want 0", len(got))
	}
}

func TestPathNameAndSeparator(t *testing.T) {
	e := newTestEngine(t)
	assets := addAccount(t, e, uuid.Nil, "Assets", ledger.AccountTypeBank)
	checking := addAccount(t, e, assets.ID, "Checking", ledger.AccountTypeChecking)

	path, err := e.PathName(checking.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "Assets:Checking" {
		t.Errorf("path = %q, want Assets:Checking", path)
	}
	if err := e.SetAccountSeparator("/"); err != nil {
		t.Fatalf("set separator: %v", err)
	}
	path, _ = e.PathName(checking.ID)
	if path != "Assets/Checking" {
		t.Errorf("path = %q, want Assets/Checking", path)
	}
}

func TestAccountAttributes(t *testing.T) {
	e := newTestEngine(t)
	a := addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeChecking)

	if err := e.SetAccountAttribute(a.ID, "bank", "First National"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := e.SetAccountAttribute(a.ID, "bank", "Second National"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok := e.AccountAttribute(a.ID, "bank")
	if !ok || v != "Second National" {
		t.Errorf("attribute = %q/%v, want Second National", v, ok)
	}
}

func TestTypedAccountLists(t *testing.T) {
	e := newTestEngine(t)
	addAccount(t, e, uuid.Nil, "Salary", ledger.AccountTypeIncome)
	addAccount(t, e, uuid.Nil, "Groceries", ledger.AccountTypeExpense)
	addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeBank)
	broker := ledger.Account{Name: "Broker", Type: ledger.AccountTypeInvest, Currency: "USD", Visible: true}
	if err := e.AddAccount(uuid.Nil, &broker); err != nil {
		t.Fatalf("add broker: %v", err)
	}

	if got := e.IncomeAccountList(); len(got) != 1 || got[0].Name != "Salary" {
		t.Errorf("income = %+v", got)
	}
	if got := e.ExpenseAccountList(); len(got) != 1 || got[0].Name != "Groceries" {
		t.Errorf("expense = %+v", got)
	}
	if got := e.BankAccountList(); len(got) != 1 || got[0].Name != "Checking" {
		t.Errorf("bank = %+v", got)
	}
	if got := e.InvestmentAccountList(); len(got) != 1 || got[0].Name != "Broker" {
		t.Errorf("investment = %+v", got)
	}
}

func TestClosedEngineRejectsOperations(t *testing.T) {
	e, err := Boot("", "", Options{Store: memory.New(), Logger: testLogger()})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := e.Close(); !errors.Is(err, errs.ErrClosed) {
		t.Errorf("double close: err = %v, want ErrClosed", err)
	}
	a := ledger.Account{Name: "X", Type: ledger.AccountTypeBank, Currency: "USD"}
	if err := e.AddAccount(uuid.Nil, &a); !errors.Is(err, errs.ErrClosed) {
		t.Errorf("add after close: err = %v, want ErrClosed", err)
	}
	if _, err := e.SaveAs("x.db"); !errors.Is(err, errs.ErrClosed) {
		t.Errorf("save-as after close: err = %v, want ErrClosed", err)
	}
}

// trashFailStore wraps a store so that trash wrapper writes fail on demand.
type trashFailStore struct {
	storage.Store
	fail bool
}

func (s *trashFailStore) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &trashFailTx{Tx: tx, store: s}, nil
}

type trashFailTx struct {
	storage.Tx
	store *trashFailStore
}

func (t *trashFailTx) PutTrashEntry(e ledger.TrashEntry) error {
	if t.store.fail {
		return errors.New("disk full")
	}
	return t.Tx.PutTrashEntry(e)
}

func TestFailedTrashWriteLeavesMemoryUntouched(t *testing.T) {
	store := &trashFailStore{Store: memory.New()}
	e, err := Boot("", "", Options{Store: store, Logger: testLogger()})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	t.Cleanup(func() { e.Close() })

	checking := addAccount(t, e, uuid.Nil, "Checking", ledger.AccountTypeChecking)
	var txns []ledger.Transaction
	for i := 0; i < 3; i++ {
		txns = append(txns, addTenDollars(t, e, checking.ID))
	}

	store.fail = true
	if err := e.RemoveTransaction(txns[0].ID); err == nil {
		t.Fatal("remove transaction: want error, got nil")
	}

	if got := len(e.Transactions()); got != 3 {
		t.Errorf("transactions after failed remove = %d, want 3", got)
	}
	if got := e.TransactionCount(checking.ID); got != 3 {
		t.Errorf("transaction count = %d, want 3", got)
	}
	if _, err := e.Transaction(txns[0].ID); err != nil {
		t.Errorf("transaction lookup after failed remove: %v", err)
	}
	if got := len(e.TrashEntries()); got != 0 {
		t.Errorf("trash entries = %d, want 0", got)
	}

	store.fail = false
	if err := e.RemoveAccount(checking.ID); !errors.Is(err, errs.ErrInUse) {
		t.Errorf("remove account with transactions: err = %v, want ErrInUse", err)
	}
	if err := e.RemoveTransaction(txns[0].ID); err != nil {
		t.Errorf("remove transaction after recovery: %v", err)
	}
}

func TestAccountByName(t *testing.T) {
	e := newTestEngine(t)
	assets := addAccount(t, e, uuid.Nil, "Assets", ledger.AccountTypeBank)
	addAccount(t, e, assets.ID, "Checking", ledger.AccountTypeChecking)

	got, err := e.AccountByName("Checking")
	if err != nil {
		t.Fatalf("account by name: %v", err)
	}
	if got.ParentID != assets.ID {
		t.Errorf("parent = %s, want %s", got.ParentID, assets.ID)
	}
	if _, err := e.AccountByName("Savings"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown name: err = %v, want ErrNotFound", err)
	}
}

func TestBalanceOfTrashedAccountIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	a := addAccount(t, e, uuid.Nil, "Empty", ledger.AccountTypeBank)
	if err := e.RemoveAccount(a.ID); err != nil {
		t.Fatalf("remove account: %v", err)
	}
	_, err := e.Balance(a.ID, ledger.Date(2024, time.January, 1), ledger.Date(2024, time.December, 31), "USD")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("balance of trashed account: err = %v, want ErrNotFound", err)
	}
}

func TestChildOrderSkipsTrashedSiblings(t *testing.T) {
	e := newTestEngine(t)
	root, err := e.RootAccount()
	if err != nil {
		t.Fatalf("root account: %v", err)
	}
	first := addAccount(t, e, root.ID, "First", ledger.AccountTypeBank)
	if err := e.RemoveAccount(first.ID); err != nil {
		t.Fatalf("remove account: %v", err)
	}
	second := addAccount(t, e, root.ID, "Second", ledger.AccountTypeBank)
	got, err := e.Account(second.ID)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if got.ChildOrder != first.ChildOrder {
		t.Errorf("child order = %d, want %d (slot freed by trashed sibling)", got.ChildOrder, first.ChildOrder)
	}
}
