package ledger

import (
	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/meta"
)

// AccountType enumerates the concrete classification of an account.
type AccountType string

const (
	AccountTypeBank      AccountType = "bank"
	AccountTypeChecking  AccountType = "checking"
	AccountTypeCash      AccountType = "cash"
	AccountTypeCredit    AccountType = "credit"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeInvest    AccountType = "invest"
	AccountTypeMutual    AccountType = "mutual"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeLiability AccountType = "liability"
	// AccountTypeRoot marks the single distinguished root of the tree.
	AccountTypeRoot AccountType = "root"
)

// AccountGroup is the coarse classification derived from AccountType.
type AccountGroup string

const (
	GroupAsset     AccountGroup = "asset"
	GroupLiability AccountGroup = "liability"
	GroupIncome    AccountGroup = "income"
	GroupExpense   AccountGroup = "expense"
	GroupEquity    AccountGroup = "equity"
	GroupInvest    AccountGroup = "invest"
	GroupRoot      AccountGroup = "root"
)

// Account is one node of the account tree. Every non-root account has exactly
// one parent; children are ordered by ChildOrder. Name need not be globally
// unique, but name+parent is the practical identity for lookups.
type Account struct {
	ID       uuid.UUID
	ParentID uuid.UUID // uuid.Nil for the root account
	Name     string
	Number   string
	Type     AccountType
	Currency string
	// Placeholder accounts organize other accounts and may not hold
	// transaction entries.
	Placeholder bool
	Visible     bool
	ChildOrder  int
	Attributes  meta.Metadata
	State       ObjectState
}

// IsRoot reports whether a is the distinguished root account.
func (a Account) IsRoot() bool { return a.Type == AccountTypeRoot }
