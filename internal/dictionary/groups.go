// Package dictionary maps account types to their coarse account group. The
// mapping is a closed lookup table: unknown types resolve to no group rather
// than dispatching behavior.
package dictionary

import "github.com/tinoosan/bookkeep/internal/ledger"

var groups = map[ledger.AccountType]ledger.AccountGroup{
	ledger.AccountTypeBank:      ledger.GroupAsset,
	ledger.AccountTypeChecking:  ledger.GroupAsset,
	ledger.AccountTypeCash:      ledger.GroupAsset,
	ledger.AccountTypeCredit:    ledger.GroupLiability,
	ledger.AccountTypeLiability: ledger.GroupLiability,
	ledger.AccountTypeIncome:    ledger.GroupIncome,
	ledger.AccountTypeExpense:   ledger.GroupExpense,
	ledger.AccountTypeInvest:    ledger.GroupInvest,
	ledger.AccountTypeMutual:    ledger.GroupInvest,
	ledger.AccountTypeEquity:    ledger.GroupEquity,
	ledger.AccountTypeRoot:      ledger.GroupRoot,
}

// GroupFor returns the AccountGroup for t and whether t is a known type.
func GroupFor(t ledger.AccountType) (ledger.AccountGroup, bool) {
	g, ok := groups[t]
	return g, ok
}

// IsValidType reports whether t is one of the closed set of account types.
func IsValidType(t ledger.AccountType) bool {
	_, ok := groups[t]
	return ok
}

// Types returns the closed set of account types, excluding the root type.
func Types() []ledger.AccountType {
	out := make([]ledger.AccountType, 0, len(groups)-1)
	for t := range groups {
		if t != ledger.AccountTypeRoot {
			out = append(out, t)
		}
	}
	return out
}
