package ledger

import "github.com/google/uuid"

// CurrencyNode describes a currency known to an engine instance. Symbols are
// unique within a store; one node is designated the default currency.
type CurrencyNode struct {
	ID     uuid.UUID
	Symbol string
	// Scale is the number of decimal places used for display and minor units.
	Scale  int
	Prefix string
	Suffix string
	State  ObjectState
}
