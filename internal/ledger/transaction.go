package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// ReconciledState tracks reconciliation of a transaction against statements.
type ReconciledState string

const (
	NotReconciled ReconciledState = "not_reconciled"
	Cleared       ReconciledState = "cleared"
	Reconciled    ReconciledState = "reconciled"
)

// Entry posts a signed amount against one account. Amounts are exact
// decimals; binary floating point never touches monetary values.
type Entry struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Currency  string
	Memo      string
}

// Transaction is a dated, signed monetary posting against one or more
// accounts. A single-entry transaction is the convenience form posting one
// amount against one account; a split posts entries against several accounts
// and must balance by construction.
type Transaction struct {
	ID         uuid.UUID
	Date       time.Time // day granularity, midnight UTC
	Number     string
	Payee      string
	Memo       string
	Currency   string
	Reconciled ReconciledState
	// Attachment is an opaque reference into the external blob directory.
	// The engine stores only the path, never the bytes.
	Attachment string
	Entries    []Entry
	State      ObjectState
	// Seq preserves insertion order for deterministic iteration.
	Seq int64
}

// HasAttachment reports whether the transaction carries an attachment reference.
func (t Transaction) HasAttachment() bool { return t.Attachment != "" }

// References reports whether any entry posts against the given account.
func (t Transaction) References(accountID uuid.UUID) bool {
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// NewSingleEntry builds the single-entry convenience form: one signed amount
// against one account, in that account's currency.
func NewSingleEntry(accountID uuid.UUID, amount decimal.Decimal, currency string, date time.Time, memo, payee, number string) Transaction {
	return Transaction{
		ID:         uuid.New(),
		Date:       Day(date),
		Number:     number,
		Payee:      payee,
		Memo:       memo,
		Currency:   currency,
		Reconciled: NotReconciled,
		Entries: []Entry{{
			ID:        uuid.New(),
			AccountID: accountID,
			Amount:    amount,
			Currency:  currency,
			Memo:      memo,
		}},
		State: StateLive,
	}
}

// Converter resolves an amount in a source currency into a target currency at
// a given date. Implementations fail with errs.ErrNoRateAvailable when no
// qualifying sample exists.
type Converter func(amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, error)

// Balanced reports whether a multi-entry transaction sums to zero in the
// transaction currency, converting each entry at the transaction date.
// Single-entry transactions are balanced by definition.
func (t Transaction) Balanced(conv Converter) (bool, error) {
	if len(t.Entries) <= 1 {
		return true, nil
	}
	sum := decimal.Decimal{}
	for _, e := range t.Entries {
		amt := e.Amount
		if e.Currency != t.Currency {
			var err error
			amt, err = conv(e.Amount, e.Currency, t.Currency, t.Date)
			if err != nil {
				return false, err
			}
		}
		var err error
		sum, err = sum.Add(amt)
		if err != nil {
			return false, err
		}
	}
	return sum.IsZero(), nil
}
