package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/tinoosan/bookkeep/internal/ledger"
)

const dateLayout = "2006-01-02"

// parseAmount validates a decimal amount string against its currency via
// govalues/money before handing the exact decimal to the engine.
func parseAmount(amount, currency string) (decimal.Decimal, error) {
	if _, err := money.ParseAmount(currency, amount); err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %q in %s: %w", amount, currency, err)
	}
	return decimal.Parse(amount)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func fmtDate(t time.Time) string { return t.UTC().Format(dateLayout) }

type accountRequest struct {
	ParentID    string `json:"parent_id,omitempty"`
	Name        string `json:"name"`
	Number      string `json:"number,omitempty"`
	Type        string `json:"type"`
	Currency    string `json:"currency"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Visible     *bool  `json:"visible,omitempty"`
}

type accountResponse struct {
	ID          string            `json:"id"`
	ParentID    string            `json:"parent_id,omitempty"`
	Name        string            `json:"name"`
	Number      string            `json:"number,omitempty"`
	Type        string            `json:"type"`
	Currency    string            `json:"currency"`
	Placeholder bool              `json:"placeholder"`
	Visible     bool              `json:"visible"`
	ChildOrder  int               `json:"child_order"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	out := accountResponse{
		ID:          a.ID.String(),
		Name:        a.Name,
		Number:      a.Number,
		Type:        string(a.Type),
		Currency:    a.Currency,
		Placeholder: a.Placeholder,
		Visible:     a.Visible,
		ChildOrder:  a.ChildOrder,
		Attributes:  a.Attributes,
	}
	if a.ParentID != uuid.Nil {
		out.ParentID = a.ParentID.String()
	}
	return out
}

type entryPayload struct {
	ID        string `json:"id,omitempty"`
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Memo      string `json:"memo,omitempty"`
}

type transactionRequest struct {
	Date       string         `json:"date"`
	Number     string         `json:"number,omitempty"`
	Payee      string         `json:"payee,omitempty"`
	Memo       string         `json:"memo,omitempty"`
	Currency   string         `json:"currency"`
	Attachment string         `json:"attachment,omitempty"`
	Entries    []entryPayload `json:"entries"`
}

type transactionResponse struct {
	ID         string         `json:"id"`
	Date       string         `json:"date"`
	Number     string         `json:"number,omitempty"`
	Payee      string         `json:"payee,omitempty"`
	Memo       string         `json:"memo,omitempty"`
	Currency   string         `json:"currency"`
	Reconciled string         `json:"reconciled"`
	Attachment string         `json:"attachment,omitempty"`
	Entries    []entryPayload `json:"entries"`
}

func toTransactionDomain(req transactionRequest) (ledger.Transaction, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("date %q: want YYYY-MM-DD", req.Date)
	}
	t := ledger.Transaction{
		Date:       date,
		Number:     req.Number,
		Payee:      req.Payee,
		Memo:       req.Memo,
		Currency:   req.Currency,
		Attachment: req.Attachment,
	}
	for _, e := range req.Entries {
		accountID, err := uuid.Parse(e.AccountID)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("account_id %q: %w", e.AccountID, err)
		}
		amount, err := parseAmount(e.Amount, e.Currency)
		if err != nil {
			return ledger.Transaction{}, err
		}
		t.Entries = append(t.Entries, ledger.Entry{
			AccountID: accountID,
			Amount:    amount,
			Currency:  e.Currency,
			Memo:      e.Memo,
		})
	}
	return t, nil
}

func toTransactionResponse(t ledger.Transaction) transactionResponse {
	out := transactionResponse{
		ID:         t.ID.String(),
		Date:       fmtDate(t.Date),
		Number:     t.Number,
		Payee:      t.Payee,
		Memo:       t.Memo,
		Currency:   t.Currency,
		Reconciled: string(t.Reconciled),
		Attachment: t.Attachment,
	}
	for _, e := range t.Entries {
		out.Entries = append(out.Entries, entryPayload{
			ID:        e.ID.String(),
			AccountID: e.AccountID.String(),
			Amount:    e.Amount.String(),
			Currency:  e.Currency,
			Memo:      e.Memo,
		})
	}
	return out
}

type currencyRequest struct {
	Symbol string `json:"symbol"`
	Scale  int    `json:"scale"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

type currencyResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Scale  int    `json:"scale"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

func toCurrencyResponse(c ledger.CurrencyNode) currencyResponse {
	return currencyResponse{
		ID: c.ID.String(), Symbol: c.Symbol, Scale: c.Scale,
		Prefix: c.Prefix, Suffix: c.Suffix,
	}
}

type rateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
	Date string `json:"date"`
}

type rateResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
	Date string `json:"date"`
}

type securityRequest struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	Scale       int    `json:"scale"`
	Currency    string `json:"currency"`
}

type securityHistoryRequest struct {
	Date   string `json:"date"`
	Price  string `json:"price"`
	High   string `json:"high,omitempty"`
	Low    string `json:"low,omitempty"`
	Volume int64  `json:"volume,omitempty"`
}

type securityEventRequest struct {
	Type  string `json:"type"`
	Date  string `json:"date"`
	Value string `json:"value"`
}

type securityEventResponse struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Date  string `json:"date"`
	Value string `json:"value"`
}

type securityResponse struct {
	ID          string                  `json:"id"`
	Symbol      string                  `json:"symbol"`
	Description string                  `json:"description,omitempty"`
	Scale       int                     `json:"scale"`
	Currency    string                  `json:"currency"`
	History     []securityHistoryNode   `json:"history,omitempty"`
	Events      []securityEventResponse `json:"events,omitempty"`
}

type securityHistoryNode struct {
	Date   string `json:"date"`
	Price  string `json:"price"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Volume int64  `json:"volume"`
}

func toSecurityResponse(s ledger.SecurityNode) securityResponse {
	out := securityResponse{
		ID: s.ID.String(), Symbol: s.Symbol, Description: s.Description,
		Scale: s.Scale, Currency: s.Currency,
	}
	for _, n := range s.History {
		out.History = append(out.History, securityHistoryNode{
			Date: fmtDate(n.Date), Price: n.Price.String(),
			High: n.High.String(), Low: n.Low.String(), Volume: n.Volume,
		})
	}
	for _, ev := range s.Events {
		out.Events = append(out.Events, securityEventResponse{
			ID: ev.ID.String(), Type: string(ev.Type),
			Date: fmtDate(ev.Date), Value: ev.Value.String(),
		})
	}
	return out
}

type budgetRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Period      string                 `json:"period"`
	Goals       map[string]budgetGoals `json:"goals,omitempty"`
}

type budgetGoals struct {
	Goals []string `json:"goals"`
}

type budgetResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Period      string                 `json:"period"`
	Goals       map[string]budgetGoals `json:"goals,omitempty"`
}

func toBudgetDomain(req budgetRequest) (ledger.Budget, error) {
	b := ledger.Budget{
		Name:        req.Name,
		Description: req.Description,
		Period:      ledger.Period(req.Period),
	}
	for accountID, payload := range req.Goals {
		id, err := uuid.Parse(accountID)
		if err != nil {
			return ledger.Budget{}, fmt.Errorf("account_id %q: %w", accountID, err)
		}
		goal := ledger.BudgetGoal{Period: b.Period}
		for _, raw := range payload.Goals {
			d, err := decimal.Parse(raw)
			if err != nil {
				return ledger.Budget{}, fmt.Errorf("goal %q: %w", raw, err)
			}
			goal.Goals = append(goal.Goals, d)
		}
		if err := b.SetGoal(id, goal); err != nil {
			return ledger.Budget{}, err
		}
	}
	return b, nil
}

func toBudgetResponse(b ledger.Budget) budgetResponse {
	out := budgetResponse{
		ID: b.ID.String(), Name: b.Name, Description: b.Description,
		Period: string(b.Period),
	}
	if len(b.Goals) > 0 {
		out.Goals = make(map[string]budgetGoals, len(b.Goals))
		for accountID, goal := range b.Goals {
			strs := make([]string, len(goal.Goals))
			for i, g := range goal.Goals {
				strs[i] = g.String()
			}
			out.Goals[accountID.String()] = budgetGoals{Goals: strs}
		}
	}
	return out
}

type reminderRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Increment   int    `json:"increment,omitempty"`
	Enabled     bool   `json:"enabled"`
	AccountID   string `json:"account_id,omitempty"`
}

type reminderResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Increment   int    `json:"increment"`
	Enabled     bool   `json:"enabled"`
	AccountID   string `json:"account_id,omitempty"`
}

func toReminderResponse(r ledger.Reminder) reminderResponse {
	out := reminderResponse{
		ID: r.ID.String(), Type: string(r.Type), Description: r.Description,
		StartDate: fmtDate(r.StartDate), Increment: r.Increment, Enabled: r.Enabled,
	}
	if !r.EndDate.IsZero() {
		out.EndDate = fmtDate(r.EndDate)
	}
	if r.AccountID != uuid.Nil {
		out.AccountID = r.AccountID.String()
	}
	return out
}

type trashResponse struct {
	ID        string `json:"id"`
	ObjectID  string `json:"object_id"`
	Kind      string `json:"kind"`
	TrashedAt string `json:"trashed_at"`
}

type balanceResponse struct {
	AccountID string `json:"account_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

type preferenceBody struct {
	Value string `json:"value"`
}
