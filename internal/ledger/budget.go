package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
)

// Period is the reporting granularity of a budget. Each granularity has a
// fixed number of periods per year.
type Period string

const (
	PeriodWeekly    Period = "weekly"
	PeriodBiWeekly  Period = "bi_weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

var periodCounts = map[Period]int{
	PeriodWeekly:    52,
	PeriodBiWeekly:  26,
	PeriodMonthly:   12,
	PeriodQuarterly: 4,
	PeriodYearly:    1,
}

// Count returns the number of periods per year, or 0 for an unknown period.
func (p Period) Count() int { return periodCounts[p] }

// Valid reports whether p is a known granularity.
func (p Period) Valid() bool { return periodCounts[p] != 0 }

// BudgetGoal holds one goal amount per period-of-year for a single account.
// The slice length always equals Period.Count(); retrieval returns the exact
// stored length and granularity, never a resampled vector.
type BudgetGoal struct {
	Period Period
	Goals  []decimal.Decimal
}

// NewBudgetGoal allocates a zeroed goal vector for the granularity.
func NewBudgetGoal(p Period) (BudgetGoal, error) {
	if !p.Valid() {
		return BudgetGoal{}, fmt.Errorf("%w: unknown budget period %q", errs.ErrInvalid, p)
	}
	return BudgetGoal{Period: p, Goals: make([]decimal.Decimal, p.Count())}, nil
}

// Validate checks the goal vector length against its granularity.
func (g BudgetGoal) Validate() error {
	if !g.Period.Valid() {
		return fmt.Errorf("%w: unknown budget period %q", errs.ErrInvalid, g.Period)
	}
	if len(g.Goals) != g.Period.Count() {
		return fmt.Errorf("%w: goal vector length %d, want %d for %s",
			errs.ErrInvalid, len(g.Goals), g.Period.Count(), g.Period)
	}
	return nil
}

// Clone returns a deep copy of the goal vector.
func (g BudgetGoal) Clone() BudgetGoal {
	out := BudgetGoal{Period: g.Period, Goals: make([]decimal.Decimal, len(g.Goals))}
	copy(out.Goals, g.Goals)
	return out
}

// Budget maps accounts to per-period goal vectors at a single reporting
// granularity.
type Budget struct {
	ID          uuid.UUID
	Name        string
	Description string
	Period      Period
	Goals       map[uuid.UUID]BudgetGoal
	State       ObjectState
}

// SetGoal stores the goal vector for an account. The goal's granularity must
// match the budget's granularity; the length must match the granularity.
func (b *Budget) SetGoal(accountID uuid.UUID, goal BudgetGoal) error {
	if accountID == uuid.Nil {
		return errs.ErrInvalid
	}
	if err := goal.Validate(); err != nil {
		return err
	}
	if goal.Period != b.Period {
		return fmt.Errorf("%w: goal period %s does not match budget period %s",
			errs.ErrInvalid, goal.Period, b.Period)
	}
	if b.Goals == nil {
		b.Goals = make(map[uuid.UUID]BudgetGoal)
	}
	b.Goals[accountID] = goal.Clone()
	return nil
}

// Goal returns the stored goal vector for an account.
func (b *Budget) Goal(accountID uuid.UUID) (BudgetGoal, bool) {
	g, ok := b.Goals[accountID]
	if !ok {
		return BudgetGoal{}, false
	}
	return g.Clone(), true
}

// Clone returns a deep copy of the budget and its goal mapping.
func (b *Budget) Clone() *Budget {
	out := &Budget{ID: b.ID, Name: b.Name, Description: b.Description, Period: b.Period, State: b.State}
	out.Goals = make(map[uuid.UUID]BudgetGoal, len(b.Goals))
	for id, g := range b.Goals {
		out.Goals[id] = g.Clone()
	}
	return out
}
