package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
)

// RateKey identifies the historical rate series between two currencies. The
// key is order-independent: rate(A,B) and rate(B,A) address the same series.
type RateKey struct {
	// Base and Quote are the pair in lexicographic symbol order; the stored
	// rate is quote units per base unit.
	Base  string
	Quote string
}

// NewRateKey canonicalizes a currency pair. The second return is true when
// (from, to) matches the canonical (Base, Quote) orientation.
func NewRateKey(from, to string) (RateKey, bool) {
	if from <= to {
		return RateKey{Base: from, Quote: to}, true
	}
	return RateKey{Base: to, Quote: from}, false
}

func (k RateKey) String() string { return k.Base + ":" + k.Quote }

// RateSample is one dated sample of a rate series.
type RateSample struct {
	Date time.Time // day granularity
	Rate decimal.Decimal
}

// ExchangeRate holds the time-indexed rate history for a canonical pair.
// Samples are kept sorted ascending by date with at most one sample per day.
type ExchangeRate struct {
	ID      uuid.UUID
	Key     RateKey
	Samples []RateSample
}

// SetSample inserts or overwrites the sample for the given date, keeping
// samples sorted.
func (r *ExchangeRate) SetSample(date time.Time, rate decimal.Decimal) {
	date = Day(date)
	i := sort.Search(len(r.Samples), func(i int) bool { return !r.Samples[i].Date.Before(date) })
	if i < len(r.Samples) && r.Samples[i].Date.Equal(date) {
		r.Samples[i].Rate = rate
		return
	}
	r.Samples = append(r.Samples, RateSample{})
	copy(r.Samples[i+1:], r.Samples[i:])
	r.Samples[i] = RateSample{Date: date, Rate: rate}
}

// RateOn returns the sample with the greatest date at or before the query
// date, oriented base->quote. With no qualifying sample it fails with
// errs.ErrNoRateAvailable, never a silent 1.0 or zero.
func (r *ExchangeRate) RateOn(date time.Time) (decimal.Decimal, error) {
	date = Day(date)
	i := sort.Search(len(r.Samples), func(i int) bool { return r.Samples[i].Date.After(date) })
	if i == 0 {
		return decimal.Decimal{}, errs.ErrNoRateAvailable
	}
	return r.Samples[i-1].Rate, nil
}

// RateBetween returns the rate from one currency of the pair to the other at
// the given date, inverting the stored orientation when needed.
func (r *ExchangeRate) RateBetween(from, to string, date time.Time) (decimal.Decimal, error) {
	rate, err := r.RateOn(date)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if from == r.Key.Base && to == r.Key.Quote {
		return rate, nil
	}
	if from == r.Key.Quote && to == r.Key.Base {
		one := decimal.MustParse("1")
		inv, err := one.Quo(rate)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return inv, nil
	}
	return decimal.Decimal{}, errs.ErrInvalid
}
