package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
	"github.com/tinoosan/bookkeep/internal/ledger"
	"github.com/tinoosan/bookkeep/internal/slug"
	"github.com/tinoosan/bookkeep/internal/storage"
)

func (e *Engine) currencyBySymbol(symbol string) (*ledger.CurrencyNode, bool) {
	for _, c := range e.currencies {
		if c.State == ledger.StateLive && c.Symbol == symbol {
			return c, true
		}
	}
	return nil, false
}

// AddCurrency registers a currency. Symbols are normalized to upper case and
// must be unique among live currencies.
func (e *Engine) AddCurrency(c *ledger.CurrencyNode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: nil currency", errs.ErrInvalid)
	}
	c.Symbol = slug.NormalizeSymbol(c.Symbol)
	if !slug.IsSymbol(c.Symbol) {
		return fmt.Errorf("%w: malformed currency symbol %q", errs.ErrInvalid, c.Symbol)
	}
	if c.Scale < 0 || c.Scale > 9 {
		return fmt.Errorf("%w: currency scale %d out of range", errs.ErrInvalid, c.Scale)
	}
	if _, exists := e.currencyBySymbol(c.Symbol); exists {
		return fmt.Errorf("%w: currency %q already registered", errs.ErrConflict, c.Symbol)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.State = ledger.StateLive

	stored := *c
	err := e.persist(func(tx storage.Tx) error {
		return tx.PutCurrency(stored)
	})
	if err != nil {
		return err
	}
	e.currencies[stored.ID] = &stored
	opsTotal.WithLabelValues("add_currency").Inc()
	e.log.Debug("currency added", "symbol", stored.Symbol)
	return nil
}

// SetDefaultCurrency marks a registered currency as the book default.
func (e *Engine) SetDefaultCurrency(symbol string) error {
	e.mu.Lock()
	if err := e.guard(); err != nil {
		e.mu.Unlock()
		return err
	}
	if _, ok := e.currencyBySymbol(symbol); !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, symbol)
	}
	e.mu.Unlock()
	return e.SetPreference(prefDefaultCurrency, symbol)
}

// DefaultCurrency returns the book's default currency symbol.
func (e *Engine) DefaultCurrency() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs[prefDefaultCurrency]
}

// Currency looks a currency up by symbol.
func (e *Engine) Currency(symbol string) (ledger.CurrencyNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.currencyBySymbol(symbol)
	if !ok {
		return ledger.CurrencyNode{}, fmt.Errorf("%w: currency %q", errs.ErrNotFound, symbol)
	}
	return *c, nil
}

// Currencies returns all live currencies ordered by symbol.
func (e *Engine) Currencies() []ledger.CurrencyNode {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.CurrencyNode, 0, len(e.currencies))
	for _, c := range e.currencies {
		if c.State == ledger.StateLive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ActiveCurrencies recomputes the set of currencies referenced by live
// accounts and transactions, ordered by symbol.
func (e *Engine) ActiveCurrencies() []ledger.CurrencyNode {
	e.mu.Lock()
	defer e.mu.Unlock()
	used := make(map[string]bool)
	for _, a := range e.accounts {
		if a.State == ledger.StateLive {
			used[a.Currency] = true
		}
	}
	for _, t := range e.txns {
		if t.State != ledger.StateLive {
			continue
		}
		used[t.Currency] = true
		for _, entry := range t.Entries {
			used[entry.Currency] = true
		}
	}
	var out []ledger.CurrencyNode
	for _, c := range e.currencies {
		if c.State == ledger.StateLive && used[c.Symbol] {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// SetExchangeRate upserts the dated sample for the currency pair. The pair
// is canonicalized; a rate supplied against the canonical order is stored
// inverted so both query orders resolve consistently.
func (e *Engine) SetExchangeRate(from, to string, rate decimal.Decimal, date time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: identical currency pair %q", errs.ErrInvalid, from)
	}
	if _, ok := e.currencyBySymbol(from); !ok {
		return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, from)
	}
	if _, ok := e.currencyBySymbol(to); !ok {
		return fmt.Errorf("%w: unknown currency %q", errs.ErrInvalid, to)
	}
	if rate.IsZero() {
		return fmt.Errorf("%w: zero exchange rate", errs.ErrInvalid)
	}
	key, canonical := ledger.NewRateKey(from, to)
	if !canonical {
		one := decimal.MustParse("1")
		inv, err := one.Quo(rate)
		if err != nil {
			return fmt.Errorf("%w: invert rate: %v", errs.ErrInvalid, err)
		}
		rate = inv
	}

	series, ok := e.rates[key]
	var updated ledger.ExchangeRate
	if ok {
		updated = *series
		updated.Samples = append([]ledger.RateSample(nil), series.Samples...)
	} else {
		updated = ledger.ExchangeRate{ID: uuid.New(), Key: key}
	}
	updated.SetSample(date, rate)

	err := e.persist(func(tx storage.Tx) error {
		return tx.PutExchangeRate(updated)
	})
	if err != nil {
		return err
	}
	e.rates[key] = &updated
	opsTotal.WithLabelValues("set_exchange_rate").Inc()
	return nil
}

// ExchangeRate resolves the historical rate series for a currency pair.
// Both query orders resolve to the same series.
func (e *Engine) ExchangeRate(from, to string) (ledger.ExchangeRate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key, _ := ledger.NewRateKey(from, to)
	series, ok := e.rates[key]
	if !ok {
		return ledger.ExchangeRate{}, fmt.Errorf("%w: no rate series for %s", errs.ErrNotFound, key)
	}
	out := *series
	out.Samples = append([]ledger.RateSample(nil), series.Samples...)
	return out, nil
}

// convert resolves amount from one currency into another at the given date.
// Same-currency conversion is identity. Callers hold the engine lock.
func (e *Engine) convert(amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	key, _ := ledger.NewRateKey(from, to)
	series, ok := e.rates[key]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s to %s", errs.ErrNoRateAvailable, from, to)
	}
	rate, err := series.RateBetween(from, to, date)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s to %s on %s",
			errs.ErrNoRateAvailable, from, to, date.Format("2006-01-02"))
	}
	return amount.Mul(rate)
}
