package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
)

func TestNewRateKeyOrderIndependent(t *testing.T) {
	k1, fwd := NewRateKey("USD", "CAD")
	k2, rev := NewRateKey("CAD", "USD")
	if k1 != k2 {
		t.Fatalf("keys differ: %v vs %v", k1, k2)
	}
	if k1.Base != "CAD" || k1.Quote != "USD" {
		t.Fatalf("not canonical: %v", k1)
	}
	if fwd {
		t.Fatal("USD->CAD should not be canonical orientation")
	}
	if !rev {
		t.Fatal("CAD->USD should be canonical orientation")
	}
}

func TestRateOnMonotonicLookup(t *testing.T) {
	d1 := Date(2024, time.March, 1)
	d2 := Date(2024, time.March, 10)

	r := &ExchangeRate{Key: RateKey{Base: "CAD", Quote: "USD"}}
	r.SetSample(d2, decimal.MustParse("0.74"))
	r.SetSample(d1, decimal.MustParse("0.73"))

	// d1 <= d < d2 returns the d1 sample.
	for _, d := range []time.Time{d1, d1.AddDate(0, 0, 5), d2.AddDate(0, 0, -1)} {
		got, err := r.RateOn(d)
		if err != nil {
			t.Fatalf("RateOn(%v): %v", d, err)
		}
		if got.Cmp(decimal.MustParse("0.73")) != 0 {
			t.Fatalf("RateOn(%v) = %s, want 0.73", d, got)
		}
	}

	// d >= d2 returns the d2 sample.
	got, err := r.RateOn(d2.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("RateOn: %v", err)
	}
	if got.Cmp(decimal.MustParse("0.74")) != 0 {
		t.Fatalf("got %s, want 0.74", got)
	}

	// d < d1 fails, never a silent default.
	if _, err := r.RateOn(d1.AddDate(0, 0, -1)); !errors.Is(err, errs.ErrNoRateAvailable) {
		t.Fatalf("expected ErrNoRateAvailable, got %v", err)
	}
}

func TestSetSampleOverwritesSameDate(t *testing.T) {
	d := Date(2024, time.June, 1)
	r := &ExchangeRate{Key: RateKey{Base: "CAD", Quote: "USD"}}
	r.SetSample(d, decimal.MustParse("1.01"))
	r.SetSample(d, decimal.MustParse("1.02"))
	if len(r.Samples) != 1 {
		t.Fatalf("want 1 sample, got %d", len(r.Samples))
	}
	got, _ := r.RateOn(d)
	if got.Cmp(decimal.MustParse("1.02")) != 0 {
		t.Fatalf("got %s, want 1.02", got)
	}
}

func TestRateBetweenInverts(t *testing.T) {
	d := Date(2024, time.June, 1)
	key, _ := NewRateKey("USD", "CAD")
	r := &ExchangeRate{Key: key}
	// canonical pair is CAD:USD; 0.5 USD per CAD.
	r.SetSample(d, decimal.MustParse("0.5"))

	fwd, err := r.RateBetween("CAD", "USD", d)
	if err != nil {
		t.Fatalf("RateBetween: %v", err)
	}
	if fwd.Cmp(decimal.MustParse("0.5")) != 0 {
		t.Fatalf("got %s, want 0.5", fwd)
	}

	inv, err := r.RateBetween("USD", "CAD", d)
	if err != nil {
		t.Fatalf("RateBetween: %v", err)
	}
	if inv.Cmp(decimal.MustParse("2")) != 0 {
		t.Fatalf("got %s, want 2", inv)
	}
}
