package oracle

import (
	"testing"

	"github.com/shopspring/decimal"
)

// fixedDraw returns a draw function that yields the given values in order,
// then repeats the last one.
func fixedDraw(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func TestInitialBalanceRange(t *testing.T) {
	o := NewSimulated(42)
	ten := decimal.NewFromInt(10)

	for i := 0; i < 1000; i++ {
		b := o.InitialBalance()
		if b.IsNegative() {
			t.Fatalf("InitialBalance() = %s, want >= 0", b)
		}
		if b.GreaterThanOrEqual(ten) {
			t.Fatalf("InitialBalance() = %s, want < 10", b)
		}
		if b.Exponent() < -4 {
			t.Fatalf("InitialBalance() = %s, want at most 4 fractional digits", b)
		}
	}
}

func TestInitialBalanceTruncatesBelowTen(t *testing.T) {
	// A draw just under 1.0 must not round up to 10.0000.
	o := NewWithDraw(fixedDraw(0.9999999))
	b := o.InitialBalance()
	if !b.Equal(decimal.RequireFromString("9.9999")) {
		t.Errorf("InitialBalance() = %s, want 9.9999", b)
	}
}

func TestJitterRange(t *testing.T) {
	o := NewSimulated(42)
	lo := decimal.RequireFromString("-0.05")
	hi := decimal.RequireFromString("0.05")

	for i := 0; i < 1000; i++ {
		j := o.Jitter()
		if j.LessThan(lo) || j.GreaterThanOrEqual(hi) {
			t.Fatalf("Jitter() = %s, want in [-0.05, 0.05)", j)
		}
	}
}

func TestJitterExtremes(t *testing.T) {
	if j := NewWithDraw(fixedDraw(0)).Jitter(); !j.Equal(decimal.RequireFromString("-0.05")) {
		t.Errorf("Jitter() at draw 0 = %s, want -0.05", j)
	}
	if j := NewWithDraw(fixedDraw(0.5)).Jitter(); !j.IsZero() {
		t.Errorf("Jitter() at draw 0.5 = %s, want 0", j)
	}
}

func TestSeededSequencesReproduce(t *testing.T) {
	a := NewSimulated(7)
	b := NewSimulated(7)
	for i := 0; i < 10; i++ {
		if got, want := a.InitialBalance(), b.InitialBalance(); !got.Equal(want) {
			t.Fatalf("draw %d: %s != %s", i, got, want)
		}
	}
}
