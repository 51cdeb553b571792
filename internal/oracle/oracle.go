// Package oracle produces simulated balance values in place of a real
// chain query.
package oracle

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Oracle supplies simulated on-chain balance readings. Implementations must
// honor the range contracts: InitialBalance in [0, 10), Jitter in
// [-0.05, 0.05).
type Oracle interface {
	// InitialBalance simulates a balance fetch at connection time.
	InitialBalance() decimal.Decimal
	// Jitter simulates balance drift between refreshes. The caller adds it
	// to the current balance and clamps at zero.
	Jitter() decimal.Decimal
}

// Simulated implements Oracle with pseudorandom draws. The draw function is
// injectable so tests can substitute fixed sequences.
type Simulated struct {
	draw func() float64
}

// NewSimulated creates a Simulated oracle seeded with seed. A zero seed uses
// the current time, giving a different sequence each run.
func NewSimulated(seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Simulated{draw: rng.Float64}
}

// NewWithDraw creates a Simulated oracle with a custom draw function.
// draw must return values in [0, 1).
func NewWithDraw(draw func() float64) *Simulated {
	return &Simulated{draw: draw}
}

// InitialBalance returns a value in [0, 10) with 4 fractional digits.
// Truncation (not rounding) keeps the result strictly below 10.
func (s *Simulated) InitialBalance() decimal.Decimal {
	return decimal.NewFromFloat(s.draw() * 10).Truncate(4)
}

// Jitter returns a drift value in [-0.05, 0.05).
func (s *Simulated) Jitter() decimal.Decimal {
	return decimal.NewFromFloat(s.draw()*0.1 - 0.05)
}
