// Package arena simulates a single ticker moving by a bounded random walk.
package arena

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxRows is the number of ticks kept by Run unless overridden.
const DefaultMaxRows = 300

// ErrInvalidRun is returned for a non-positive tick count or a negative start price.
var ErrInvalidRun = errors.New("invalid arena run")

var hundred = decimal.NewFromInt(100)

// Tick is one step of the walk.
type Tick struct {
	Index int
	Delta decimal.Decimal
	Price decimal.Decimal
}

// Walk yields ticks one at a time. Each step moves the price by a delta
// drawn uniformly from [-1, 1) and rounded to cents; the price never goes
// below zero. A Walk is deterministic for a given seed and is not safe for
// concurrent use.
type Walk struct {
	rng   *rand.Rand
	price decimal.Decimal
	index int
}

// NewWalk starts a walk at start.
func NewWalk(start decimal.Decimal, seed int64) *Walk {
	return &Walk{
		rng:   rand.New(rand.NewSource(seed)),
		price: start.Round(2),
	}
}

// Price is the current price.
func (w *Walk) Price() decimal.Decimal {
	return w.price
}

// Next advances the walk by one step.
func (w *Walk) Next() Tick {
	delta := decimal.NewFromFloat(w.rng.Float64()*2 - 1).Mul(hundred).Round(0).Div(hundred)
	next := w.price.Add(delta).Round(2)
	if next.IsNegative() {
		next = decimal.Zero
	}
	w.price = next
	w.index++
	return Tick{Index: w.index, Delta: delta, Price: next}
}

// Options configures Run.
type Options struct {
	Start   decimal.Decimal
	Ticks   int
	Seed    int64
	MaxRows int
}

// Run plays opts.Ticks steps and returns the most recent MaxRows of them in
// order. A zero seed picks one from the clock.
func Run(opts Options) ([]Tick, error) {
	if opts.Ticks <= 0 {
		return nil, fmt.Errorf("%w: ticks must be greater than zero", ErrInvalidRun)
	}
	if opts.Start.IsNegative() {
		return nil, fmt.Errorf("%w: start price must not be negative", ErrInvalidRun)
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	w := NewWalk(opts.Start, opts.Seed)
	rows := make([]Tick, 0, min(opts.Ticks, opts.MaxRows))
	for i := 0; i < opts.Ticks; i++ {
		t := w.Next()
		if len(rows) == opts.MaxRows {
			rows = append(rows[:0], rows[1:]...)
		}
		rows = append(rows, t)
	}
	return rows, nil
}
