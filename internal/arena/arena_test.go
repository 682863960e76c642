package arena

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	minusOne = decimal.NewFromInt(-1)
	one      = decimal.NewFromInt(1)
)

func TestWalkStepsAreBounded(t *testing.T) {
	w := NewWalk(decimal.NewFromInt(100), 42)
	prev := w.Price()

	for i := 1; i <= 1000; i++ {
		tick := w.Next()
		assert.Equal(t, i, tick.Index)
		assert.True(t, tick.Delta.GreaterThanOrEqual(minusOne), "delta %s below -1", tick.Delta)
		assert.True(t, tick.Delta.LessThanOrEqual(one), "delta %s above 1", tick.Delta)
		assert.True(t, tick.Delta.Equal(tick.Delta.Round(2)), "delta %s not rounded to cents", tick.Delta)
		assert.True(t, tick.Price.Equal(prev.Add(tick.Delta)) || tick.Price.IsZero())
		prev = tick.Price
	}
}

func TestWalkNeverGoesNegative(t *testing.T) {
	w := NewWalk(decimal.RequireFromString("0.5"), 7)
	for i := 0; i < 500; i++ {
		tick := w.Next()
		require.False(t, tick.Price.IsNegative(), "tick %d went negative: %s", tick.Index, tick.Price)
	}
}

func TestWalkIsDeterministic(t *testing.T) {
	a := NewWalk(decimal.NewFromInt(100), 99)
	b := NewWalk(decimal.NewFromInt(100), 99)
	for i := 0; i < 50; i++ {
		ta, tb := a.Next(), b.Next()
		require.True(t, ta.Price.Equal(tb.Price))
		require.True(t, ta.Delta.Equal(tb.Delta))
	}
}

func TestRun(t *testing.T) {
	t.Run("keeps most recent rows", func(t *testing.T) {
		rows, err := Run(Options{Start: decimal.NewFromInt(100), Ticks: 350, Seed: 1})
		require.NoError(t, err)
		require.Len(t, rows, DefaultMaxRows)
		assert.Equal(t, 51, rows[0].Index)
		assert.Equal(t, 350, rows[len(rows)-1].Index)
	})

	t.Run("custom cap", func(t *testing.T) {
		rows, err := Run(Options{Start: decimal.NewFromInt(100), Ticks: 10, Seed: 1, MaxRows: 3})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []int{8, 9, 10}, []int{rows[0].Index, rows[1].Index, rows[2].Index})
	})

	t.Run("matches walk", func(t *testing.T) {
		rows, err := Run(Options{Start: decimal.NewFromInt(100), Ticks: 5, Seed: 3})
		require.NoError(t, err)
		w := NewWalk(decimal.NewFromInt(100), 3)
		for _, row := range rows {
			assert.True(t, w.Next().Price.Equal(row.Price))
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := Run(Options{Start: decimal.NewFromInt(100)})
		assert.ErrorIs(t, err, ErrInvalidRun)

		_, err = Run(Options{Start: decimal.NewFromInt(-1), Ticks: 1})
		assert.ErrorIs(t, err, ErrInvalidRun)
	})
}
