package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// HistoryPoint is the performance of the portfolio and the benchmark on one
// calendar day, both as percentage returns.
type HistoryPoint struct {
	Date               string
	PortfolioReturnPct float64
	BenchmarkReturnPct float64
}

// History keeps at most one point per date and the benchmark base price.
// The base is set by the first observed benchmark price and stays fixed
// until Reset.
type History struct {
	mu     sync.RWMutex
	points map[string]HistoryPoint
	base   decimal.Decimal
}

// NewHistory returns an empty history without a benchmark base.
func NewHistory() *History {
	return &History{points: make(map[string]HistoryPoint)}
}

// RestoreHistory rebuilds a history from persisted points. A zero base
// means no base has been observed yet. Later duplicates of a date win.
func RestoreHistory(points []HistoryPoint, base decimal.Decimal) *History {
	h := NewHistory()
	for _, p := range points {
		h.points[p.Date] = p
	}
	if base.IsPositive() {
		h.base = base
	}
	return h
}

// Record upserts the point for date. It reports whether a new date was added.
func (h *History) Record(date string, portPct, benchPct float64) (HistoryPoint, bool, error) {
	if err := ValidateDate(date); err != nil {
		return HistoryPoint{}, false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, exists := h.points[date]
	p := HistoryPoint{Date: date, PortfolioReturnPct: portPct, BenchmarkReturnPct: benchPct}
	h.points[date] = p
	return p, !exists, nil
}

// ObserveBenchmark returns the benchmark return of price against the base.
// The first positive price becomes the base; baseSet reports when that
// happened on this call.
func (h *History) ObserveBenchmark(price decimal.Decimal) (pct float64, baseSet bool, err error) {
	if !price.IsPositive() {
		return 0, false, fmt.Errorf("%w: benchmark price must be greater than zero", ErrValidation)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.base.IsZero() {
		h.base = price
		baseSet = true
	}
	return ReturnPct(price, h.base), baseSet, nil
}

// Base returns the benchmark base and whether it has been set.
func (h *History) Base() (decimal.Decimal, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.base, h.base.IsPositive()
}

// Series returns all points ordered by date.
func (h *History) Series() []HistoryPoint {
	h.mu.RLock()
	out := make([]HistoryPoint, 0, len(h.points))
	for _, p := range h.points {
		out = append(out, p)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Len returns the number of recorded dates.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}

// Reset drops every point and the benchmark base.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = make(map[string]HistoryPoint)
	h.base = decimal.Zero
}
