package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the column used by SortPositions.
type SortKey string

const (
	SortByTicker     SortKey = "ticker"
	SortByQty        SortKey = "qty"
	SortByPL         SortKey = "pl"
	SortByPLPct      SortKey = "pl_pct"
	SortByAllocation SortKey = "allocation"
)

// ParseSortKey validates a user-supplied sort key. An empty string means
// no sorting and is returned as-is.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortByTicker, SortByQty, SortByPL, SortByPLPct, SortByAllocation:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", ErrValidation, s)
}

// SortPositions returns a sorted copy of rows. The sort is stable so rows
// with equal keys keep their aggregation order.
func SortPositions(rows []PositionValuation, key SortKey, desc bool) []PositionValuation {
	out := append([]PositionValuation(nil), rows...)
	if key == "" {
		return out
	}

	less := func(a, b PositionValuation) bool {
		switch key {
		case SortByQty:
			return a.NetQty.LessThan(b.NetQty)
		case SortByPL:
			return a.UnrealizedPL.LessThan(b.UnrealizedPL)
		case SortByPLPct:
			return a.UnrealizedPLPct < b.UnrealizedPLPct
		case SortByAllocation:
			return a.AllocationPct < b.AllocationPct
		default:
			return a.Ticker < b.Ticker
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// FilterPositions keeps rows whose ticker contains query, case-insensitively.
func FilterPositions(rows []PositionValuation, query string) []PositionValuation {
	query = NormalizeTicker(query)
	if query == "" {
		return rows
	}
	var out []PositionValuation
	for _, r := range rows {
		if strings.Contains(r.Ticker, query) {
			out = append(out, r)
		}
	}
	return out
}
