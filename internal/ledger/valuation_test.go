package ledger

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quotes(kv ...string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = dec(kv[i+1])
	}
	return out
}

func TestValueEndToEnd(t *testing.T) {
	l := New(dec("10000"))
	_, err := l.Append(buy("AAPL", "10", "150", "2025-01-02"))
	require.NoError(t, err)
	assertDecimal(t, "8500", l.Cash())

	v := Value(l.Snapshot(), quotes("AAPL", "160"))

	require.Len(t, v.Positions, 1)
	p := v.Positions[0]
	assertDecimal(t, "10", p.NetQty)
	assertDecimal(t, "150", p.AvgPrice)
	assertDecimal(t, "100", p.UnrealizedPL)
	assert.InDelta(t, 6.6667, p.UnrealizedPLPct, 0.001)
	assert.InDelta(t, 100.0, p.AllocationPct, 1e-9)
	assertDecimal(t, "10100", v.Equity)
	assert.InDelta(t, 1.0, v.TotalReturnPct, 1e-9)
	assert.True(t, v.Complete)
	assert.Empty(t, v.MissingQuotes)
}

func TestValueLeverage(t *testing.T) {
	l := New(dec("10000"))
	tx := buy("AAPL", "10", "150", "2025-01-02")
	tx.Leverage = 2
	_, err := l.Append(tx)
	require.NoError(t, err)

	v := Value(l.Snapshot(), quotes("AAPL", "160"))

	require.Len(t, v.Positions, 1)
	assertDecimal(t, "200", v.Positions[0].UnrealizedPL)
	assert.InDelta(t, 13.3333, v.Positions[0].UnrealizedPLPct, 0.001)
	assertDecimal(t, "10100", v.Equity)
}

func TestValueShortPosition(t *testing.T) {
	l := New(dec("10000"))
	_, err := l.Append(buy("TSLA", "-10", "200", "2025-01-02"))
	require.NoError(t, err)

	v := Value(l.Snapshot(), quotes("TSLA", "180"))

	require.Len(t, v.Positions, 1)
	assertDecimal(t, "200", v.Positions[0].UnrealizedPL)
	assert.InDelta(t, 10.0, v.Positions[0].UnrealizedPLPct, 1e-9)
	// 12000 cash minus the 1800 needed to buy back.
	assertDecimal(t, "10200", v.Equity)
}

func TestValueMissingQuote(t *testing.T) {
	l := New(dec("10000"))
	_, err := l.Append(buy("AAPL", "10", "100", "2025-01-02"))
	require.NoError(t, err)
	_, err = l.Append(buy("MSFT", "5", "300", "2025-01-02"))
	require.NoError(t, err)

	v := Value(l.Snapshot(), quotes("AAPL", "110", "MSFT", "0"))

	assert.False(t, v.Complete)
	assert.Equal(t, []string{"MSFT"}, v.MissingQuotes)
	require.Len(t, v.Positions, 2)

	msft := v.Positions[1]
	assert.False(t, msft.QuoteAvailable)
	assert.True(t, msft.UnrealizedPL.IsZero())
	assert.Zero(t, msft.UnrealizedPLPct)
	assertDecimal(t, "1500", msft.MarketValue)

	// 7500 cash + 1100 AAPL + 1500 MSFT at cost.
	assertDecimal(t, "10100", v.Equity)
	assertDecimal(t, "100", v.UnrealizedPL)

	require.NotNil(t, v.Insights.LargestPosition)
	assert.Equal(t, "AAPL", v.Insights.LargestPosition.Ticker)
}

func TestValueFlatPositionNeverDividesByZero(t *testing.T) {
	l := New(dec("10000"))
	_, err := l.Append(buy("AAPL", "10", "100", "2025-01-02"))
	require.NoError(t, err)
	_, err = l.Append(buy("AAPL", "-10", "120", "2025-01-03"))
	require.NoError(t, err)

	v := Value(l.Snapshot(), quotes("AAPL", "130"))

	assert.Empty(t, v.Positions)
	assert.Equal(t, []string{"AAPL"}, v.FlatTickers)
	assertDecimal(t, "200", v.RealizedPL)
	assertDecimal(t, "10200", v.Equity)
	assert.InDelta(t, 2.0, v.TotalReturnPct, 1e-9)
	assert.Nil(t, v.Insights.TopGainer)
}

func TestPLPercentGuards(t *testing.T) {
	for _, tc := range []struct {
		name string
		qty  string
		avg  string
	}{
		{name: "zero qty", qty: "0", avg: "100"},
		{name: "zero avg", qty: "10", avg: "0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pct := PLPercent(dec("50"), dec(tc.qty), dec(tc.avg))
			assert.Zero(t, pct)
			assert.False(t, math.IsNaN(pct) || math.IsInf(pct, 0))
		})
	}

	assert.Zero(t, ReturnPct(dec("100"), decimal.Zero))
}

func TestRank(t *testing.T) {
	l := New(dec("100000"))
	for _, tx := range []Transaction{
		buy("AAA", "10", "100", "2025-01-02"),
		buy("BBB", "10", "100", "2025-01-02"),
		buy("CCC", "200", "10", "2025-01-02"),
		buy("DDD", "1", "50", "2025-01-02"),
	} {
		_, err := l.Append(tx)
		require.NoError(t, err)
	}

	// AAA and BBB tie on +10%; CCC loses 20% on the largest exposure;
	// DDD has no quote.
	v := Value(l.Snapshot(), quotes("AAA", "110", "BBB", "110", "CCC", "8"))

	require.NotNil(t, v.Insights.TopGainer)
	assert.Equal(t, "AAA", v.Insights.TopGainer.Ticker)
	assert.Equal(t, "CCC", v.Insights.TopLoser.Ticker)
	assert.Equal(t, "CCC", v.Insights.LargestPosition.Ticker)
	assert.Equal(t, "CCC", v.Insights.MostImpactful.Ticker)
	for _, in := range []*PositionValuation{v.Insights.TopGainer, v.Insights.TopLoser, v.Insights.LargestPosition, v.Insights.MostImpactful} {
		assert.NotEqual(t, "DDD", in.Ticker)
	}
}

func TestRankEmpty(t *testing.T) {
	in := Rank(nil)
	assert.Nil(t, in.TopGainer)
	assert.Nil(t, in.TopLoser)
	assert.Nil(t, in.LargestPosition)
	assert.Nil(t, in.MostImpactful)
}
