package ledger

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PositionValuation is an open position marked to the latest quote.
type PositionValuation struct {
	Position
	CurrentPrice   decimal.Decimal
	QuoteAvailable bool
	// MarketValue is NetQty times the mark: the quote when available,
	// AvgPrice otherwise. It is what the position contributes to equity.
	MarketValue     decimal.Decimal
	Exposure        decimal.Decimal
	UnrealizedPL    decimal.Decimal
	UnrealizedPLPct float64
	AllocationPct   float64
}

// Insights ranks the valued positions. A nil entry means no position with
// a quote was available.
type Insights struct {
	TopGainer       *PositionValuation
	TopLoser        *PositionValuation
	LargestPosition *PositionValuation
	MostImpactful   *PositionValuation
}

// Valuation is the full mark-to-market view of a ledger snapshot.
type Valuation struct {
	InitialCash    decimal.Decimal
	Cash           decimal.Decimal
	MarketValue    decimal.Decimal
	Equity         decimal.Decimal
	TotalReturnPct float64
	UnrealizedPL   decimal.Decimal
	RealizedPL     decimal.Decimal
	Positions      []PositionValuation
	FlatTickers    []string
	MissingQuotes  []string
	// Complete is false when at least one open position had no quote.
	Complete bool
	Insights Insights
}

// Value marks every open position of s to quotes. Unrealized P/L is scaled
// by the position leverage; equity is not. Tickers without a positive quote
// are reported in MissingQuotes, carry zero P/L, are marked at their average
// price and take no part in the insights.
func Value(s Snapshot, quotes map[string]decimal.Decimal) Valuation {
	v := Valuation{
		InitialCash:  s.InitialCash,
		Cash:         s.Cash,
		MarketValue:  decimal.Zero,
		UnrealizedPL: decimal.Zero,
		RealizedPL:   decimal.Zero,
		Complete:     true,
	}

	totalExposure := decimal.Zero
	for _, p := range AggregateAll(s.Transactions) {
		v.RealizedPL = v.RealizedPL.Add(p.RealizedPL)
		if p.IsFlat() {
			v.FlatTickers = append(v.FlatTickers, p.Ticker)
			continue
		}

		pv := PositionValuation{Position: p, UnrealizedPL: decimal.Zero}
		if q, ok := quotes[p.Ticker]; ok && q.IsPositive() {
			pv.CurrentPrice = q
			pv.QuoteAvailable = true
			pv.UnrealizedPL = p.NetQty.Mul(q.Sub(p.AvgPrice)).Mul(p.Leverage)
			pv.UnrealizedPLPct = PLPercent(pv.UnrealizedPL, p.NetQty, p.AvgPrice)
			v.UnrealizedPL = v.UnrealizedPL.Add(pv.UnrealizedPL)
		} else {
			pv.CurrentPrice = p.AvgPrice
			v.MissingQuotes = append(v.MissingQuotes, p.Ticker)
			v.Complete = false
		}
		pv.MarketValue = p.NetQty.Mul(pv.CurrentPrice)
		pv.Exposure = pv.MarketValue.Abs()
		totalExposure = totalExposure.Add(pv.Exposure)
		v.MarketValue = v.MarketValue.Add(pv.MarketValue)
		v.Positions = append(v.Positions, pv)
	}

	for i := range v.Positions {
		v.Positions[i].AllocationPct = percentOf(v.Positions[i].Exposure, totalExposure)
	}

	v.Equity = s.Cash.Add(v.MarketValue)
	v.TotalReturnPct = ReturnPct(v.Equity, s.InitialCash)
	v.Insights = Rank(v.Positions)
	return v
}

// PLPercent is pl relative to the cost of |qty| units at avg, in percent.
// It returns 0 instead of dividing by zero.
func PLPercent(pl, qty, avg decimal.Decimal) float64 {
	cost := qty.Abs().Mul(avg)
	if cost.IsZero() {
		return 0
	}
	return pl.Div(cost).Mul(hundred).InexactFloat64()
}

// ReturnPct is (value/base - 1) * 100, or 0 when base is not positive.
func ReturnPct(value, base decimal.Decimal) float64 {
	if !base.IsPositive() {
		return 0
	}
	return value.Div(base).Sub(decimal.NewFromInt(1)).Mul(hundred).InexactFloat64()
}

func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(hundred).InexactFloat64()
}

// Rank computes the insights over rows with an available quote. Ties keep
// the first row encountered.
func Rank(rows []PositionValuation) Insights {
	var in Insights
	gainer, loser, largest, impact := -1, -1, -1, -1
	for i := range rows {
		r := rows[i]
		if !r.QuoteAvailable {
			continue
		}
		if gainer < 0 || r.UnrealizedPLPct > rows[gainer].UnrealizedPLPct {
			gainer = i
		}
		if loser < 0 || r.UnrealizedPLPct < rows[loser].UnrealizedPLPct {
			loser = i
		}
		if largest < 0 || r.Exposure.GreaterThan(rows[largest].Exposure) {
			largest = i
		}
		if impact < 0 || r.UnrealizedPL.Abs().GreaterThan(rows[impact].UnrealizedPL.Abs()) {
			impact = i
		}
	}
	in.TopGainer = pick(rows, gainer)
	in.TopLoser = pick(rows, loser)
	in.LargestPosition = pick(rows, largest)
	in.MostImpactful = pick(rows, impact)
	return in
}

func pick(rows []PositionValuation, i int) *PositionValuation {
	if i < 0 {
		return nil
	}
	row := rows[i]
	return &row
}
