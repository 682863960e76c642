package ledger

import "github.com/shopspring/decimal"

// Position is the net exposure in one ticker derived from the log.
//
// AvgPrice follows the average-cost method: trades that add to the exposure
// re-weight it, trades that reduce it leave it unchanged and realize P/L
// against it. A trade that crosses zero closes the old side and opens the
// remainder at the trade price.
type Position struct {
	Ticker     string
	NetQty     decimal.Decimal
	AvgPrice   decimal.Decimal
	RealizedPL decimal.Decimal
	// Leverage is the notional-weighted leverage of the trades that opened
	// the current exposure.
	Leverage decimal.Decimal
	Note     string
	Opened   string
	Trades   int
}

// CostBasis is NetQty*AvgPrice, negative for shorts.
func (p Position) CostBasis() decimal.Decimal {
	return p.NetQty.Mul(p.AvgPrice)
}

// IsFlat reports whether the net quantity is zero.
func (p Position) IsFlat() bool {
	return p.NetQty.IsZero()
}

// IsShort reports whether the position is net short.
func (p Position) IsShort() bool {
	return p.NetQty.IsNegative()
}

type book struct {
	Position
	notional  decimal.Decimal
	levWeight decimal.Decimal
}

func (b *book) apply(tx Transaction) {
	b.Trades++
	if b.Note == "" {
		b.Note = tx.Note
	}
	if b.Opened == "" || tx.Date < b.Opened {
		b.Opened = tx.Date
	}

	lev := tx.Leverage
	if lev < DefaultLeverage {
		lev = DefaultLeverage
	}

	if b.NetQty.IsZero() || b.NetQty.Sign() == tx.Qty.Sign() {
		b.open(tx.Qty, tx.Price, lev)
		return
	}

	closed := decimal.Min(tx.Qty.Abs(), b.NetQty.Abs())
	pnl := closed.Mul(tx.Price.Sub(b.AvgPrice)).Mul(b.Leverage)
	if b.NetQty.IsNegative() {
		pnl = pnl.Neg()
	}
	b.RealizedPL = b.RealizedPL.Add(pnl)

	if tx.Qty.IsPositive() {
		b.NetQty = b.NetQty.Add(closed)
	} else {
		b.NetQty = b.NetQty.Sub(closed)
	}
	if b.NetQty.IsZero() {
		b.AvgPrice = decimal.Zero
		b.Leverage = decimal.Zero
		b.notional = decimal.Zero
		b.levWeight = decimal.Zero
	}

	if rest := tx.Qty.Abs().Sub(closed); rest.IsPositive() {
		if tx.Qty.IsNegative() {
			rest = rest.Neg()
		}
		b.open(rest, tx.Price, lev)
	}
}

func (b *book) open(qty, price decimal.Decimal, lev int) {
	next := b.NetQty.Add(qty)
	b.AvgPrice = b.NetQty.Mul(b.AvgPrice).Add(qty.Mul(price)).Div(next)
	b.NetQty = next

	notional := qty.Mul(price).Abs()
	b.notional = b.notional.Add(notional)
	b.levWeight = b.levWeight.Add(notional.Mul(decimal.NewFromInt(int64(lev))))
	b.Leverage = b.levWeight.Div(b.notional)
}

// AggregateAll collapses transactions into one position per ticker, in
// order of first appearance, including flat tickers.
func AggregateAll(txs []Transaction) []Position {
	index := make(map[string]int)
	var books []*book
	for _, tx := range txs {
		i, ok := index[tx.Ticker]
		if !ok {
			i = len(books)
			index[tx.Ticker] = i
			books = append(books, &book{Position: Position{Ticker: tx.Ticker}})
		}
		books[i].apply(tx)
	}

	out := make([]Position, len(books))
	for i, b := range books {
		out[i] = b.Position
	}
	return out
}

// Aggregate returns the open positions. Tickers whose net quantity is zero
// are excluded; their realized P/L is still reported by AggregateAll.
func Aggregate(txs []Transaction) []Position {
	all := AggregateAll(txs)
	open := all[:0]
	for _, p := range all {
		if !p.IsFlat() {
			open = append(open, p)
		}
	}
	return open
}

// FlatTickers returns the tickers that appear in the log but net to zero.
func FlatTickers(txs []Transaction) []string {
	var out []string
	for _, p := range AggregateAll(txs) {
		if p.IsFlat() {
			out = append(out, p.Ticker)
		}
	}
	return out
}
