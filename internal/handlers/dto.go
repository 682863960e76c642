package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"folio/internal/ledger"
	"folio/internal/services"
)

// Amounts are exposed as JSON numbers; the decimal values stay internal.
func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// TransactionResponse represents a ledger trade in the response
type TransactionResponse struct {
	ID       string  `json:"id"`
	Ticker   string  `json:"ticker"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	Leverage int     `json:"leverage"`
	Note     string  `json:"note"`
	Date     string  `json:"date"`
	Cost     float64 `json:"cost"`
}

func newTransactionResponse(tx ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:       tx.ID,
		Ticker:   tx.Ticker,
		Qty:      num(tx.Qty),
		Price:    num(tx.Price),
		Leverage: tx.Leverage,
		Note:     tx.Note,
		Date:     tx.Date,
		Cost:     num(tx.Cost()),
	}
}

func newTransactionResponses(txs []ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = newTransactionResponse(tx)
	}
	return out
}

// PositionResponse represents one open position marked to market.
// CurrentPrice is null when no quote was available.
type PositionResponse struct {
	Ticker          string   `json:"ticker"`
	Qty             float64  `json:"qty"`
	AvgPrice        float64  `json:"avg_price"`
	CurrentPrice    *float64 `json:"current_price"`
	QuoteAvailable  bool     `json:"quote_available"`
	MarketValue     float64  `json:"market_value"`
	Exposure        float64  `json:"exposure"`
	UnrealizedPL    float64  `json:"unrealized_pl"`
	UnrealizedPLPct float64  `json:"unrealized_pl_pct"`
	RealizedPL      float64  `json:"realized_pl"`
	AllocationPct   float64  `json:"allocation_pct"`
	Leverage        float64  `json:"leverage"`
	Note            string   `json:"note"`
	Opened          string   `json:"opened"`
	Trades          int      `json:"trades"`
}

func newPositionResponse(p ledger.PositionValuation) PositionResponse {
	resp := PositionResponse{
		Ticker:          p.Ticker,
		Qty:             num(p.NetQty),
		AvgPrice:        num(p.AvgPrice),
		QuoteAvailable:  p.QuoteAvailable,
		MarketValue:     num(p.MarketValue),
		Exposure:        num(p.Exposure),
		UnrealizedPL:    num(p.UnrealizedPL),
		UnrealizedPLPct: p.UnrealizedPLPct,
		RealizedPL:      num(p.RealizedPL),
		AllocationPct:   p.AllocationPct,
		Leverage:        num(p.Leverage),
		Note:            p.Note,
		Opened:          p.Opened,
		Trades:          p.Trades,
	}
	if p.QuoteAvailable {
		price := num(p.CurrentPrice)
		resp.CurrentPrice = &price
	}
	return resp
}

// InsightsResponse names the standout positions. Fields are null when no
// position had a quote.
type InsightsResponse struct {
	TopGainer       *PositionResponse `json:"top_gainer"`
	TopLoser        *PositionResponse `json:"top_loser"`
	LargestPosition *PositionResponse `json:"largest_position"`
	MostImpactful   *PositionResponse `json:"most_impactful"`
}

func insightPosition(p *ledger.PositionValuation) *PositionResponse {
	if p == nil {
		return nil
	}
	resp := newPositionResponse(*p)
	return &resp
}

// PortfolioResponse represents a full valuation.
type PortfolioResponse struct {
	InitialCash    float64            `json:"initial_cash"`
	Cash           float64            `json:"cash"`
	MarketValue    float64            `json:"market_value"`
	Equity         float64            `json:"equity"`
	TotalReturnPct float64            `json:"total_return_pct"`
	UnrealizedPL   float64            `json:"unrealized_pl"`
	RealizedPL     float64            `json:"realized_pl"`
	Positions      []PositionResponse `json:"positions"`
	FlatTickers    []string           `json:"flat_tickers"`
	MissingQuotes  []string           `json:"missing_quotes"`
	Complete       bool               `json:"complete"`
	Insights       InsightsResponse   `json:"insights"`
	Provider       string             `json:"provider"`
	AsOf           time.Time          `json:"as_of"`
	CanEdit        bool               `json:"can_edit"`
	Dirty          bool               `json:"dirty"`
}

func newPortfolioResponse(r *services.ValuationReport) PortfolioResponse {
	positions := make([]PositionResponse, len(r.Positions))
	for i, p := range r.Positions {
		positions[i] = newPositionResponse(p)
	}
	return PortfolioResponse{
		InitialCash:    num(r.InitialCash),
		Cash:           num(r.Cash),
		MarketValue:    num(r.MarketValue),
		Equity:         num(r.Equity),
		TotalReturnPct: r.TotalReturnPct,
		UnrealizedPL:   num(r.UnrealizedPL),
		RealizedPL:     num(r.RealizedPL),
		Positions:      positions,
		FlatTickers:    nonNil(r.FlatTickers),
		MissingQuotes:  nonNil(r.MissingQuotes),
		Complete:       r.Complete,
		Insights: InsightsResponse{
			TopGainer:       insightPosition(r.Insights.TopGainer),
			TopLoser:        insightPosition(r.Insights.TopLoser),
			LargestPosition: insightPosition(r.Insights.LargestPosition),
			MostImpactful:   insightPosition(r.Insights.MostImpactful),
		},
		Provider: r.Provider,
		AsOf:     r.AsOf,
	}
}

// PersistResponse reports whether a change reached storage.
type PersistResponse struct {
	Persisted        bool   `json:"persisted"`
	PersistenceError string `json:"persistence_error,omitempty"`
}

func newPersistResponse(s services.PersistStatus) PersistResponse {
	resp := PersistResponse{Persisted: s.Persisted}
	if s.PersistenceError != nil {
		resp.PersistenceError = s.PersistenceError.Error()
	}
	return resp
}

// AddTransactionResponse is returned after a trade is appended.
type AddTransactionResponse struct {
	Transaction  TransactionResponse `json:"transaction"`
	Cash         float64             `json:"cash"`
	PriceFetched bool                `json:"price_fetched"`
	PersistResponse
}

// ResetResponse is returned by the reset endpoints.
type ResetResponse struct {
	Removed        []TransactionResponse `json:"removed"`
	CashBefore     float64               `json:"cash_before"`
	CashAfter      float64               `json:"cash_after"`
	CashAdjustment float64               `json:"cash_adjustment"`
	HistoryCleared bool                  `json:"history_cleared"`
	PersistResponse
}

func newResetResponse(r *services.ResetResult) ResetResponse {
	return ResetResponse{
		Removed:         newTransactionResponses(r.Removed),
		CashBefore:      num(r.CashBefore),
		CashAfter:       num(r.CashAfter),
		CashAdjustment:  num(r.CashAfter.Sub(r.CashBefore)),
		HistoryCleared:  r.HistoryCleared,
		PersistResponse: newPersistResponse(r.PersistStatus),
	}
}

// HistoryPointResponse is one day of portfolio vs benchmark returns.
type HistoryPointResponse struct {
	Date string  `json:"date"`
	Port float64 `json:"port"`
	SP   float64 `json:"sp"`
}

func newHistoryPointResponse(p ledger.HistoryPoint) HistoryPointResponse {
	return HistoryPointResponse{Date: p.Date, Port: p.PortfolioReturnPct, SP: p.BenchmarkReturnPct}
}

// RecordHistoryResponse is returned after a history point is recorded.
type RecordHistoryResponse struct {
	Point    HistoryPointResponse `json:"point"`
	Created  bool                 `json:"created"`
	BaseSet  bool                 `json:"base_set"`
	Complete bool                 `json:"complete"`
	PersistResponse
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
