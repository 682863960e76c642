package services

import (
	"context"
	"fmt"
	"strings"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/quote"
)

// historyService records portfolio performance against the benchmark.
type historyService struct {
	portfolio *Portfolio
	quotes    quote.Provider
}

// NewHistoryService creates a new HistoryServicer.
func NewHistoryService(portfolio *Portfolio, quotes quote.Provider) HistoryServicer {
	return &historyService{portfolio: portfolio, quotes: quotes}
}

// Record values the portfolio and the benchmark now and stores the point
// for date (today when empty). Without a benchmark quote nothing is
// recorded. The first benchmark price ever seen becomes the base.
func (s *historyService) Record(ctx context.Context, date string) (*RecordResult, error) {
	p := s.portfolio
	date = strings.TrimSpace(date)
	if date == "" {
		date = ledger.DateOf(p.now())
	}
	if err := ledger.ValidateDate(date); err != nil {
		return nil, apperrors.FromLedger(err)
	}

	snap := p.ledger.Snapshot()
	tickers := []string{p.benchmark}
	for _, pos := range ledger.Aggregate(snap.Transactions) {
		tickers = append(tickers, pos.Ticker)
	}
	prices, _ := fetchQuotes(ctx, s.quotes, tickers)

	benchPrice, ok := prices[p.benchmark]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
			fmt.Sprintf("No quote available for benchmark %s", p.benchmark))
	}
	v := ledger.Value(snap, prices)

	p.mu.Lock()
	defer p.mu.Unlock()

	benchPct, baseSet, err := p.history.ObserveBenchmark(benchPrice)
	if err != nil {
		return nil, apperrors.FromLedger(err)
	}
	point, created, err := p.history.Record(date, v.TotalReturnPct, benchPct)
	if err != nil {
		return nil, apperrors.FromLedger(err)
	}

	status := p.persist(ctx, "record_history", func() error {
		if baseSet {
			if err := p.store.SaveBenchmarkBase(ctx, p.benchmark, benchPrice); err != nil {
				return err
			}
		}
		return p.store.UpsertHistoryPoint(ctx, point)
	})

	logger.Get().Infow("history point recorded",
		"date", point.Date,
		"port", point.PortfolioReturnPct,
		"sp", point.BenchmarkReturnPct,
		"complete", v.Complete,
		"persisted", status.Persisted,
	)
	return &RecordResult{
		Point:         point,
		Created:       created,
		BaseSet:       baseSet,
		Complete:      v.Complete,
		PersistStatus: status,
	}, nil
}

// History returns the recorded series, oldest first.
func (s *historyService) History() HistoryReport {
	base, ok := s.portfolio.history.Base()
	return HistoryReport{
		Points:          s.portfolio.history.Series(),
		BenchmarkTicker: s.portfolio.benchmark,
		BenchmarkBase:   base,
		HasBase:         ok,
	}
}
