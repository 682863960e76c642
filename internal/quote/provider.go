// Package quote fetches current market prices for tickers.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"folio/internal/config"
)

// ErrNoPrice is returned for a symbol that has no usable positive price.
var ErrNoPrice = errors.New("no price available")

// FetchError represents a failed price fetch for one symbol.
type FetchError struct {
	Symbol string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch price for %s: %v", e.Symbol, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// Provider fetches current prices for a set of tickers.
type Provider interface {
	// Name returns the provider's display name.
	Name() string

	// Quotes returns a price for every ticker it could resolve and a
	// FetchError for every other one. A single bad symbol never fails the
	// whole call.
	Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []FetchError)
}

// Options configures the HTTP providers.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

// New selects the provider named by cfg.QuoteProvider.
func New(cfg *config.Config) (Provider, error) {
	finnhub := func() *FinnhubProvider {
		return NewFinnhubProvider(Options{
			BaseURL:    cfg.FinnhubBaseURL,
			APIKey:     cfg.FinnhubAPIKey,
			Timeout:    cfg.QuoteTimeout,
			RetryCount: cfg.QuoteRetryCount,
		})
	}
	yahoo := func() *YahooProvider {
		return NewYahooProvider(Options{
			BaseURL:    cfg.YahooBaseURL,
			Timeout:    cfg.QuoteTimeout,
			RetryCount: cfg.QuoteRetryCount,
		})
	}

	switch cfg.QuoteProvider {
	case "finnhub":
		return finnhub(), nil
	case "yahoo":
		return yahoo(), nil
	case "chain":
		if cfg.FinnhubAPIKey == "" {
			return yahoo(), nil
		}
		return NewChainProvider(finnhub(), yahoo()), nil
	case "sim":
		return NewSimProvider(decimal.NewFromInt(100), time.Now().UnixNano()), nil
	case "static":
		return NewStaticProvider(nil), nil
	default:
		return nil, fmt.Errorf("unsupported quote provider %q", cfg.QuoteProvider)
	}
}

// uniqueTickers normalizes and deduplicates tickers, keeping input order.
func uniqueTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// fetchEach calls fetch for every ticker concurrently and collects the
// results. Errors are returned in input order.
func fetchEach(ctx context.Context, tickers []string, fetch func(context.Context, string) (decimal.Decimal, error)) (map[string]decimal.Decimal, []FetchError) {
	tickers = uniqueTickers(tickers)
	prices := make(map[string]decimal.Decimal, len(tickers))
	errs := make([]error, len(tickers))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			price, err := fetch(ctx, ticker)
			if err == nil && !price.IsPositive() {
				err = ErrNoPrice
			}
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			prices[ticker] = price
			mu.Unlock()
		}(i, ticker)
	}
	wg.Wait()

	var fetchErrors []FetchError
	for i, err := range errs {
		if err != nil {
			fetchErrors = append(fetchErrors, FetchError{Symbol: tickers[i], Err: err})
		}
	}
	return prices, fetchErrors
}
