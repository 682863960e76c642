package quote

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticProvider serves prices from a fixed table.
type StaticProvider struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewStaticProvider creates a provider serving prices.
func NewStaticProvider(prices map[string]decimal.Decimal) *StaticProvider {
	p := &StaticProvider{prices: make(map[string]decimal.Decimal, len(prices))}
	for t, price := range prices {
		p.Set(t, price)
	}
	return p
}

// Name returns the provider's display name.
func (p *StaticProvider) Name() string { return "Static" }

// Set stores the price of ticker.
func (p *StaticProvider) Set(ticker string, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range uniqueTickers([]string{ticker}) {
		p.prices[t] = price
	}
}

// Quotes returns the stored prices.
func (p *StaticProvider) Quotes(_ context.Context, tickers []string) (map[string]decimal.Decimal, []FetchError) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	prices := make(map[string]decimal.Decimal)
	var fetchErrors []FetchError
	for _, t := range uniqueTickers(tickers) {
		price, ok := p.prices[t]
		if !ok || !price.IsPositive() {
			fetchErrors = append(fetchErrors, FetchError{Symbol: t, Err: ErrNoPrice})
			continue
		}
		prices[t] = price
	}
	return prices, fetchErrors
}
