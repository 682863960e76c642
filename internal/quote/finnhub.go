package quote

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// finnhubQuote is the subset of the /quote response we use. C is the
// current price and PC the previous close.
type finnhubQuote struct {
	C  decimal.Decimal `json:"c"`
	PC decimal.Decimal `json:"pc"`
}

// FinnhubProvider fetches prices from the Finnhub /quote endpoint.
type FinnhubProvider struct {
	client *resty.Client
	apiKey string
}

// NewFinnhubProvider creates a Finnhub provider.
func NewFinnhubProvider(opts Options) *FinnhubProvider {
	return &FinnhubProvider{client: newRestClient(opts), apiKey: opts.APIKey}
}

// Name returns the provider's display name.
func (p *FinnhubProvider) Name() string { return "Finnhub" }

// Quotes fetches the current price of each ticker, falling back to the
// previous close when the market price is zero.
func (p *FinnhubProvider) Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []FetchError) {
	return fetchEach(ctx, tickers, p.fetch)
}

func (p *FinnhubProvider) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if p.apiKey == "" {
		return decimal.Zero, fmt.Errorf("finnhub api key not configured")
	}

	var q finnhubQuote
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetQueryParam("token", p.apiKey).
		SetResult(&q).
		Get("/quote")
	if err != nil {
		return decimal.Zero, fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	if q.C.IsPositive() {
		return q.C, nil
	}
	if q.PC.IsPositive() {
		return q.PC, nil
	}
	return decimal.Zero, ErrNoPrice
}
