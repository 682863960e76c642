package quote

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// ChainProvider asks each provider in turn for the tickers still missing.
type ChainProvider struct {
	providers []Provider
}

// NewChainProvider creates a provider that falls back through providers in order.
func NewChainProvider(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// Name joins the names of the chained providers.
func (c *ChainProvider) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, " > ")
}

// Quotes returns the first price found for each ticker. Errors are reported
// only for tickers no provider could price, with the last error seen.
func (c *ChainProvider) Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []FetchError) {
	missing := uniqueTickers(tickers)
	prices := make(map[string]decimal.Decimal, len(missing))
	lastErr := make(map[string]error)

	for _, p := range c.providers {
		if len(missing) == 0 {
			break
		}
		got, errs := p.Quotes(ctx, missing)
		for _, fe := range errs {
			lastErr[fe.Symbol] = fe.Err
		}
		var still []string
		for _, t := range missing {
			if price, ok := got[t]; ok && price.IsPositive() {
				prices[t] = price
				continue
			}
			still = append(still, t)
		}
		missing = still
	}

	var fetchErrors []FetchError
	for _, t := range missing {
		err := lastErr[t]
		if err == nil {
			err = ErrNoPrice
		}
		fetchErrors = append(fetchErrors, FetchError{Symbol: t, Err: err})
	}
	return prices, fetchErrors
}
