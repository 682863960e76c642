package services

import (
	"context"

	"github.com/shopspring/decimal"

	"folio/internal/quote"
)

// quoteService passes quote requests through to the configured provider.
type quoteService struct {
	provider quote.Provider
}

// NewQuoteService creates a new QuoteServicer.
func NewQuoteService(provider quote.Provider) QuoteServicer {
	return &quoteService{provider: provider}
}

// Quotes fetches prices for tickers.
func (s *quoteService) Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []quote.FetchError) {
	return fetchQuotes(ctx, s.provider, tickers)
}

// ProviderName returns the provider's display name.
func (s *quoteService) ProviderName() string {
	return s.provider.Name()
}
