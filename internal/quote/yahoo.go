package quote

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// yahooChartResponse is the Yahoo Finance v8 chart response.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string          `json:"symbol"`
				Currency           string          `json:"currency"`
				RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooProvider fetches prices from the Yahoo Finance v8 chart API, one
// request per symbol.
type YahooProvider struct {
	client *resty.Client
}

// NewYahooProvider creates a Yahoo Finance provider.
func NewYahooProvider(opts Options) *YahooProvider {
	return &YahooProvider{client: newRestClient(opts)}
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// Quotes fetches the regular market price of each ticker.
func (p *YahooProvider) Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []FetchError) {
	return fetchEach(ctx, tickers, p.fetch)
}

func (p *YahooProvider) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var chart yahooChartResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{"interval": "1d", "range": "1d"}).
		SetResult(&chart).
		SetError(&chart).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return decimal.Zero, fmt.Errorf("http request: %w", err)
	}
	if chart.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("yahoo error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if len(chart.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("symbol %s not found in response", symbol)
	}
	return chart.Chart.Result[0].Meta.RegularMarketPrice, nil
}
