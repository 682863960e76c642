package quote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOptions(url string) Options {
	return Options{BaseURL: url, APIKey: "key", Timeout: 2 * time.Second, RetryCount: 2, RetryWait: time.Millisecond}
}

func symbols(errs []FetchError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Symbol
	}
	return out
}

func newFinnhubServer(t *testing.T, quotes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("token"))
		body, ok := quotes[r.URL.Query().Get("symbol")]
		if !ok {
			body = `{"c":0,"pc":0}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFinnhubProvider(t *testing.T) {
	srv := newFinnhubServer(t, map[string]string{
		"AAPL": `{"c":160.25,"pc":158}`,
		"MSFT": `{"c":0,"pc":410.5}`,
	})
	p := NewFinnhubProvider(testOptions(srv.URL))

	prices, errs := p.Quotes(context.Background(), []string{"aapl", "MSFT", "NOPE", "AAPL"})

	require.Len(t, prices, 2)
	assert.True(t, dec("160.25").Equal(prices["AAPL"]))
	assert.True(t, dec("410.5").Equal(prices["MSFT"]), "previous close is the fallback")
	assert.Equal(t, []string{"NOPE"}, symbols(errs))
	assert.ErrorIs(t, &errs[0], ErrNoPrice)
}

func TestFinnhubProviderRequiresKey(t *testing.T) {
	opts := testOptions("http://127.0.0.1:1")
	opts.APIKey = ""
	prices, errs := NewFinnhubProvider(opts).Quotes(context.Background(), []string{"AAPL"})
	assert.Empty(t, prices)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "api key")
}

func TestFinnhubProviderRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":101,"pc":100}`))
	}))
	defer srv.Close()

	prices, errs := NewFinnhubProvider(testOptions(srv.URL)).Quotes(context.Background(), []string{"SPY"})
	assert.Empty(t, errs)
	assert.True(t, dec("101").Equal(prices["SPY"]))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFinnhubProviderGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	prices, errs := NewFinnhubProvider(testOptions(srv.URL)).Quotes(context.Background(), []string{"SPY"})
	assert.Empty(t, prices)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "502")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFinnhubProviderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, errs := NewFinnhubProvider(testOptions(srv.URL)).Quotes(context.Background(), []string{"SPY"})
	require.Len(t, errs, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func newYahooServer(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		w.Header().Set("Content-Type", "application/json")

		price, ok := prices[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"chart": map[string]any{
				"result": []any{map[string]any{
					"meta": map[string]any{"symbol": symbol, "currency": "USD", "regularMarketPrice": price},
				}},
				"error": nil,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooProvider(t *testing.T) {
	srv := newYahooServer(t, map[string]float64{"AAPL": 178.72, "^GSPC": 5000.5})
	p := NewYahooProvider(testOptions(srv.URL))

	prices, errs := p.Quotes(context.Background(), []string{"AAPL", "^GSPC", "GONE"})

	require.Len(t, prices, 2)
	assert.True(t, dec("178.72").Equal(prices["AAPL"]))
	assert.True(t, dec("5000.5").Equal(prices["^GSPC"]))
	require.Len(t, errs, 1)
	assert.Equal(t, "GONE", errs[0].Symbol)
	assert.Contains(t, errs[0].Error(), "Not Found")
}

func TestChainProvider(t *testing.T) {
	first := NewStaticProvider(map[string]decimal.Decimal{"AAPL": dec("150")})
	second := NewStaticProvider(map[string]decimal.Decimal{"AAPL": dec("999"), "MSFT": dec("400")})
	chain := NewChainProvider(first, second)

	prices, errs := chain.Quotes(context.Background(), []string{"AAPL", "MSFT", "TSLA"})

	assert.Equal(t, "Static > Static", chain.Name())
	assert.True(t, dec("150").Equal(prices["AAPL"]), "first provider wins")
	assert.True(t, dec("400").Equal(prices["MSFT"]))
	assert.Equal(t, []string{"TSLA"}, symbols(errs))
}

func TestChainProviderFallsBackOverHTTP(t *testing.T) {
	finnhub := newFinnhubServer(t, map[string]string{"AAPL": `{"c":150,"pc":149}`})
	yahoo := newYahooServer(t, map[string]float64{"AAPL": 1, "VWCE.DE": 110.2})

	chain := NewChainProvider(
		NewFinnhubProvider(testOptions(finnhub.URL)),
		NewYahooProvider(testOptions(yahoo.URL)),
	)
	prices, errs := chain.Quotes(context.Background(), []string{"AAPL", "VWCE.DE"})

	assert.Empty(t, errs)
	assert.True(t, dec("150").Equal(prices["AAPL"]))
	assert.True(t, dec("110.2").Equal(prices["VWCE.DE"]))
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(nil)
	p.Set(" aapl ", dec("10"))
	p.Set("ZERO", decimal.Zero)

	prices, errs := p.Quotes(context.Background(), []string{"AAPL", "ZERO"})
	assert.True(t, dec("10").Equal(prices["AAPL"]))
	assert.Equal(t, []string{"ZERO"}, symbols(errs))
}

func TestSimProvider(t *testing.T) {
	a := NewSimProvider(dec("100"), 5)
	b := NewSimProvider(dec("100"), 5)

	for i := 0; i < 10; i++ {
		pa, _ := a.Quotes(context.Background(), []string{"AAPL", "MSFT"})
		pb, _ := b.Quotes(context.Background(), []string{"AAPL", "MSFT"})
		require.True(t, pa["AAPL"].Equal(pb["AAPL"]))
		require.True(t, pa["MSFT"].Equal(pb["MSFT"]))
		diff := pa["AAPL"].Sub(dec("100")).Abs()
		assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(int64(i+1))))
	}
}

func TestNew(t *testing.T) {
	base := config.Config{QuoteTimeout: time.Second, QuoteRetryCount: 1}

	tests := []struct {
		provider string
		apiKey   string
		want     string
	}{
		{provider: "finnhub", want: "Finnhub"},
		{provider: "yahoo", want: "Yahoo Finance"},
		{provider: "chain", want: "Yahoo Finance"},
		{provider: "chain", apiKey: "k", want: "Finnhub > Yahoo Finance"},
		{provider: "sim", want: "Simulated"},
		{provider: "static", want: "Static"},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"_"+tt.want, func(t *testing.T) {
			cfg := base
			cfg.QuoteProvider = tt.provider
			cfg.FinnhubAPIKey = tt.apiKey
			p, err := New(&cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}

	cfg := base
	cfg.QuoteProvider = "bloomberg"
	_, err := New(&cfg)
	assert.Error(t, err)
}
