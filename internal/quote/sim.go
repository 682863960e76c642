package quote

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/shopspring/decimal"

	"folio/internal/arena"
)

// SimProvider prices every ticker with its own arena random walk. Each call
// advances the walks of the requested tickers by one tick.
type SimProvider struct {
	mu    sync.Mutex
	start decimal.Decimal
	seed  int64
	walks map[string]*arena.Walk
}

// NewSimProvider creates a simulated provider whose walks start at start.
func NewSimProvider(start decimal.Decimal, seed int64) *SimProvider {
	return &SimProvider{start: start, seed: seed, walks: make(map[string]*arena.Walk)}
}

// Name returns the provider's display name.
func (p *SimProvider) Name() string { return "Simulated" }

// Quotes returns the next simulated price of each ticker.
func (p *SimProvider) Quotes(_ context.Context, tickers []string) (map[string]decimal.Decimal, []FetchError) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prices := make(map[string]decimal.Decimal)
	var fetchErrors []FetchError
	for _, t := range uniqueTickers(tickers) {
		w, ok := p.walks[t]
		if !ok {
			w = arena.NewWalk(p.start, p.seed^tickerSeed(t))
			p.walks[t] = w
		}
		price := w.Next().Price
		if !price.IsPositive() {
			fetchErrors = append(fetchErrors, FetchError{Symbol: t, Err: ErrNoPrice})
			continue
		}
		prices[t] = price
	}
	return prices, fetchErrors
}

func tickerSeed(t string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t))
	return int64(h.Sum64())
}
