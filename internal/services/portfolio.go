package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/repository"
)

// PortfolioOptions configures LoadPortfolio.
type PortfolioOptions struct {
	InitialCash     decimal.Decimal
	BenchmarkTicker string
	// Now overrides the clock used for default dates.
	Now func() time.Time
}

// Portfolio is the in-memory ledger and history of one portfolio together
// with its storage. Services share it; mu orders mutate-then-persist
// sequences so storage writes follow mutation order.
type Portfolio struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	history   *ledger.History
	store     repository.StorageClient
	benchmark string
	now       func() time.Time
	dirty     bool
}

// LoadPortfolio restores a portfolio from store. A portfolio without a
// stored cash row starts with opts.InitialCash, which is written back.
func LoadPortfolio(ctx context.Context, store repository.StorageClient, opts PortfolioOptions) (*Portfolio, error) {
	if !opts.InitialCash.IsPositive() {
		return nil, fmt.Errorf("initial cash must be greater than zero")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	cash := state.Cash
	if !state.HasCash {
		cash = opts.InitialCash
		for _, tx := range state.Transactions {
			cash = cash.Sub(tx.Cost())
		}
		if err := store.ReplaceAll(ctx, repository.State{
			HasCash:         true,
			Cash:            cash,
			Transactions:    state.Transactions,
			History:         state.History,
			BenchmarkTicker: state.BenchmarkTicker,
			BenchmarkBase:   state.BenchmarkBase,
		}); err != nil {
			return nil, fmt.Errorf("initialize portfolio: %w", err)
		}
	}

	p := &Portfolio{
		ledger:    ledger.Restore(opts.InitialCash, cash, state.Transactions, ledger.WithClock(opts.Now)),
		history:   ledger.RestoreHistory(state.History, state.BenchmarkBase),
		store:     store,
		benchmark: opts.BenchmarkTicker,
		now:       opts.Now,
	}
	logger.Get().Infow("portfolio loaded",
		"transactions", len(state.Transactions),
		"cash", cash.StringFixed(2),
		"history_points", len(state.History),
	)
	return p, nil
}

// Benchmark is the ticker used as the history benchmark.
func (p *Portfolio) Benchmark() string { return p.benchmark }

// persist runs write while p.mu is held. A dirty portfolio is rewritten in
// full instead, which also clears the flag on success.
func (p *Portfolio) persist(ctx context.Context, op string, write func() error) PersistStatus {
	var err error
	if p.dirty {
		err = p.store.ReplaceAll(ctx, p.stateLocked())
	} else {
		err = write()
	}
	if err != nil {
		p.dirty = true
		logger.Get().Errorw("failed to persist portfolio change", "op", op, "error", err)
		return PersistStatus{PersistenceError: apperrors.Wrap(apperrors.ErrPersistenceFailure, err)}
	}
	p.dirty = false
	return PersistStatus{Persisted: true}
}

// Dirty reports whether storage lags behind memory.
func (p *Portfolio) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Flush rewrites storage from memory and clears the dirty flag on success.
func (p *Portfolio) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.ReplaceAll(ctx, p.stateLocked()); err != nil {
		p.dirty = true
		logger.Get().Errorw("portfolio sync failed", "error", err)
		return apperrors.Wrap(apperrors.ErrPersistenceFailure, err)
	}
	p.dirty = false
	logger.Get().Info("portfolio synced to storage")
	return nil
}

func (p *Portfolio) stateLocked() repository.State {
	snap := p.ledger.Snapshot()
	base, _ := p.history.Base()
	return repository.State{
		HasCash:         true,
		Cash:            snap.Cash,
		Transactions:    snap.Transactions,
		History:         p.history.Series(),
		BenchmarkTicker: p.benchmark,
		BenchmarkBase:   base,
	}
}
