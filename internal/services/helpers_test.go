package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/quote"
	"folio/internal/repository"
	"folio/internal/testutil"
)

func init() {
	logger.Init("test")
}

var errStorageDown = errors.New("database unavailable")

// flakyStore fails every write while fail is set.
type flakyStore struct {
	repository.StorageClient
	fail bool
}

func (f *flakyStore) check() error {
	if f.fail {
		return errStorageDown
	}
	return nil
}

func (f *flakyStore) AppendTransaction(ctx context.Context, tx ledger.Transaction, cash decimal.Decimal) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.AppendTransaction(ctx, tx, cash)
}

func (f *flakyStore) RemoveTransactions(ctx context.Context, ids []string, cash decimal.Decimal) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.RemoveTransactions(ctx, ids, cash)
}

func (f *flakyStore) ClearLedger(ctx context.Context, cash decimal.Decimal) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.ClearLedger(ctx, cash)
}

func (f *flakyStore) UpsertHistoryPoint(ctx context.Context, p ledger.HistoryPoint) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.UpsertHistoryPoint(ctx, p)
}

func (f *flakyStore) SaveBenchmarkBase(ctx context.Context, ticker string, price decimal.Decimal) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.SaveBenchmarkBase(ctx, ticker, price)
}

func (f *flakyStore) ClearHistory(ctx context.Context) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.ClearHistory(ctx)
}

func (f *flakyStore) ReplaceAll(ctx context.Context, state repository.State) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.StorageClient.ReplaceAll(ctx, state)
}

var testNow = time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store     *flakyStore
	quotes    *quote.StaticProvider
	portfolio *Portfolio
	svc       PortfolioServicer
	history   HistoryServicer
}

func newFixture(t *testing.T, canEdit bool) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := &flakyStore{StorageClient: repository.NewGormStorage(db, testutil.TestPortfolioID)}
	portfolio, err := LoadPortfolio(context.Background(), store, PortfolioOptions{
		InitialCash:     dec("10000"),
		BenchmarkTicker: "SPY",
		Now:             func() time.Time { return testNow },
	})
	testutil.AssertNoError(t, err)

	quotes := quote.NewStaticProvider(nil)
	return &fixture{
		store:     store,
		quotes:    quotes,
		portfolio: portfolio,
		svc:       NewPortfolioService(portfolio, quotes, StaticPermission(canEdit)),
		history:   NewHistoryService(portfolio, quotes),
	}
}

func (f *fixture) buy(t *testing.T, ticker, qty, price, date string) *AddResult {
	t.Helper()
	p := dec(price)
	res, err := f.svc.AddTransaction(context.Background(), AddTransactionInput{
		Ticker: ticker,
		Qty:    dec(qty),
		Price:  &p,
		Date:   date,
	})
	testutil.AssertNoError(t, err)
	return res
}

func (f *fixture) stored(t *testing.T) repository.State {
	t.Helper()
	state, err := f.store.Load(context.Background())
	testutil.AssertNoError(t, err)
	return state
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertFloat(t *testing.T, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 0.01 {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
}
