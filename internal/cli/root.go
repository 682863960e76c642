// Package cli implements folioctl, the command-line client that works on the
// portfolio database directly.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/quote"
	"folio/internal/repository"
	"folio/internal/services"
)

// Deps are the services a command works with.
type Deps struct {
	Portfolio    services.PortfolioServicer
	History      services.HistoryServicer
	Quotes       quote.Provider
	Currency     string
	ArenaMaxRows int
	// Close releases the database; may be nil.
	Close func() error
}

// Builder opens the portfolio for a command. prices are fixed quotes from
// --quote flags that take precedence over the configured provider.
type Builder func(ctx context.Context, prices map[string]decimal.Decimal) (*Deps, error)

type rootOptions struct {
	build  Builder
	prices []string
	output string
	deps   *Deps
}

// NewRootCmd assembles folioctl. build is called once before any command that
// needs the portfolio.
func NewRootCmd(build Builder) *cobra.Command {
	root, _ := newRoot(build)
	return root
}

func newRoot(build Builder) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{build: build}

	root := &cobra.Command{
		Use:   "folioctl",
		Short: "Manage and value a leveraged trading portfolio",
		Long: `folioctl works directly on the portfolio database.

It records trades, undoes a day or the whole ledger, values open positions
against live quotes and tracks daily performance against a benchmark.

Configuration comes from the environment (and .env). Without DB_DRIVER the
local sqlite file DB_PATH (default folio.db) is used.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringArrayVarP(&opts.prices, "quote", "q", nil, "fixed quote TICKER=PRICE, overrides the provider (repeatable)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format (table, yaml)")

	root.AddCommand(
		newAddCmd(opts),
		newResetDayCmd(opts),
		newResetAllCmd(opts),
		newTransactionsCmd(opts),
		newValuationCmd(opts),
		newHistoryCmd(opts),
		newRecordCmd(opts),
		newReportCmd(opts),
		newQuoteCmd(opts),
		newArenaCmd(opts),
	)
	return root, opts
}

// Execute runs folioctl against the configured database.
func Execute() error {
	root, opts := newRoot(DefaultBuilder)
	err := root.Execute()
	if cerr := opts.close(); err == nil {
		err = cerr
	}
	return err
}

func (o *rootOptions) close() error {
	if o.deps == nil || o.deps.Close == nil {
		return nil
	}
	return o.deps.Close()
}

// open builds the dependencies on first use.
func (o *rootOptions) open(cmd *cobra.Command) (*Deps, error) {
	if o.deps != nil {
		return o.deps, nil
	}
	if err := validateOutput(o.output); err != nil {
		return nil, err
	}
	prices, err := parsePrices(o.prices)
	if err != nil {
		return nil, err
	}
	deps, err := o.build(cmd.Context(), prices)
	if err != nil {
		return nil, err
	}
	o.deps = deps
	return deps, nil
}

func parsePrices(flags []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(flags))
	for _, f := range flags {
		ticker, raw, ok := strings.Cut(f, "=")
		ticker = ledger.NormalizeTicker(ticker)
		if !ok || !ledger.ValidTicker(ticker) {
			return nil, fmt.Errorf("invalid --quote %q, want TICKER=PRICE", f)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("invalid --quote %q: price must be a positive number", f)
		}
		prices[ticker] = price
	}
	return prices, nil
}

// DefaultBuilder loads the configuration, migrates the database and loads
// the portfolio. The local operator is always allowed to edit.
func DefaultBuilder(ctx context.Context, prices map[string]decimal.Decimal) (*Deps, error) {
	logger.Init(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if _, set := os.LookupEnv("DB_DRIVER"); !set {
		cfg.DBDriver = database.DriverSQLite
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := dbManager.RunMigrations(); err != nil {
		dbManager.Close()
		return nil, err
	}

	initialCash, err := cfg.InitialCashDecimal()
	if err != nil {
		dbManager.Close()
		return nil, err
	}
	portfolio, err := services.LoadPortfolio(ctx, repository.NewGormStorage(dbManager.DB(), cfg.PortfolioID), services.PortfolioOptions{
		InitialCash:     initialCash,
		BenchmarkTicker: cfg.BenchmarkTicker,
	})
	if err != nil {
		dbManager.Close()
		return nil, err
	}

	provider, err := quote.New(cfg)
	if err != nil {
		dbManager.Close()
		return nil, err
	}
	if len(prices) > 0 {
		provider = quote.NewChainProvider(quote.NewStaticProvider(prices), provider)
	}

	perm := services.StaticPermission(true)
	return &Deps{
		Portfolio:    services.NewPortfolioService(portfolio, provider, perm),
		History:      services.NewHistoryService(portfolio, provider),
		Quotes:       provider,
		Currency:     cfg.DisplayCurrency,
		ArenaMaxRows: cfg.ArenaMaxRows,
		Close: func() error {
			if portfolio.Dirty() {
				if err := portfolio.Flush(context.Background()); err != nil {
					logger.Get().Errorw("final sync failed", "error", err)
				}
			}
			return dbManager.Close()
		},
	}, nil
}
