package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"folio/internal/arena"
	"folio/internal/ledger"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Fetch current quotes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := make([]string, 0, len(args))
			for _, a := range args {
				s := ledger.NormalizeTicker(a)
				if !ledger.ValidTicker(s) {
					return fmt.Errorf("invalid symbol %q", a)
				}
				symbols = append(symbols, s)
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			prices, fetchErrs := deps.Quotes.Quotes(cmd.Context(), symbols)

			out := cmd.OutOrStdout()
			if opts.output == outputYAML {
				view := map[string]any{"provider": deps.Quotes.Name()}
				quotes := make(map[string]string, len(prices))
				for s, p := range prices {
					quotes[s] = p.String()
				}
				view["quotes"] = quotes
				if len(fetchErrs) > 0 {
					failed := make(map[string]string, len(fetchErrs))
					for _, e := range fetchErrs {
						failed[e.Symbol] = e.Err.Error()
					}
					view["errors"] = failed
				}
				return writeYAML(out, view)
			}

			fetched := make([]string, 0, len(prices))
			for s := range prices {
				fetched = append(fetched, s)
			}
			sort.Strings(fetched)
			t := newTable(out, "SYMBOL", "PRICE")
			for _, s := range fetched {
				t.row(s, prices[s].String())
			}
			for _, e := range fetchErrs {
				t.row(e.Symbol, "error: "+e.Err.Error())
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Source: %s\n", deps.Quotes.Name())
			if len(prices) == 0 {
				return errors.New("no quotes available")
			}
			return nil
		},
	}
}

func newArenaCmd(opts *rootOptions) *cobra.Command {
	var (
		ticks int
		start string
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "arena",
		Short: "Simulate a random-walk price series",
		Long: `Simulate a random-walk price series.

Each tick moves the price by a random amount between -1 and +1. Only the most
recent rows (ARENA_MAX_ROWS, default 300) are printed. Runs with the same
non-zero --seed produce the same series.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startPrice, err := decimal.NewFromString(start)
			if err != nil {
				return fmt.Errorf("invalid start price %q", start)
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			rows, err := arena.Run(arena.Options{
				Start:   startPrice,
				Ticks:   ticks,
				Seed:    seed,
				MaxRows: deps.ArenaMaxRows,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputYAML {
				view := make([]map[string]any, len(rows))
				for i, r := range rows {
					view[i] = map[string]any{"tick": r.Index, "delta": r.Delta.StringFixed(2), "price": r.Price.StringFixed(2)}
				}
				return writeYAML(out, view)
			}
			t := newTable(out, "TICK", "DELTA", "PRICE")
			for _, r := range rows {
				delta := r.Delta.StringFixed(2)
				if r.Delta.IsPositive() {
					delta = "+" + delta
				}
				t.row(fmt.Sprint(r.Index), delta, r.Price.StringFixed(2))
			}
			if err := t.flush(); err != nil {
				return err
			}
			if len(rows) < ticks {
				fmt.Fprintf(out, "Showing the last %d of %d ticks\n", len(rows), ticks)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 100, "number of ticks")
	cmd.Flags().StringVar(&start, "start", "100", "start price")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
