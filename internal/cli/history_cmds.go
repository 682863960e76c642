package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"folio/internal/services"
)

type historyPointView struct {
	Date      string  `yaml:"date"`
	Portfolio float64 `yaml:"portfolio_pct"`
	Benchmark float64 `yaml:"benchmark_pct"`
}

type historyView struct {
	BenchmarkTicker string             `yaml:"benchmark_ticker"`
	BenchmarkBase   *string            `yaml:"benchmark_base"`
	Points          []historyPointView `yaml:"points"`
}

func newHistoryView(h services.HistoryReport) historyView {
	v := historyView{
		BenchmarkTicker: h.BenchmarkTicker,
		Points:          make([]historyPointView, len(h.Points)),
	}
	if h.HasBase {
		base := h.BenchmarkBase.String()
		v.BenchmarkBase = &base
	}
	for i, p := range h.Points {
		v.Points[i] = historyPointView{Date: p.Date, Portfolio: p.PortfolioReturnPct, Benchmark: p.BenchmarkReturnPct}
	}
	return v
}

func writeHistory(out io.Writer, h services.HistoryReport) error {
	if len(h.Points) == 0 {
		fmt.Fprintln(out, "No history recorded.")
		return nil
	}
	t := newTable(out, "DATE", "PORTFOLIO", h.BenchmarkTicker, "SPREAD")
	for _, p := range h.Points {
		t.row(p.Date, formatPct(p.PortfolioReturnPct), formatPct(p.BenchmarkReturnPct),
			formatPct(p.PortfolioReturnPct-p.BenchmarkReturnPct))
	}
	return t.flush()
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show daily returns against the benchmark, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			h := deps.History.History()
			if opts.output == outputYAML {
				return writeYAML(cmd.OutOrStdout(), newHistoryView(h))
			}
			return writeHistory(cmd.OutOrStdout(), h)
		},
	}
}

func newRecordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "record [DATE]",
		Short: "Record the history point for a day (default today)",
		Long: `Record the history point for a day (default today).

Recording the same day again replaces its point. The first recorded
benchmark price becomes the base for every later benchmark return.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date string
			if len(args) == 1 {
				date = args[0]
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			res, err := deps.History.Record(cmd.Context(), date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputYAML {
				return writeYAML(out, map[string]any{
					"date":          res.Point.Date,
					"portfolio_pct": res.Point.PortfolioReturnPct,
					"benchmark_pct": res.Point.BenchmarkReturnPct,
					"created":       res.Created,
					"base_set":      res.BaseSet,
					"complete":      res.Complete,
					"persisted":     res.Persisted,
				})
			}
			verb := "Updated"
			if res.Created {
				verb = "Recorded"
			}
			fmt.Fprintf(out, "%s %s: portfolio %s, benchmark %s\n", verb, res.Point.Date,
				formatPct(res.Point.PortfolioReturnPct), formatPct(res.Point.BenchmarkReturnPct))
			if res.BaseSet {
				fmt.Fprintln(out, "Benchmark base fixed by this recording.")
			}
			if !res.Complete {
				fmt.Fprintln(out, "warning: some positions had no quote and were marked at average price")
			}
			persistNote(out, res.PersistStatus)
			return nil
		},
	}
}
