package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"folio/internal/ledger"
	"folio/internal/services"
)

type positionView struct {
	Ticker          string  `yaml:"ticker"`
	Qty             string  `yaml:"qty"`
	AvgPrice        string  `yaml:"avg_price"`
	CurrentPrice    *string `yaml:"current_price"`
	Leverage        string  `yaml:"leverage"`
	MarketValue     string  `yaml:"market_value"`
	Exposure        string  `yaml:"exposure"`
	UnrealizedPL    string  `yaml:"unrealized_pl"`
	UnrealizedPLPct float64 `yaml:"unrealized_pl_pct"`
	AllocationPct   float64 `yaml:"allocation_pct"`
	Opened          string  `yaml:"opened"`
	Note            string  `yaml:"note,omitempty"`
}

type valuationView struct {
	Provider       string            `yaml:"provider"`
	AsOf           string            `yaml:"as_of"`
	InitialCash    string            `yaml:"initial_cash"`
	Cash           string            `yaml:"cash"`
	MarketValue    string            `yaml:"market_value"`
	Equity         string            `yaml:"equity"`
	TotalReturnPct float64           `yaml:"total_return_pct"`
	UnrealizedPL   string            `yaml:"unrealized_pl"`
	RealizedPL     string            `yaml:"realized_pl"`
	Complete       bool              `yaml:"complete"`
	MissingQuotes  []string          `yaml:"missing_quotes,omitempty"`
	Positions      []positionView    `yaml:"positions"`
	Insights       map[string]string `yaml:"insights,omitempty"`
}

func newValuationView(r *services.ValuationReport) valuationView {
	v := valuationView{
		Provider:       r.Provider,
		AsOf:           r.AsOf.UTC().Format("2006-01-02T15:04:05Z"),
		InitialCash:    r.InitialCash.StringFixed(2),
		Cash:           r.Cash.StringFixed(2),
		MarketValue:    r.MarketValue.StringFixed(2),
		Equity:         r.Equity.StringFixed(2),
		TotalReturnPct: r.TotalReturnPct,
		UnrealizedPL:   r.UnrealizedPL.StringFixed(2),
		RealizedPL:     r.RealizedPL.StringFixed(2),
		Complete:       r.Complete,
		MissingQuotes:  r.MissingQuotes,
		Positions:      make([]positionView, len(r.Positions)),
		Insights:       insightTickers(r.Insights),
	}
	for i, p := range r.Positions {
		pv := positionView{
			Ticker:          p.Ticker,
			Qty:             p.NetQty.String(),
			AvgPrice:        p.AvgPrice.StringFixed(2),
			Leverage:        p.Leverage.String(),
			MarketValue:     p.MarketValue.StringFixed(2),
			Exposure:        p.Exposure.StringFixed(2),
			UnrealizedPL:    p.UnrealizedPL.StringFixed(2),
			UnrealizedPLPct: p.UnrealizedPLPct,
			AllocationPct:   p.AllocationPct,
			Opened:          p.Opened,
			Note:            p.Note,
		}
		if p.QuoteAvailable {
			price := p.CurrentPrice.StringFixed(2)
			pv.CurrentPrice = &price
		}
		v.Positions[i] = pv
	}
	return v
}

func insightTickers(in ledger.Insights) map[string]string {
	out := make(map[string]string)
	for name, p := range map[string]*ledger.PositionValuation{
		"top_gainer":       in.TopGainer,
		"top_loser":        in.TopLoser,
		"largest_position": in.LargestPosition,
		"most_impactful":   in.MostImpactful,
	} {
		if p != nil {
			out[name] = p.Ticker
		}
	}
	return out
}

func writeValuation(out io.Writer, r *services.ValuationReport, currency string) error {
	fmt.Fprintf(out, "Equity:      %s (%s)\n", formatMoney(r.Equity, currency), formatPct(r.TotalReturnPct))
	fmt.Fprintf(out, "Cash:        %s\n", formatMoney(r.Cash, currency))
	fmt.Fprintf(out, "Positions:   %s\n", formatMoney(r.MarketValue, currency))
	fmt.Fprintf(out, "Unrealized:  %s\n", formatSignedMoney(r.UnrealizedPL, currency))
	fmt.Fprintf(out, "Realized:    %s\n", formatSignedMoney(r.RealizedPL, currency))
	fmt.Fprintf(out, "Quotes:      %s at %s\n\n", r.Provider, r.AsOf.Format("2006-01-02 15:04"))

	if len(r.Positions) == 0 {
		fmt.Fprintln(out, "No open positions.")
	} else {
		t := newTable(out, "TICKER", "QTY", "AVG", "PRICE", "LEV", "VALUE", "P/L", "P/L %", "ALLOC")
		for _, p := range r.Positions {
			price := "n/a"
			pl, plPct := "-", "-"
			if p.QuoteAvailable {
				price = formatMoney(p.CurrentPrice, currency)
				pl = formatSignedMoney(p.UnrealizedPL, currency)
				plPct = formatPct(p.UnrealizedPLPct)
			}
			t.row(p.Ticker, formatQty(p.NetQty), formatMoney(p.AvgPrice, currency), price,
				p.Leverage.StringFixed(2)+"x", formatMoney(p.MarketValue, currency), pl, plPct,
				fmt.Sprintf("%.2f%%", p.AllocationPct))
		}
		if err := t.flush(); err != nil {
			return err
		}
	}

	if names := insightTickers(r.Insights); len(names) > 0 {
		fmt.Fprintln(out)
		for _, k := range []string{"top_gainer", "top_loser", "largest_position", "most_impactful"} {
			if ticker, ok := names[k]; ok {
				fmt.Fprintf(out, "%-17s %s\n", strings.ReplaceAll(k, "_", " ")+":", ticker)
			}
		}
	}
	if !r.Complete {
		fmt.Fprintf(out, "\nwarning: no quote for %s; marked at average price\n", strings.Join(r.MissingQuotes, ", "))
	}
	return nil
}

func newValuationCmd(opts *rootOptions) *cobra.Command {
	var (
		sortBy string
		desc   bool
		ticker string
	)

	cmd := &cobra.Command{
		Use:     "valuation",
		Aliases: []string{"value", "positions"},
		Short:   "Value open positions against current quotes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ledger.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			report, err := deps.Portfolio.Valuation(cmd.Context(), services.ValuationQuery{
				Ticker: ticker,
				Sort:   key,
				Desc:   desc,
			})
			if err != nil {
				return err
			}
			if opts.output == outputYAML {
				return writeYAML(cmd.OutOrStdout(), newValuationView(report))
			}
			return writeValuation(cmd.OutOrStdout(), report, deps.Currency)
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort by ticker, qty, pl, pl_pct or allocation")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "only this ticker")
	return cmd
}
