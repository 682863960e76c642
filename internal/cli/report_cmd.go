package cli

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"folio/internal/ledger"
	"folio/internal/services"
)

const reportTemplate = `# Portfolio report {{ .AsOf }}

Equity **{{ money .V.Equity }}** ({{ pct .V.TotalReturnPct }} on {{ money .V.InitialCash }})

| | |
|:---|---:|
| Cash | {{ money .V.Cash }} |
| Positions | {{ money .V.MarketValue }} |
| Unrealized P/L | {{ signed .V.UnrealizedPL }} |
| Realized P/L | {{ signed .V.RealizedPL }} |

## Positions
{{ if .V.Positions }}
| Ticker | Qty | Avg | Price | Lev | P/L | P/L % | Alloc |
|:---|---:|---:|---:|---:|---:|---:|---:|
{{- range .V.Positions }}
| {{ .Ticker }} | {{ .NetQty }} | {{ money .AvgPrice }} | {{ if .QuoteAvailable }}{{ money .CurrentPrice }} | {{ .Leverage.StringFixed 2 }}x | {{ signed .UnrealizedPL }} | {{ pct .UnrealizedPLPct }}{{ else }}n/a | {{ .Leverage.StringFixed 2 }}x | - | -{{ end }} | {{ printf "%.2f%%" .AllocationPct }} |
{{- end }}
{{ else }}
No open positions.
{{ end }}
{{- with .V.Insights }}
{{- if .TopGainer }}
## Insights

- Top gainer: **{{ .TopGainer.Ticker }}** {{ pct .TopGainer.UnrealizedPLPct }}
- Top loser: **{{ .TopLoser.Ticker }}** {{ pct .TopLoser.UnrealizedPLPct }}
- Largest position: **{{ .LargestPosition.Ticker }}** {{ printf "%.2f%%" .LargestPosition.AllocationPct }}
- Most impactful: **{{ .MostImpactful.Ticker }}** {{ signed .MostImpactful.UnrealizedPL }}
{{ end }}
{{- end }}
{{- if .Missing }}
> No quote for {{ .Missing }}; marked at average price.
{{ end }}
## Performance vs {{ .H.BenchmarkTicker }}
{{ if .H.Points }}
| Date | Portfolio | {{ .H.BenchmarkTicker }} |
|:---|---:|---:|
{{- range .H.Points }}
| {{ .Date }} | {{ pct .PortfolioReturnPct }} | {{ pct .BenchmarkReturnPct }} |
{{- end }}
{{ else }}
No history recorded.
{{ end }}`

type reportData struct {
	AsOf    string
	V       ledger.Valuation
	H       services.HistoryReport
	Missing string
}

// renderReport builds the markdown report for a valuation and history.
func renderReport(v *services.ValuationReport, h services.HistoryReport, currency string) (string, error) {
	funcs := template.FuncMap{
		"money":  func(d decimal.Decimal) string { return formatMoney(d, currency) },
		"signed": func(d decimal.Decimal) string { return formatSignedMoney(d, currency) },
		"pct":    formatPct,
	}
	tmpl, err := template.New("report").Funcs(funcs).Parse(reportTemplate)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	err = tmpl.Execute(&b, reportData{
		AsOf:    v.AsOf.Format("2006-01-02 15:04"),
		V:       v.Valuation,
		H:       h,
		Missing: strings.Join(v.MissingQuotes, ", "),
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		raw   bool
		style string
		width int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a markdown report of valuation and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			v, err := deps.Portfolio.Valuation(cmd.Context(), services.ValuationQuery{Sort: ledger.SortByAllocation, Desc: true})
			if err != nil {
				return err
			}
			md, err := renderReport(v, deps.History.History(), deps.Currency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				_, err := fmt.Fprint(out, md)
				return err
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("create markdown renderer: %w", err)
			}
			rendered, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source")
	cmd.Flags().StringVar(&style, "style", styles.DarkStyle, "glamour style (dark, light, notty, ascii)")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width")
	return cmd
}
