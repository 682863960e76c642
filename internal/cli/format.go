package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

func validateOutput(o string) error {
	switch o {
	case outputTable, outputYAML:
		return nil
	}
	return fmt.Errorf("unsupported output %q (use table or yaml)", o)
}

// formatMoney renders amount in currency with its symbol and separators.
// Unknown currency codes fall back to a plain two-decimal number.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// formatSignedMoney is formatMoney with an explicit plus sign for gains.
func formatSignedMoney(amount decimal.Decimal, currency string) string {
	s := formatMoney(amount, currency)
	if amount.IsPositive() {
		return "+" + s
	}
	return s
}

func formatPct(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}

func formatQty(q decimal.Decimal) string {
	return q.String()
}

// table writes tab-separated rows aligned in columns.
type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, header ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
