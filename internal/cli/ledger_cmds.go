package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"folio/internal/ledger"
	"folio/internal/pagination"
	"folio/internal/services"
)

type transactionView struct {
	ID       string `yaml:"id"`
	Date     string `yaml:"date"`
	Ticker   string `yaml:"ticker"`
	Qty      string `yaml:"qty"`
	Price    string `yaml:"price"`
	Leverage int    `yaml:"leverage"`
	Note     string `yaml:"note,omitempty"`
}

func newTransactionView(tx ledger.Transaction) transactionView {
	return transactionView{
		ID:       tx.ID,
		Date:     tx.Date,
		Ticker:   tx.Ticker,
		Qty:      tx.Qty.String(),
		Price:    tx.Price.String(),
		Leverage: tx.Leverage,
		Note:     tx.Note,
	}
}

func writeTransactions(out io.Writer, txs []ledger.Transaction, currency string) error {
	t := newTable(out, "DATE", "TICKER", "QTY", "PRICE", "LEV", "COST", "NOTE")
	for _, tx := range txs {
		t.row(tx.Date, tx.Ticker, formatQty(tx.Qty), formatMoney(tx.Price, currency),
			fmt.Sprintf("%dx", tx.Leverage), formatMoney(tx.Cost(), currency), tx.Note)
	}
	return t.flush()
}

func persistNote(out io.Writer, s services.PersistStatus) {
	if s.Persisted || s.PersistenceError == nil {
		return
	}
	err := s.PersistenceError
	if inner := errors.Unwrap(err); inner != nil {
		err = inner
	}
	fmt.Fprintf(out, "warning: change kept in memory but not saved: %v\n", err)
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		price    string
		leverage int
		note     string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "add TICKER QTY",
		Short: "Record a trade",
		Long: `Record a trade. A positive QTY buys, a negative QTY sells or shorts.
Put a negative QTY after "--" so it is not read as a flag.

Without --price the current quote is used.

Example:
  folioctl add AAPL 10 --price 150
  folioctl add --leverage 2 --note "earnings short" -- TSLA -5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			in := services.AddTransactionInput{
				Ticker:   args[0],
				Qty:      qty,
				Leverage: leverage,
				Note:     note,
				Date:     date,
			}
			if price != "" {
				p, err := decimal.NewFromString(price)
				if err != nil {
					return fmt.Errorf("invalid price %q", price)
				}
				in.Price = &p
			}

			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			res, err := deps.Portfolio.AddTransaction(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputYAML {
				return writeYAML(out, map[string]any{
					"transaction":   newTransactionView(res.Transaction),
					"cash":          res.Cash.StringFixed(2),
					"price_fetched": res.PriceFetched,
					"persisted":     res.Persisted,
				})
			}
			tx := res.Transaction
			fmt.Fprintf(out, "Recorded %s %s @ %s on %s\n", formatQty(tx.Qty), tx.Ticker, formatMoney(tx.Price, deps.Currency), tx.Date)
			if res.PriceFetched {
				fmt.Fprintln(out, "Price taken from the current quote.")
			}
			fmt.Fprintf(out, "Cash: %s\n", formatMoney(res.Cash, deps.Currency))
			persistNote(out, res.PersistStatus)
			return nil
		},
	}

	cmd.Flags().StringVar(&price, "price", "", "execution price (default: current quote)")
	cmd.Flags().IntVarP(&leverage, "leverage", "l", ledger.DefaultLeverage, "leverage 1-4")
	cmd.Flags().StringVarP(&note, "note", "n", "", "free-text note")
	cmd.Flags().StringVarP(&date, "date", "d", "", "trade date YYYY-MM-DD (default today)")
	return cmd
}

func writeReset(out io.Writer, output string, res *services.ResetResult, currency string) error {
	if output == outputYAML {
		views := make([]transactionView, len(res.Removed))
		for i, tx := range res.Removed {
			views[i] = newTransactionView(tx)
		}
		return writeYAML(out, map[string]any{
			"removed":         views,
			"cash_before":     res.CashBefore.StringFixed(2),
			"cash_after":      res.CashAfter.StringFixed(2),
			"history_cleared": res.HistoryCleared,
			"persisted":       res.Persisted,
		})
	}
	fmt.Fprintf(out, "Removed %d transaction(s)\n", len(res.Removed))
	if len(res.Removed) > 0 {
		if err := writeTransactions(out, res.Removed, currency); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Cash: %s -> %s (%s)\n", formatMoney(res.CashBefore, currency),
		formatMoney(res.CashAfter, currency), formatSignedMoney(res.CashAfter.Sub(res.CashBefore), currency))
	if res.HistoryCleared {
		fmt.Fprintln(out, "History and benchmark base cleared.")
	}
	persistNote(out, res.PersistStatus)
	return nil
}

func newResetDayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-day [DATE]",
		Short: "Undo every trade of one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date string
			if len(args) == 1 {
				date = args[0]
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			res, err := deps.Portfolio.ResetDay(cmd.Context(), date)
			if err != nil {
				return err
			}
			return writeReset(cmd.OutOrStdout(), opts.output, res, deps.Currency)
		},
	}
}

func newResetAllCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Remove every trade and history point and restore the initial cash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset-all deletes the whole ledger; rerun with --yes to confirm")
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			res, err := deps.Portfolio.ResetAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeReset(cmd.OutOrStdout(), opts.output, res, deps.Currency)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newTransactionsCmd(opts *rootOptions) *cobra.Command {
	var (
		ticker string
		page   pagination.PageRequest
	)

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"log"},
		Short:   "List the transaction log, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page.Page < 0 || page.PageSize < 0 {
				return errors.New("--page and --limit must not be negative")
			}
			deps, err := opts.open(cmd)
			if err != nil {
				return err
			}
			res := deps.Portfolio.Transactions(ticker, page)

			out := cmd.OutOrStdout()
			if opts.output == outputYAML {
				views := make([]transactionView, len(res.Data))
				for i, tx := range res.Data {
					views[i] = newTransactionView(tx)
				}
				return writeYAML(out, views)
			}
			if len(res.Data) == 0 {
				fmt.Fprintln(out, "No transactions.")
				return nil
			}
			if err := writeTransactions(out, res.Data, deps.Currency); err != nil {
				return err
			}
			if res.TotalPages > 1 {
				fmt.Fprintf(out, "Page %d of %d (%d transactions)\n", res.Page, res.TotalPages, res.TotalItems)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "only this ticker")
	cmd.Flags().IntVar(&page.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&page.PageSize, "limit", 50, "transactions per page")
	return cmd
}
