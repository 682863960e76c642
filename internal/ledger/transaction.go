// Package ledger implements the portfolio core: the transaction log with its
// cash balance, position aggregation, valuation with insights and the daily
// equity history. Everything here is in-memory and synchronous; persistence
// is the caller's concern.
package ledger

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for transaction and history dates.
const DateLayout = "2006-01-02"

const (
	DefaultLeverage = 1
	MaxLeverage     = 4

	maxNoteLength = 500
)

var (
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("invalid input")
	// ErrInsufficientFunds is returned when a buy costs more than the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,16}$`)

// Transaction is a single executed trade. Positive Qty buys (goes long),
// negative Qty sells or shorts.
type Transaction struct {
	ID       string
	Ticker   string
	Qty      decimal.Decimal
	Price    decimal.Decimal
	Leverage int
	Note     string
	Date     string
}

// Cost is the signed notional qty*price. Cash moves by -Cost.
func (t Transaction) Cost() decimal.Decimal {
	return t.Qty.Mul(t.Price)
}

// IsBuy reports whether the transaction debits cash.
func (t Transaction) IsBuy() bool {
	return t.Qty.IsPositive()
}

// NormalizeTicker trims and uppercases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidTicker reports whether s is an acceptable, already normalized, ticker.
func ValidTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

// DateOf formats t as a calendar date in t's location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

func (t *Transaction) normalize(today string) {
	t.Ticker = NormalizeTicker(t.Ticker)
	t.Note = strings.TrimSpace(t.Note)
	if t.Leverage == 0 {
		t.Leverage = DefaultLeverage
	}
	if t.Date == "" {
		t.Date = today
	}
}

// Validate checks the invariants of a normalized transaction.
func (t Transaction) Validate() error {
	switch {
	case t.Ticker == "":
		return fmt.Errorf("%w: ticker is required", ErrValidation)
	case !ValidTicker(t.Ticker):
		return fmt.Errorf("%w: invalid ticker %q", ErrValidation, t.Ticker)
	case t.Qty.IsZero():
		return fmt.Errorf("%w: quantity must not be zero", ErrValidation)
	case !t.Price.IsPositive():
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	case t.Leverage < DefaultLeverage || t.Leverage > MaxLeverage:
		return fmt.Errorf("%w: leverage must be between %d and %d", ErrValidation, DefaultLeverage, MaxLeverage)
	case len(t.Note) > maxNoteLength:
		return fmt.Errorf("%w: note exceeds %d characters", ErrValidation, maxNoteLength)
	}
	return ValidateDate(t.Date)
}
