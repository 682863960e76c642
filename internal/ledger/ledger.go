package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"folio/internal/uuid"
)

// Snapshot is an immutable copy of the ledger state.
type Snapshot struct {
	InitialCash  decimal.Decimal
	Cash         decimal.Decimal
	Transactions []Transaction
}

// Removal describes the effect of RemoveByDate or Clear.
type Removal struct {
	Removed    []Transaction
	CashBefore decimal.Decimal
	CashAfter  decimal.Decimal
}

// Adjustment is the cash change applied by the removal.
func (r Removal) Adjustment() decimal.Decimal {
	return r.CashAfter.Sub(r.CashBefore)
}

// IDs returns the ids of the removed transactions.
func (r Removal) IDs() []string {
	ids := make([]string, len(r.Removed))
	for i := range r.Removed {
		ids[i] = r.Removed[i].ID
	}
	return ids
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used to date transactions without a date.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger is the append-only transaction log plus the cash balance. All
// mutations are serialized; each one either applies completely or not at all.
type Ledger struct {
	mu          sync.RWMutex
	initialCash decimal.Decimal
	cash        decimal.Decimal
	txs         []Transaction
	now         func() time.Time
}

// New creates an empty ledger holding initialCash.
func New(initialCash decimal.Decimal, opts ...Option) *Ledger {
	return Restore(initialCash, initialCash, nil, opts...)
}

// Restore rebuilds a ledger from persisted state. Transactions are kept in
// the given order.
func Restore(initialCash, cash decimal.Decimal, txs []Transaction, opts ...Option) *Ledger {
	l := &Ledger{
		initialCash: initialCash,
		cash:        cash,
		txs:         append([]Transaction(nil), txs...),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today returns the current calendar date according to the ledger clock.
func (l *Ledger) Today() string {
	return DateOf(l.now())
}

// Append validates tx, checks available cash for buys, then records it and
// moves cash by -qty*price. The stored transaction is returned.
func (l *Ledger) Append(tx Transaction) (Transaction, error) {
	tx.normalize(l.Today())
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := tx.Cost()
	if tx.IsBuy() && cost.GreaterThan(l.cash) {
		return Transaction{}, fmt.Errorf("%w: cost %s exceeds cash %s",
			ErrInsufficientFunds, cost.StringFixed(2), l.cash.StringFixed(2))
	}
	if tx.ID == "" {
		tx.ID = uuid.New()
	}

	l.txs = append(l.txs, tx)
	l.cash = l.cash.Sub(cost)
	return tx, nil
}

// RemoveByDate removes every transaction dated date and reverses its cash
// effect: buys are refunded, sale proceeds are taken back.
func (l *Ledger) RemoveByDate(date string) (Removal, error) {
	if err := ValidateDate(date); err != nil {
		return Removal{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r := Removal{CashBefore: l.cash}
	kept := l.txs[:0:0]
	refund := decimal.Zero
	for _, tx := range l.txs {
		if tx.Date == date {
			r.Removed = append(r.Removed, tx)
			refund = refund.Add(tx.Cost())
			continue
		}
		kept = append(kept, tx)
	}
	l.txs = kept
	l.cash = l.cash.Add(refund)
	r.CashAfter = l.cash
	return r, nil
}

// Clear empties the log and resets cash to the initial amount.
func (l *Ledger) Clear() Removal {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := Removal{Removed: l.txs, CashBefore: l.cash, CashAfter: l.initialCash}
	l.txs = nil
	l.cash = l.initialCash
	return r
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Snapshot{
		InitialCash:  l.initialCash,
		Cash:         l.cash,
		Transactions: append([]Transaction(nil), l.txs...),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

// InitialCash returns the starting cash balance.
func (l *Ledger) InitialCash() decimal.Decimal {
	return l.initialCash
}

// Transactions returns the log newest first (by date, then by entry order),
// optionally restricted to one ticker.
func (l *Ledger) Transactions(ticker string) []Transaction {
	return l.Snapshot().Log(ticker)
}

// Log returns the snapshot's transactions newest first, optionally
// restricted to one ticker.
func (s Snapshot) Log(ticker string) []Transaction {
	ticker = NormalizeTicker(ticker)
	out := make([]Transaction, 0, len(s.Transactions))
	for i := len(s.Transactions) - 1; i >= 0; i-- {
		tx := s.Transactions[i]
		if ticker != "" && tx.Ticker != ticker {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Dates returns the distinct transaction dates in ascending order.
func (s Snapshot) Dates() []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, tx := range s.Transactions {
		if _, ok := seen[tx.Date]; ok {
			continue
		}
		seen[tx.Date] = struct{}{}
		dates = append(dates, tx.Date)
	}
	sort.Strings(dates)
	return dates
}

// Tickers returns the distinct tickers in first-appearance order.
func (s Snapshot) Tickers() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range s.Transactions {
		if _, ok := seen[tx.Ticker]; ok {
			continue
		}
		seen[tx.Ticker] = struct{}{}
		out = append(out, tx.Ticker)
	}
	return out
}
