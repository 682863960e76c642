package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"folio/internal/ledger"
	"folio/internal/pagination"
	"folio/internal/quote"
)

// EditPermission decides whether ledger mutations are allowed.
type EditPermission interface {
	CanEdit() bool
}

// StaticPermission is an EditPermission fixed at startup.
type StaticPermission bool

// CanEdit reports the fixed permission.
func (p StaticPermission) CanEdit() bool { return bool(p) }

// PersistStatus reports whether a mutation reached storage. A failed write
// never undoes the in-memory change.
type PersistStatus struct {
	Persisted        bool  `json:"persisted"`
	PersistenceError error `json:"-"`
}

// AddTransactionInput is a trade to append. A nil Price means the current
// quote is fetched; empty Date means today.
type AddTransactionInput struct {
	Ticker   string
	Qty      decimal.Decimal
	Price    *decimal.Decimal
	Leverage int
	Note     string
	Date     string
}

// AddResult is the outcome of AddTransaction.
type AddResult struct {
	Transaction ledger.Transaction
	Cash        decimal.Decimal
	// PriceFetched is true when the price came from the quote provider.
	PriceFetched bool
	PersistStatus
}

// ResetResult is the outcome of ResetDay and ResetAll.
type ResetResult struct {
	Removed    []ledger.Transaction
	CashBefore decimal.Decimal
	CashAfter  decimal.Decimal
	// HistoryCleared is set by ResetAll.
	HistoryCleared bool
	PersistStatus
}

// ValuationQuery filters and orders the position rows of a valuation.
// Insights always cover every open position.
type ValuationQuery struct {
	Ticker string
	Sort   ledger.SortKey
	Desc   bool
}

// ValuationReport is a valuation plus details about how quotes were obtained.
type ValuationReport struct {
	ledger.Valuation
	QuoteErrors []quote.FetchError
	Provider    string
	AsOf        time.Time
}

// PortfolioServicer defines the contract for ledger operations and valuation.
type PortfolioServicer interface {
	CanEdit() bool
	Valuation(ctx context.Context, q ValuationQuery) (*ValuationReport, error)
	Transactions(ticker string, page pagination.PageRequest) pagination.PageResponse[ledger.Transaction]
	AddTransaction(ctx context.Context, in AddTransactionInput) (*AddResult, error)
	ResetDay(ctx context.Context, date string) (*ResetResult, error)
	ResetAll(ctx context.Context) (*ResetResult, error)
	Sync(ctx context.Context) error
	Dirty() bool
}

// HistoryReport is the equity history with the benchmark base.
type HistoryReport struct {
	Points          []ledger.HistoryPoint
	BenchmarkTicker string
	BenchmarkBase   decimal.Decimal
	HasBase         bool
}

// RecordResult is the outcome of HistoryService.Record.
type RecordResult struct {
	Point   ledger.HistoryPoint
	Created bool
	// BaseSet is true when this call fixed the benchmark base.
	BaseSet bool
	// Complete is false when some position was marked without a quote.
	Complete bool
	PersistStatus
}

// HistoryServicer defines the contract for the equity history.
type HistoryServicer interface {
	Record(ctx context.Context, date string) (*RecordResult, error)
	History() HistoryReport
}

// QuoteServicer exposes the quote provider to handlers.
type QuoteServicer interface {
	Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []quote.FetchError)
	ProviderName() string
}

// AuthServicer defines the contract for editor authentication.
type AuthServicer interface {
	Authenticate(password string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
