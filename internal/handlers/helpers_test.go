package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/middleware"
	"folio/internal/pagination"
	"folio/internal/quote"
	"folio/internal/services"
	"folio/internal/validator"
)

// --- mock services ---

type mockPortfolioService struct {
	canEdit          bool
	dirty            bool
	valuationFn      func(ctx context.Context, q services.ValuationQuery) (*services.ValuationReport, error)
	transactionsFn   func(ticker string, page pagination.PageRequest) pagination.PageResponse[ledger.Transaction]
	addTransactionFn func(ctx context.Context, in services.AddTransactionInput) (*services.AddResult, error)
	resetDayFn       func(ctx context.Context, date string) (*services.ResetResult, error)
	resetAllFn       func(ctx context.Context) (*services.ResetResult, error)
	syncFn           func(ctx context.Context) error
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

func (m *mockPortfolioService) CanEdit() bool { return m.canEdit }

func (m *mockPortfolioService) Dirty() bool { return m.dirty }

func (m *mockPortfolioService) Valuation(ctx context.Context, q services.ValuationQuery) (*services.ValuationReport, error) {
	if m.valuationFn != nil {
		return m.valuationFn(ctx, q)
	}
	return &services.ValuationReport{}, nil
}

func (m *mockPortfolioService) Transactions(ticker string, page pagination.PageRequest) pagination.PageResponse[ledger.Transaction] {
	if m.transactionsFn != nil {
		return m.transactionsFn(ticker, page)
	}
	return pagination.NewPageResponse[ledger.Transaction](nil, page.Page, page.PageSize, 0)
}

func (m *mockPortfolioService) AddTransaction(ctx context.Context, in services.AddTransactionInput) (*services.AddResult, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(ctx, in)
	}
	return &services.AddResult{}, nil
}

func (m *mockPortfolioService) ResetDay(ctx context.Context, date string) (*services.ResetResult, error) {
	if m.resetDayFn != nil {
		return m.resetDayFn(ctx, date)
	}
	return &services.ResetResult{}, nil
}

func (m *mockPortfolioService) ResetAll(ctx context.Context) (*services.ResetResult, error) {
	if m.resetAllFn != nil {
		return m.resetAllFn(ctx)
	}
	return &services.ResetResult{}, nil
}

func (m *mockPortfolioService) Sync(ctx context.Context) error {
	if m.syncFn != nil {
		return m.syncFn(ctx)
	}
	return nil
}

type mockHistoryService struct {
	recordFn  func(ctx context.Context, date string) (*services.RecordResult, error)
	historyFn func() services.HistoryReport
}

var _ services.HistoryServicer = (*mockHistoryService)(nil)

func (m *mockHistoryService) Record(ctx context.Context, date string) (*services.RecordResult, error) {
	if m.recordFn != nil {
		return m.recordFn(ctx, date)
	}
	return &services.RecordResult{}, nil
}

func (m *mockHistoryService) History() services.HistoryReport {
	if m.historyFn != nil {
		return m.historyFn()
	}
	return services.HistoryReport{}
}

type mockQuoteService struct {
	quotesFn func(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []quote.FetchError)
}

var _ services.QuoteServicer = (*mockQuoteService)(nil)

func (m *mockQuoteService) Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, []quote.FetchError) {
	if m.quotesFn != nil {
		return m.quotesFn(ctx, tickers)
	}
	return map[string]decimal.Decimal{}, nil
}

func (m *mockQuoteService) ProviderName() string { return "Mock" }

type mockAuthService struct {
	authenticateFn func(password string) error
}

var _ services.AuthServicer = (*mockAuthService)(nil)

func (m *mockAuthService) Authenticate(password string) error {
	if m.authenticateFn != nil {
		return m.authenticateFn(password)
	}
	return nil
}

type auditEntry struct {
	actor, action, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Log(actor, action, _, resourceID, _ string, _ map[string]any) {
	m.entries = append(m.entries, auditEntry{actor: actor, action: action, resourceID: resourceID})
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	logger.Init("test")
}

func injectActor(actor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
