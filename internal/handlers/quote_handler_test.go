package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"folio/internal/quote"
)

func setupQuoteRouter(handler *QuoteHandler) *gin.Engine {
	r := gin.New()
	r.GET("/quotes", handler.GetQuotes)
	return r
}

func TestQuoteHandler_GetQuotes(t *testing.T) {
	t.Run("returns 200 with prices and errors", func(t *testing.T) {
		var got []string
		svc := &mockQuoteService{
			quotesFn: func(_ context.Context, tickers []string) (map[string]decimal.Decimal, []quote.FetchError) {
				got = tickers
				return map[string]decimal.Decimal{"AAPL": dec("187.5")},
					[]quote.FetchError{{Symbol: "NOPE", Err: quote.ErrNoPrice}}
			},
		}
		r := setupQuoteRouter(NewQuoteHandler(svc))

		rec := doRequest(r, "GET", "/quotes?symbols=aapl,%20NOPE,AAPL", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got) != 2 || got[0] != "AAPL" || got[1] != "NOPE" {
			t.Errorf("expected deduplicated normalized symbols, got %v", got)
		}
		result := parseJSON(t, rec)
		if result["provider"] != "Mock" {
			t.Errorf("expected provider Mock, got %v", result["provider"])
		}
		quotes := result["quotes"].(map[string]interface{})
		if quotes["AAPL"] != 187.5 {
			t.Errorf("expected AAPL 187.5, got %v", quotes["AAPL"])
		}
		errs := result["errors"].([]interface{})
		if len(errs) != 1 || errs[0].(map[string]interface{})["symbol"] != "NOPE" {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("returns 400 without symbols", func(t *testing.T) {
		r := setupQuoteRouter(NewQuoteHandler(&mockQuoteService{}))

		rec := doRequest(r, "GET", "/quotes", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid ticker", func(t *testing.T) {
		r := setupQuoteRouter(NewQuoteHandler(&mockQuoteService{}))

		rec := doRequest(r, "GET", "/quotes?symbols=AAPL,bad$ticker", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on too many symbols", func(t *testing.T) {
		symbols := make([]string, maxQuoteSymbols+1)
		for i := range symbols {
			symbols[i] = "T" + strings.Repeat("X", i%10) + string(rune('A'+i%26)) + string(rune('A'+i/26))
		}
		r := setupQuoteRouter(NewQuoteHandler(&mockQuoteService{}))

		rec := doRequest(r, "GET", "/quotes?symbols="+strings.Join(symbols, ","), "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
