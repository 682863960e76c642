package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/services"
)

const maxQuoteSymbols = 50

// QuoteHandler exposes the configured quote provider.
type QuoteHandler struct {
	quoteService services.QuoteServicer
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService services.QuoteServicer) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// QuoteError describes a symbol the provider could not price.
type QuoteError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// QuotesResponse holds the latest prices by ticker.
type QuotesResponse struct {
	Provider string             `json:"provider"`
	Quotes   map[string]float64 `json:"quotes"`
	Errors   []QuoteError       `json:"errors"`
}

// GetQuotes returns the latest prices for a list of tickers
// @Summary     Get quotes
// @Description Fetch the latest prices from the configured provider
// @Tags        quotes
// @Produce     json
// @Param       symbols query string true "Comma-separated tickers"
// @Success     200 {object} QuotesResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /quotes [get]
func (h *QuoteHandler) GetQuotes(c *gin.Context) {
	symbols, err := parseSymbols(c.Query("symbols"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	prices, fetchErrs := h.quoteService.Quotes(c.Request.Context(), symbols)
	resp := QuotesResponse{
		Provider: h.quoteService.ProviderName(),
		Quotes:   make(map[string]float64, len(prices)),
		Errors:   make([]QuoteError, 0, len(fetchErrs)),
	}
	for sym, p := range prices {
		resp.Quotes[sym] = num(p)
	}
	for _, fe := range fetchErrs {
		resp.Errors = append(resp.Errors, QuoteError{Symbol: fe.Symbol, Error: fe.Err.Error()})
	}
	c.JSON(http.StatusOK, resp)
}

func parseSymbols(raw string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		sym := ledger.NormalizeTicker(part)
		if sym == "" || seen[sym] {
			continue
		}
		if !ledger.ValidTicker(sym) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid ticker %q", part))
		}
		seen[sym] = true
		out = append(out, sym)
	}
	switch {
	case len(out) == 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbols is required")
	case len(out) > maxQuoteSymbols:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("at most %d symbols per request", maxQuoteSymbols))
	}
	return out, nil
}
