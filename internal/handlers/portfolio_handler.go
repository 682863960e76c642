package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/pagination"
	"folio/internal/services"
)

// PortfolioHandler handles ledger and valuation requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	auditService     services.AuditServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, auditService services.AuditServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, auditService: auditService}
}

// PortfolioQuery holds the filter and ordering of the position table.
type PortfolioQuery struct {
	Ticker string `form:"ticker" binding:"max=16"`
	Sort   string `form:"sort" binding:"omitempty,sort_key"`
	Order  string `form:"order" binding:"omitempty,sort_order"`
}

// GetPortfolio returns the portfolio marked to the latest quotes
// @Summary     Get portfolio valuation
// @Description Value every open position, with totals and insights
// @Tags        portfolio
// @Produce     json
// @Param       ticker query string false "Case-insensitive ticker substring filter"
// @Param       sort   query string false "Sort key (ticker, qty, pl, pl_pct, allocation)"
// @Param       order  query string false "Sort order (asc, desc)"
// @Success     200 {object} PortfolioResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	var q PortfolioQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	key, err := ledger.ParseSortKey(q.Sort)
	if err != nil {
		respondWithError(c, apperrors.FromLedger(err))
		return
	}

	report, err := h.portfolioService.Valuation(c.Request.Context(), services.ValuationQuery{
		Ticker: q.Ticker,
		Sort:   key,
		Desc:   strings.EqualFold(q.Order, "desc"),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := newPortfolioResponse(report)
	resp.CanEdit = h.portfolioService.CanEdit()
	resp.Dirty = h.portfolioService.Dirty()
	c.JSON(http.StatusOK, resp)
}

// TransactionQuery holds the pagination and ticker filter of the log.
type TransactionQuery struct {
	pagination.PageRequest
	Ticker string `form:"ticker" binding:"omitempty,ticker"`
}

// ListTransactions returns the transaction log, newest date first
// @Summary     List transactions
// @Description Get the transaction log, optionally for one ticker
// @Tags        transactions
// @Produce     json
// @Param       ticker    query string false "Exact ticker"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[TransactionResponse]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /portfolio/transactions [get]
func (h *PortfolioHandler) ListTransactions(c *gin.Context) {
	var q TransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	q.Defaults()

	page := h.portfolioService.Transactions(ledger.NormalizeTicker(q.Ticker), q.PageRequest)
	c.JSON(http.StatusOK, pagination.Map(page, newTransactionResponse))
}

// AddTransactionRequest represents the request payload for recording a trade.
// Price is fetched from the quote provider when omitted.
type AddTransactionRequest struct {
	Ticker   string           `json:"ticker" binding:"required,ticker"`
	Qty      decimal.Decimal  `json:"qty" swaggertype:"number"`
	Price    *decimal.Decimal `json:"price" swaggertype:"number"`
	Leverage int              `json:"leverage" binding:"omitempty,min=1,max=4"`
	Note     string           `json:"note" binding:"max=500"`
	Date     string           `json:"date" binding:"omitempty,trade_date"`
}

// AddTransaction handles recording a new trade
// @Summary     Record a trade
// @Description Append a buy (positive qty) or sell/short (negative qty) to the log
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddTransactionRequest true "Trade details"
// @Success     201 {object} AddTransactionResponse "Trade recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editing disabled"
// @Failure     502 {object} ErrorResponse "Quote unavailable"
// @Router      /portfolio/transactions [post]
func (h *PortfolioHandler) AddTransaction(c *gin.Context) {
	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.portfolioService.AddTransaction(c.Request.Context(), services.AddTransactionInput{
		Ticker:   req.Ticker,
		Qty:      req.Qty,
		Price:    req.Price,
		Leverage: req.Leverage,
		Note:     req.Note,
		Date:     req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx := result.Transaction
	h.auditService.Log(getActor(c), "ADD_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]any{"ticker": tx.Ticker, "qty": tx.Qty.String(), "price": tx.Price.String(), "persisted": result.Persisted})

	c.JSON(http.StatusCreated, AddTransactionResponse{
		Transaction:     newTransactionResponse(tx),
		Cash:            num(result.Cash),
		PriceFetched:    result.PriceFetched,
		PersistResponse: newPersistResponse(result.PersistStatus),
	})
}

// ResetDayQuery selects the day to undo. Empty means today.
type ResetDayQuery struct {
	Date string `form:"date" binding:"omitempty,trade_date"`
}

// ResetDay removes every trade of one day and restores the cash
// @Summary     Reset a day
// @Description Remove all trades dated on the given day (default today)
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "Day to reset (YYYY-MM-DD)"
// @Success     200 {object} ResetResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editing disabled"
// @Router      /portfolio/transactions [delete]
func (h *PortfolioHandler) ResetDay(c *gin.Context) {
	var q ResetDayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.portfolioService.ResetDay(c.Request.Context(), q.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(getActor(c), "RESET_DAY", "ledger", q.Date, c.ClientIP(),
		map[string]any{"removed": len(result.Removed), "cash_after": result.CashAfter.String()})

	c.JSON(http.StatusOK, newResetResponse(result))
}

// ResetAll clears the log, the history and restores the initial cash
// @Summary     Reset the portfolio
// @Description Remove every trade and history point and restore the initial cash
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ResetResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editing disabled"
// @Router      /portfolio/reset [post]
func (h *PortfolioHandler) ResetAll(c *gin.Context) {
	result, err := h.portfolioService.ResetAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(getActor(c), "RESET_ALL", "ledger", "", c.ClientIP(),
		map[string]any{"removed": len(result.Removed)})

	c.JSON(http.StatusOK, newResetResponse(result))
}

// Sync rewrites storage from the in-memory ledger
// @Summary     Sync storage
// @Description Persist the full in-memory state, clearing the dirty flag
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} PersistResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Editing disabled"
// @Failure     500 {object} ErrorResponse "Persistence failure"
// @Router      /portfolio/sync [post]
func (h *PortfolioHandler) Sync(c *gin.Context) {
	if err := h.portfolioService.Sync(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(getActor(c), "SYNC", "ledger", "", c.ClientIP(), nil)

	c.JSON(http.StatusOK, PersistResponse{Persisted: true})
}
