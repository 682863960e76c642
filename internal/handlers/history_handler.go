package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/internal/pagination"
	"folio/internal/services"
)

// HistoryHandler handles the portfolio vs benchmark history.
type HistoryHandler struct {
	historyService services.HistoryServicer
	auditService   services.AuditServicer
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService services.HistoryServicer, auditService services.AuditServicer) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, auditService: auditService}
}

// HistoryResponse is one page of the history, oldest first.
type HistoryResponse struct {
	pagination.PageResponse[HistoryPointResponse]
	BenchmarkTicker string   `json:"benchmark_ticker"`
	BenchmarkBase   *float64 `json:"benchmark_base"`
}

// GetHistory returns the recorded history points
// @Summary     Get history
// @Description Daily portfolio and benchmark returns in date order
// @Tags        history
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} HistoryResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /portfolio/history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	report := h.historyService.History()
	resp := HistoryResponse{
		PageResponse:    pagination.Map(pagination.Slice(report.Points, page), newHistoryPointResponse),
		BenchmarkTicker: report.BenchmarkTicker,
	}
	if report.HasBase {
		base := num(report.BenchmarkBase)
		resp.BenchmarkBase = &base
	}
	c.JSON(http.StatusOK, resp)
}

// RecordHistoryRequest selects the day to record. Empty means today.
type RecordHistoryRequest struct {
	Date string `json:"date" binding:"omitempty,trade_date"`
}

// RecordHistory values the portfolio and the benchmark and stores the point
// @Summary     Record a history point
// @Description Record today's (or the given day's) portfolio and benchmark returns; an existing point for the day is replaced
// @Tags        history
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Security    ApiKeyAuth
// @Param       request body RecordHistoryRequest false "Day to record"
// @Success     201 {object} RecordHistoryResponse "Point created"
// @Success     200 {object} RecordHistoryResponse "Point replaced"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     502 {object} ErrorResponse "Benchmark quote unavailable"
// @Router      /portfolio/history [post]
// @Router      /pipeline/history/record [post]
func (h *HistoryHandler) RecordHistory(c *gin.Context) {
	var req RecordHistoryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}

	result, err := h.historyService.Record(c.Request.Context(), req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(getActor(c), "RECORD_HISTORY", "history", result.Point.Date, c.ClientIP(),
		map[string]any{"port": result.Point.PortfolioReturnPct, "sp": result.Point.BenchmarkReturnPct, "created": result.Created})

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, RecordHistoryResponse{
		Point:           newHistoryPointResponse(result.Point),
		Created:         result.Created,
		BaseSet:         result.BaseSet,
		Complete:        result.Complete,
		PersistResponse: newPersistResponse(result.PersistStatus),
	})
}
