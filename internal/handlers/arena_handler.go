package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"folio/internal/arena"
	apperrors "folio/internal/errors"
)

// ArenaHandler runs simulated price walks.
type ArenaHandler struct {
	maxRows int
}

// NewArenaHandler creates a new ArenaHandler keeping at most maxRows ticks.
func NewArenaHandler(maxRows int) *ArenaHandler {
	if maxRows <= 0 {
		maxRows = arena.DefaultMaxRows
	}
	return &ArenaHandler{maxRows: maxRows}
}

// ArenaRequest configures a simulated run.
type ArenaRequest struct {
	Start float64 `json:"start" binding:"omitempty,gt=0"`
	Ticks int     `json:"ticks" binding:"required,min=1,max=100000"`
	Seed  int64   `json:"seed"`
}

// ArenaTick is one simulated step.
type ArenaTick struct {
	Index int     `json:"index"`
	Delta float64 `json:"delta"`
	Price float64 `json:"price"`
}

// ArenaResponse holds the retained ticks, oldest first.
type ArenaResponse struct {
	Ticks     []ArenaTick `json:"ticks"`
	Last      float64     `json:"last"`
	Truncated bool        `json:"truncated"`
}

// Run simulates a random price walk
// @Summary     Run the trading arena
// @Description Simulate a random walk; only the most recent rows are kept
// @Tags        arena
// @Accept      json
// @Produce     json
// @Param       request body ArenaRequest true "Walk parameters"
// @Success     200 {object} ArenaResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /arena/run [post]
func (h *ArenaHandler) Run(c *gin.Context) {
	var req ArenaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	start := decimal.NewFromInt(100)
	if req.Start > 0 {
		start = decimal.NewFromFloat(req.Start)
	}

	ticks, err := arena.Run(arena.Options{Start: start, Ticks: req.Ticks, Seed: req.Seed, MaxRows: h.maxRows})
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp := ArenaResponse{
		Ticks:     make([]ArenaTick, len(ticks)),
		Last:      num(start),
		Truncated: req.Ticks > len(ticks),
	}
	for i, t := range ticks {
		resp.Ticks[i] = ArenaTick{Index: t.Index, Delta: num(t.Delta), Price: num(t.Price)}
	}
	if len(ticks) > 0 {
		resp.Last = resp.Ticks[len(ticks)-1].Price
	}
	c.JSON(http.StatusOK, resp)
}
