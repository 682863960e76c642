package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupArenaRouter(handler *ArenaHandler) *gin.Engine {
	r := gin.New()
	r.POST("/arena/run", handler.Run)
	return r
}

func TestArenaHandler_Run(t *testing.T) {
	t.Run("returns all ticks under the cap", func(t *testing.T) {
		r := setupArenaRouter(NewArenaHandler(300))

		rec := doRequest(r, "POST", "/arena/run", `{"start":100,"ticks":5,"seed":42}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		ticks := result["ticks"].([]interface{})
		if len(ticks) != 5 {
			t.Fatalf("expected 5 ticks, got %d", len(ticks))
		}
		if result["truncated"] != false {
			t.Errorf("expected truncated false, got %v", result["truncated"])
		}
		last := ticks[4].(map[string]interface{})
		if result["last"] != last["price"] {
			t.Errorf("expected last %v, got %v", last["price"], result["last"])
		}
	})

	t.Run("keeps only the most recent rows", func(t *testing.T) {
		r := setupArenaRouter(NewArenaHandler(10))

		rec := doRequest(r, "POST", "/arena/run", `{"ticks":25,"seed":7}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		ticks := result["ticks"].([]interface{})
		if len(ticks) != 10 {
			t.Fatalf("expected 10 ticks, got %d", len(ticks))
		}
		first := ticks[0].(map[string]interface{})
		if first["index"] != float64(16) {
			t.Errorf("expected first retained index 16, got %v", first["index"])
		}
		if result["truncated"] != true {
			t.Errorf("expected truncated true, got %v", result["truncated"])
		}
	})

	t.Run("same seed gives the same walk", func(t *testing.T) {
		r := setupArenaRouter(NewArenaHandler(0))

		a := doRequest(r, "POST", "/arena/run", `{"ticks":20,"seed":99}`)
		b := doRequest(r, "POST", "/arena/run", `{"ticks":20,"seed":99}`)

		if a.Body.String() != b.Body.String() {
			t.Error("expected identical runs for the same seed")
		}
	})

	t.Run("returns 400 on zero ticks", func(t *testing.T) {
		r := setupArenaRouter(NewArenaHandler(300))

		rec := doRequest(r, "POST", "/arena/run", `{"ticks":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on negative start", func(t *testing.T) {
		r := setupArenaRouter(NewArenaHandler(300))

		rec := doRequest(r, "POST", "/arena/run", `{"start":-5,"ticks":3}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
