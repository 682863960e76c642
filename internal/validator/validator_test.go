package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type tradeForm struct {
	Ticker string `binding:"required,ticker"`
	Date   string `binding:"omitempty,trade_date"`
	Sort   string `binding:"omitempty,sort_key"`
	Order  string `binding:"omitempty,sort_order"`
}

func TestRegister(t *testing.T) {
	Register()
	Register()

	tests := []struct {
		name  string
		form  tradeForm
		valid bool
	}{
		{name: "valid", form: tradeForm{Ticker: "aapl", Date: "2025-01-02", Sort: "pl_pct", Order: "DESC"}, valid: true},
		{name: "index ticker", form: tradeForm{Ticker: "^GSPC"}, valid: true},
		{name: "bad ticker", form: tradeForm{Ticker: "A B"}},
		{name: "ticker too long", form: tradeForm{Ticker: "ABCDEFGHIJKLMNOPQ"}},
		{name: "bad date", form: tradeForm{Ticker: "AAPL", Date: "2025-02-30"}},
		{name: "bad sort", form: tradeForm{Ticker: "AAPL", Sort: "price"}},
		{name: "bad order", form: tradeForm{Ticker: "AAPL", Order: "up"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.form)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
