// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"folio/internal/ledger"
)

var once sync.Once

// Register registers all custom validators with the Gin binding engine.
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("ticker", validateTicker)
			_ = v.RegisterValidation("trade_date", validateTradeDate)
			_ = v.RegisterValidation("sort_key", validateSortKey)
			_ = v.RegisterValidation("sort_order", validateSortOrder)
		}
	})
}

// validateTicker accepts tickers in any case; they are upper-cased later.
func validateTicker(fl validator.FieldLevel) bool {
	return ledger.ValidTicker(ledger.NormalizeTicker(fl.Field().String()))
}

func validateTradeDate(fl validator.FieldLevel) bool {
	return ledger.ValidateDate(fl.Field().String()) == nil
}

func validateSortKey(fl validator.FieldLevel) bool {
	_, err := ledger.ParseSortKey(fl.Field().String())
	return err == nil
}

func validateSortOrder(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "", "asc", "desc":
		return true
	}
	return false
}
