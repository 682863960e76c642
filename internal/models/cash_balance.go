package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBalance is the single cash row of a portfolio.
type CashBalance struct {
	PortfolioID string          `gorm:"type:varchar(64);primaryKey" json:"portfolio_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"amount"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName keeps the historical table name.
func (CashBalance) TableName() string { return "portfolio_cash" }
