package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BenchmarkBase is the first benchmark price observed for a portfolio.
type BenchmarkBase struct {
	PortfolioID string          `gorm:"type:varchar(64);primaryKey" json:"portfolio_id"`
	Ticker      string          `gorm:"type:varchar(16);not null" json:"ticker"`
	Price       decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"price"`
	ObservedAt  time.Time       `gorm:"not null" json:"observed_at"`
}
