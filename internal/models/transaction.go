package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"folio/internal/uuid"
)

// Transaction is a persisted ledger trade. Rows are only ever inserted, or
// hard-deleted by a reset, so there are no update or soft-delete columns.
type Transaction struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	PortfolioID string          `gorm:"type:varchar(64);not null;index:idx_transactions_portfolio_seq,priority:1" json:"portfolio_id"`
	Seq         int64           `gorm:"not null;index:idx_transactions_portfolio_seq,priority:2" json:"seq"`
	Ticker      string          `gorm:"type:varchar(16);not null" json:"ticker"`
	Qty         decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"qty"`
	Price       decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"price"`
	Leverage    int             `gorm:"not null;default:1" json:"leverage"`
	Note        string          `gorm:"type:text;not null;default:''" json:"note"`
	Date        string          `gorm:"type:varchar(10);not null" json:"date"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	return nil
}
