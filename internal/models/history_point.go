package models

import (
	"time"

	"gorm.io/gorm"

	"folio/internal/uuid"
)

// HistoryPoint is one day of portfolio vs benchmark performance.
// Port and SP are percentage returns.
type HistoryPoint struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PortfolioID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_portfolio_history_date,priority:1" json:"portfolio_id"`
	Date        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_portfolio_history_date,priority:2" json:"date"`
	Port        float64   `gorm:"not null" json:"port"`
	SP          float64   `gorm:"column:sp;not null" json:"sp"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName keeps the historical table name.
func (HistoryPoint) TableName() string { return "portfolio_history" }

// BeforeCreate hook generates a UUIDv7 for new records
func (h *HistoryPoint) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New()
	}
	return nil
}
