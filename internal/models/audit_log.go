package models

import (
	"time"

	"gorm.io/gorm"

	"folio/internal/uuid"
)

// AuditLog records a ledger mutation or login attempt. Entries are never
// updated or deleted, not even by a full reset.
type AuditLog struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PortfolioID  string    `gorm:"type:varchar(64);not null;index:idx_audit_logs_portfolio_created,priority:1" json:"portfolio_id"`
	CreatedAt    time.Time `gorm:"not null;index:idx_audit_logs_portfolio_created,priority:2" json:"created_at"`
	Actor        string    `gorm:"type:varchar(64);not null" json:"actor"`
	Action       string    `gorm:"type:varchar(64);not null" json:"action"`
	ResourceType string    `gorm:"type:varchar(64);not null" json:"resource_type"`
	ResourceID   string    `gorm:"type:varchar(64);not null;default:''" json:"resource_id"`
	IPAddress    string    `gorm:"type:varchar(64);not null;default:''" json:"ip_address"`
	Changes      string    `gorm:"type:text;not null;default:''" json:"changes,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}
