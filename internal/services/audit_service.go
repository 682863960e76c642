package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"folio/internal/logger"
	"folio/internal/models"
)

// auditService writes audit entries for one portfolio.
type auditService struct {
	db          *gorm.DB
	portfolioID string
}

// NewAuditService creates a new AuditServicer scoped to portfolioID.
func NewAuditService(db *gorm.DB, portfolioID string) AuditServicer {
	return &auditService{db: db, portfolioID: portfolioID}
}

// Log records an audit event. A failed write is logged and otherwise
// ignored; the audited operation has already happened.
func (s *auditService) Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	var changesJSON string
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit changes", "error", err, "action", action)
			data = []byte("{}")
		}
		changesJSON = string(data)
	}

	entry := &models.AuditLog{
		PortfolioID:  s.portfolioID,
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to write audit entry",
			"error", err,
			"portfolio", s.portfolioID,
			"actor", actor,
			"action", action,
		)
	}
}
