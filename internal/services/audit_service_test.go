package services

import (
	"testing"

	"folio/internal/models"
	"folio/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db, testutil.TestPortfolioID)

		svc.Log("editor", "ADD_TRANSACTION", "transaction", "abc", "127.0.0.1", map[string]any{"ticker": "AAPL"})

		var entries []models.AuditLog
		testutil.AssertNoError(t, db.Find(&entries).Error)
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		e := entries[0]
		if e.PortfolioID != testutil.TestPortfolioID {
			t.Errorf("portfolio = %q, want %q", e.PortfolioID, testutil.TestPortfolioID)
		}
		if e.Actor != "editor" || e.Action != "ADD_TRANSACTION" || e.ResourceID != "abc" {
			t.Errorf("unexpected entry %+v", e)
		}
		if e.Changes != `{"ticker":"AAPL"}` {
			t.Errorf("unexpected changes %q", e.Changes)
		}
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Error("expected generated ID and timestamp")
		}
	})

	t.Run("no_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db, testutil.TestPortfolioID)
		svc.Log("pipeline", "RECORD_HISTORY", "history", "", "", nil)
		svc.Log("editor", "RESET_ALL", "portfolio", "", "", map[string]any{})

		var entries []models.AuditLog
		testutil.AssertNoError(t, db.Order("created_at").Find(&entries).Error)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if e.Changes != "" {
				t.Errorf("%s: expected empty changes, got %q", e.Action, e.Changes)
			}
		}
	})

	t.Run("portfolios_are_separate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		NewAuditService(db, "alpha").Log("editor", "LOGIN", "session", "", "", nil)
		NewAuditService(db, "beta").Log("editor", "LOGIN", "session", "", "", nil)

		var count int64
		testutil.AssertNoError(t, db.Model(&models.AuditLog{}).Where("portfolio_id = ?", "alpha").Count(&count).Error)
		if count != 1 {
			t.Errorf("expected 1 entry for alpha, got %d", count)
		}
	})
}
