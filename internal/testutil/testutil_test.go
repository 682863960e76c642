package testutil_test

import (
	"testing"

	"folio/internal/errors"
	"folio/internal/models"
	"folio/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"transactions", "portfolio_cash", "portfolio_history", "benchmark_bases", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	testutil.CreateTestCash(t, first, "100")

	second := testutil.SetupTestDB(t)
	var count int64
	if err := second.Model(&models.CashBalance{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty database, found %d cash rows", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cash := testutil.CreateTestCash(t, db, "8500")
	testutil.AssertDecimal(t, "8500", cash.Amount)

	tx := testutil.CreateTestTransaction(t, db, "AAPL", "10", "150", "2025-01-02")
	if tx.ID == "" {
		t.Fatal("transaction should have an ID")
	}
	testutil.AssertDecimal(t, "150", tx.Price)

	var stored models.Transaction
	if err := db.First(&stored, "id = ?", tx.ID).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	testutil.AssertDecimal(t, "10", stored.Qty)

	point := testutil.CreateTestHistoryPoint(t, db, "2025-01-02", 1.5, 0.2)
	if point.ID == "" {
		t.Fatal("history point should have an ID")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrInsufficientFunds, "custom message")
	testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
