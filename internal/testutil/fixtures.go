package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"folio/internal/models"
)

// TestPortfolioID is the portfolio used by fixtures unless stated otherwise.
const TestPortfolioID = "test"

// TestEditorPassword is the plain-text password matching EditorPasswordHash.
const TestEditorPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// EditorPasswordHash returns a bcrypt hash of TestEditorPassword.
func EditorPasswordHash(t *testing.T) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestEditorPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

// CreateTestCash stores the cash row of the test portfolio.
func CreateTestCash(t *testing.T, db *gorm.DB, amount string) *models.CashBalance {
	t.Helper()

	row := &models.CashBalance{
		PortfolioID: TestPortfolioID,
		Amount:      decimal.RequireFromString(amount),
		UpdatedAt:   time.Now(),
	}
	if err := db.Save(row).Error; err != nil {
		t.Fatalf("failed to create test cash: %v", err)
	}
	return row
}

// CreateTestTransaction stores a trade in the test portfolio. It does not
// touch the cash row.
func CreateTestTransaction(t *testing.T, db *gorm.DB, ticker, qty, price, date string) *models.Transaction {
	t.Helper()

	row := &models.Transaction{
		PortfolioID: TestPortfolioID,
		Seq:         nextID(),
		Ticker:      ticker,
		Qty:         decimal.RequireFromString(qty),
		Price:       decimal.RequireFromString(price),
		Leverage:    1,
		Note:        fmt.Sprintf("fixture %d", counter.Load()),
		Date:        date,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return row
}

// CreateTestHistoryPoint stores one history point in the test portfolio.
func CreateTestHistoryPoint(t *testing.T, db *gorm.DB, date string, port, sp float64) *models.HistoryPoint {
	t.Helper()

	row := &models.HistoryPoint{
		PortfolioID: TestPortfolioID,
		Date:        date,
		Port:        port,
		SP:          sp,
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test history point: %v", err)
	}
	return row
}
