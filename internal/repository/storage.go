// Package repository persists the ledger, the cash balance and the equity
// history through gorm. Every multi-row change runs in a single database
// transaction so storage never holds half of a mutation.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"folio/internal/ledger"
	"folio/internal/models"
)

// State is everything stored for one portfolio.
type State struct {
	// HasCash is false when no cash row exists yet (fresh portfolio).
	HasCash         bool
	Cash            decimal.Decimal
	Transactions    []ledger.Transaction
	History         []ledger.HistoryPoint
	BenchmarkTicker string
	// BenchmarkBase is zero when no benchmark price has been observed.
	BenchmarkBase decimal.Decimal
}

// StorageClient is the persistence collaborator of the portfolio services.
type StorageClient interface {
	Load(ctx context.Context) (State, error)
	AppendTransaction(ctx context.Context, tx ledger.Transaction, cash decimal.Decimal) error
	RemoveTransactions(ctx context.Context, ids []string, cash decimal.Decimal) error
	ClearLedger(ctx context.Context, cash decimal.Decimal) error
	UpsertHistoryPoint(ctx context.Context, p ledger.HistoryPoint) error
	SaveBenchmarkBase(ctx context.Context, ticker string, price decimal.Decimal) error
	ClearHistory(ctx context.Context) error
	ReplaceAll(ctx context.Context, state State) error
}

// gormStorage stores rows of a single portfolio.
type gormStorage struct {
	db          *gorm.DB
	portfolioID string
	now         func() time.Time
}

// NewGormStorage creates a StorageClient scoped to portfolioID.
func NewGormStorage(db *gorm.DB, portfolioID string) StorageClient {
	return &gormStorage{db: db, portfolioID: portfolioID, now: time.Now}
}

func (s *gormStorage) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("portfolio_id = ?", s.portfolioID)
}

// Load reads the full state. Transactions come back in log order and
// history points sorted by date.
func (s *gormStorage) Load(ctx context.Context) (State, error) {
	var state State

	var cash models.CashBalance
	err := s.scoped(ctx).First(&cash).Error
	switch {
	case err == nil:
		state.HasCash = true
		state.Cash = cash.Amount
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return State{}, fmt.Errorf("load cash: %w", err)
	}

	var txs []models.Transaction
	if err := s.scoped(ctx).Order("seq ASC").Find(&txs).Error; err != nil {
		return State{}, fmt.Errorf("load transactions: %w", err)
	}
	state.Transactions = make([]ledger.Transaction, len(txs))
	for i := range txs {
		state.Transactions[i] = toLedgerTransaction(&txs[i])
	}

	var points []models.HistoryPoint
	if err := s.scoped(ctx).Order("date ASC").Find(&points).Error; err != nil {
		return State{}, fmt.Errorf("load history: %w", err)
	}
	state.History = make([]ledger.HistoryPoint, len(points))
	for i := range points {
		state.History[i] = ledger.HistoryPoint{
			Date:               points[i].Date,
			PortfolioReturnPct: points[i].Port,
			BenchmarkReturnPct: points[i].SP,
		}
	}

	var base models.BenchmarkBase
	err = s.scoped(ctx).First(&base).Error
	switch {
	case err == nil:
		state.BenchmarkTicker = base.Ticker
		state.BenchmarkBase = base.Price
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return State{}, fmt.Errorf("load benchmark base: %w", err)
	}

	return state, nil
}

// AppendTransaction inserts tx at the end of the log and stores the new cash.
func (s *gormStorage) AppendTransaction(ctx context.Context, tx ledger.Transaction, cash decimal.Decimal) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var last int64
		if err := db.Model(&models.Transaction{}).
			Where("portfolio_id = ?", s.portfolioID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		row := s.toModel(tx, last+1)
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		return s.saveCash(db, cash)
	})
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// RemoveTransactions deletes the given ids and stores the new cash.
func (s *gormStorage) RemoveTransactions(ctx context.Context, ids []string, cash decimal.Decimal) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if len(ids) > 0 {
			if err := db.Where("portfolio_id = ? AND id IN ?", s.portfolioID, ids).
				Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
		}
		return s.saveCash(db, cash)
	})
	if err != nil {
		return fmt.Errorf("remove transactions: %w", err)
	}
	return nil
}

// ClearLedger deletes every transaction and stores cash.
func (s *gormStorage) ClearLedger(ctx context.Context, cash decimal.Decimal) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Where("portfolio_id = ?", s.portfolioID).
			Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return s.saveCash(db, cash)
	})
	if err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

// UpsertHistoryPoint writes the point for p.Date, replacing an existing one.
func (s *gormStorage) UpsertHistoryPoint(ctx context.Context, p ledger.HistoryPoint) error {
	row := models.HistoryPoint{
		PortfolioID: s.portfolioID,
		Date:        p.Date,
		Port:        p.PortfolioReturnPct,
		SP:          p.BenchmarkReturnPct,
		UpdatedAt:   s.now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"port", "sp", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert history point %s: %w", p.Date, err)
	}
	return nil
}

// SaveBenchmarkBase stores the base price. An existing base is left as is.
func (s *gormStorage) SaveBenchmarkBase(ctx context.Context, ticker string, price decimal.Decimal) error {
	row := models.BenchmarkBase{
		PortfolioID: s.portfolioID,
		Ticker:      ticker,
		Price:       price,
		ObservedAt:  s.now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save benchmark base: %w", err)
	}
	return nil
}

// ClearHistory deletes all history points and the benchmark base.
func (s *gormStorage) ClearHistory(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return s.clearHistory(db)
	})
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// ReplaceAll rewrites every row of the portfolio from state.
func (s *gormStorage) ReplaceAll(ctx context.Context, state State) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Where("portfolio_id = ?", s.portfolioID).
			Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if len(state.Transactions) > 0 {
			rows := make([]models.Transaction, len(state.Transactions))
			for i, tx := range state.Transactions {
				rows[i] = s.toModel(tx, int64(i+1))
			}
			if err := db.Create(&rows).Error; err != nil {
				return err
			}
		}
		if err := s.saveCash(db, state.Cash); err != nil {
			return err
		}

		if err := s.clearHistory(db); err != nil {
			return err
		}
		if len(state.History) > 0 {
			now := s.now()
			points := make([]models.HistoryPoint, len(state.History))
			for i, p := range state.History {
				points[i] = models.HistoryPoint{
					PortfolioID: s.portfolioID,
					Date:        p.Date,
					Port:        p.PortfolioReturnPct,
					SP:          p.BenchmarkReturnPct,
					UpdatedAt:   now,
				}
			}
			if err := db.Create(&points).Error; err != nil {
				return err
			}
		}
		if state.BenchmarkBase.IsPositive() {
			return db.Create(&models.BenchmarkBase{
				PortfolioID: s.portfolioID,
				Ticker:      state.BenchmarkTicker,
				Price:       state.BenchmarkBase,
				ObservedAt:  s.now(),
			}).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (s *gormStorage) saveCash(db *gorm.DB, cash decimal.Decimal) error {
	row := models.CashBalance{PortfolioID: s.portfolioID, Amount: cash, UpdatedAt: s.now()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

func (s *gormStorage) clearHistory(db *gorm.DB) error {
	if err := db.Where("portfolio_id = ?", s.portfolioID).
		Delete(&models.HistoryPoint{}).Error; err != nil {
		return err
	}
	return db.Where("portfolio_id = ?", s.portfolioID).
		Delete(&models.BenchmarkBase{}).Error
}

func (s *gormStorage) toModel(tx ledger.Transaction, seq int64) models.Transaction {
	return models.Transaction{
		ID:          tx.ID,
		PortfolioID: s.portfolioID,
		Seq:         seq,
		Ticker:      tx.Ticker,
		Qty:         tx.Qty,
		Price:       tx.Price,
		Leverage:    tx.Leverage,
		Note:        tx.Note,
		Date:        tx.Date,
		CreatedAt:   s.now(),
	}
}

func toLedgerTransaction(m *models.Transaction) ledger.Transaction {
	return ledger.Transaction{
		ID:       m.ID,
		Ticker:   m.Ticker,
		Qty:      m.Qty,
		Price:    m.Price,
		Leverage: m.Leverage,
		Note:     m.Note,
		Date:     m.Date,
	}
}
