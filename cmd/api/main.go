package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/logger"
	"folio/internal/quote"
	"folio/internal/recorder"
	"folio/internal/repository"
	"folio/internal/server"
	"folio/internal/services"
)

// @title           Folio API
// @version         1.0
// @description     Folio tracks a single leveraged trading portfolio: transaction ledger, valuation against live quotes and daily performance against a benchmark.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.LogLevel != "" {
		if err := logger.SetLevel(appConfig.LogLevel); err != nil {
			return err
		}
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initialCash, err := appConfig.InitialCashDecimal()
	if err != nil {
		return err
	}
	db := dbManager.DB()
	store := repository.NewGormStorage(db, appConfig.PortfolioID)
	portfolio, err := services.LoadPortfolio(ctx, store, services.PortfolioOptions{
		InitialCash:     initialCash,
		BenchmarkTicker: appConfig.BenchmarkTicker,
	})
	if err != nil {
		return err
	}

	provider, err := quote.New(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create quote provider: %w", err)
	}

	// Initialize services
	perm := services.StaticPermission(appConfig.EditEnabled)
	portfolioService := services.NewPortfolioService(portfolio, provider, perm)
	historyService := services.NewHistoryService(portfolio, provider)

	router := server.NewRouter(server.Deps{
		Portfolio:      portfolioService,
		History:        historyService,
		Quotes:         services.NewQuoteService(provider),
		Auth:           services.NewAuthService(perm, appConfig.EditorPasswordHash),
		Audit:          services.NewAuditService(db, appConfig.PortfolioID),
		Edit:           perm,
		PipelineAPIKey: appConfig.PipelineAPIKey,
		ArenaMaxRows:   appConfig.ArenaMaxRows,
	})

	go recorder.New(historyService, appConfig.HistoryRecordInterval).Start(ctx)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Folio server on port %s (quotes: %s, editing: %v)",
			appConfig.Port, provider.Name(), appConfig.EditEnabled)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if portfolio.Dirty() {
		log.Warn("Unsaved changes detected, attempting a final sync")
		if err := portfolio.Flush(shutdownCtx); err != nil {
			log.Errorw("final sync failed", "error", err)
		}
	}
	return nil
}
