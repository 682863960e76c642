package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	// Server
	Env      string `envconfig:"ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL"`

	// Database
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"folio"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"folio"`
	DBName     string `envconfig:"DB_NAME" default:"folio"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBPath     string `envconfig:"DB_PATH" default:"folio.db"`

	// Auth
	JWTSecret          string        `envconfig:"JWT_SECRET" default:"fallback-secret-key-for-dev-only"`
	JWTExpirationDur   time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`
	EditEnabled        bool          `envconfig:"EDIT_ENABLED" default:"false"`
	EditorPasswordHash string        `envconfig:"EDITOR_PASSWORD_HASH"`
	PipelineAPIKey     string        `envconfig:"PIPELINE_API_KEY"`

	// Portfolio
	PortfolioID     string `envconfig:"PORTFOLIO_ID" default:"default"`
	InitialCash     string `envconfig:"INITIAL_CASH" default:"10000"`
	BenchmarkTicker string `envconfig:"BENCHMARK_TICKER" default:"SPY"`
	DisplayCurrency string `envconfig:"DISPLAY_CURRENCY" default:"EUR"`

	// Quotes
	QuoteProvider   string        `envconfig:"QUOTE_PROVIDER" default:"chain"`
	FinnhubAPIKey   string        `envconfig:"FINNHUB_API_KEY"`
	FinnhubBaseURL  string        `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`
	YahooBaseURL    string        `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
	QuoteTimeout    time.Duration `envconfig:"QUOTE_TIMEOUT" default:"10s"`
	QuoteRetryCount int           `envconfig:"QUOTE_RETRY_COUNT" default:"2"`

	// Background jobs
	HistoryRecordInterval time.Duration `envconfig:"HISTORY_RECORD_INTERVAL" default:"1h"`

	// Arena
	ArenaMaxRows int `envconfig:"ARENA_MAX_ROWS" default:"300"`
}

var appConfig *Config

// Load loads configuration from the environment, reading a .env file first
// when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return &cfg, nil
}

// Validate checks values envconfig cannot check by type alone.
func (c *Config) Validate() error {
	cash, err := c.InitialCashDecimal()
	if err != nil {
		return err
	}
	if !cash.IsPositive() {
		return fmt.Errorf("INITIAL_CASH must be greater than zero")
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", c.DBDriver)
	}

	switch c.QuoteProvider {
	case "finnhub", "yahoo", "chain", "sim", "static":
	default:
		return fmt.Errorf("unsupported QUOTE_PROVIDER %q", c.QuoteProvider)
	}

	if c.QuoteRetryCount < 0 {
		return fmt.Errorf("QUOTE_RETRY_COUNT must not be negative")
	}
	if c.ArenaMaxRows <= 0 {
		return fmt.Errorf("ARENA_MAX_ROWS must be greater than zero")
	}
	return nil
}

// InitialCashDecimal parses INITIAL_CASH.
func (c *Config) InitialCashDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.InitialCash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid INITIAL_CASH %q: %w", c.InitialCash, err)
	}
	return d, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the global configuration. Intended for tests and for
// commands that build their configuration from flags.
func Set(cfg *Config) {
	appConfig = cfg
}
