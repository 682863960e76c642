package database

import (
	"fmt"

	"folio/internal/config"
)

// Config holds database configuration
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
}

// NewConfig derives the database configuration from the application configuration.
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	}
}

// DSN returns the connection string for the gorm driver.
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrationURL returns the golang-migrate database URL.
func (c *Config) MigrationURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite3://" + c.Path
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}
