package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/logger"
)

func init() {
	logger.Init("test")
}

func sqliteConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "folio.db")}
}

func TestRunMigrations(t *testing.T) {
	cfg := sqliteConfig(t)
	m, err := NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	require.NoError(t, m.RunMigrations())
	require.NoError(t, m.RunMigrations(), "second run is a no-op")

	for _, table := range []string{"transactions", "portfolio_cash", "portfolio_history", "benchmark_bases", "audit_logs"} {
		assert.True(t, m.DB().Migrator().HasTable(table), "missing table %s", table)
	}

	mig, err := NewMigrate(cfg)
	require.NoError(t, err)
	defer mig.Close()

	version, dirty, err := mig.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)

	require.NoError(t, mig.Down())
	_, _, err = mig.Version()
	assert.True(t, errors.Is(err, migrate.ErrNilVersion))
	assert.False(t, m.DB().Migrator().HasTable("transactions"))
}

func TestNewManagerUnsupportedDriver(t *testing.T) {
	_, err := NewManager(&Config{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestConfigURLs(t *testing.T) {
	sqlite := &Config{Driver: DriverSQLite, Path: "/tmp/folio.db"}
	assert.Equal(t, "/tmp/folio.db", sqlite.DSN())
	assert.Equal(t, "sqlite3:///tmp/folio.db", sqlite.MigrationURL())

	pg := &Config{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     "5432",
		User:     "folio",
		Password: "secret",
		DBName:   "folio",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=folio password=secret dbname=folio sslmode=disable", pg.DSN())
	assert.Equal(t, "postgres://folio:secret@db:5432/folio?sslmode=disable", pg.MigrationURL())
}
