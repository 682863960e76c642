package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "SPY", cfg.BenchmarkTicker)
	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, time.Hour, cfg.HistoryRecordInterval)
	assert.False(t, cfg.EditEnabled)

	cash, err := cfg.InitialCashDecimal()
	require.NoError(t, err)
	assert.Equal(t, "10000", cash.String())
	assert.Same(t, cfg, Get())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("EDIT_ENABLED", "true")
	t.Setenv("INITIAL_CASH", "2500.50")
	t.Setenv("HISTORY_RECORD_INTERVAL", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.EditEnabled)
	assert.Zero(t, cfg.HistoryRecordInterval)
	cash, err := cfg.InitialCashDecimal()
	require.NoError(t, err)
	assert.Equal(t, "2500.5", cash.String())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad cash", key: "INITIAL_CASH", value: "lots"},
		{name: "zero cash", key: "INITIAL_CASH", value: "0"},
		{name: "bad driver", key: "DB_DRIVER", value: "mysql"},
		{name: "bad provider", key: "QUOTE_PROVIDER", value: "bloomberg"},
		{name: "bad duration", key: "QUOTE_TIMEOUT", value: "soon"},
		{name: "negative retries", key: "QUOTE_RETRY_COUNT", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
