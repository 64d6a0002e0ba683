package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the test and restores them afterwards, so values
// loaded from a .env file do not leak into other tests.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.01, cfg.Market.BaseFeeRatio)
	assert.Equal(t, uint64(100), cfg.Market.OrderLifetime)
	assert.Equal(t, uint64(5000), cfg.Economy.Period)
	assert.Equal(t, 100, cfg.Economy.HistorySize)
	assert.Empty(t, cfg.Storage.JournalPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MARKET_TRADE_FEE_RATIO", "0.05")
	t.Setenv("SIM_TURNS", "250")
	t.Setenv("SIM_TURN_INTERVAL_MS", "20")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SIM_WORKERS", "not-a-number")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Market.TradeFeeRatio)
	assert.Equal(t, uint64(250), cfg.Sim.Turns)
	assert.Equal(t, 20*time.Millisecond, cfg.Sim.TurnInterval)
	assert.True(t, cfg.Log.Pretty)
	// Unparseable values keep the default.
	assert.Equal(t, 4, cfg.Sim.Workers)
}

func TestLoadFromEnv_DotEnv(t *testing.T) {
	unsetEnv(t, "ECONOMY_PERIOD", "JOURNAL_PATH", "SIM_SEED")
	t.Setenv("SIM_SEED", "99")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ECONOMY_PERIOD=300\nJOURNAL_PATH=/var/lib/vanir\nSIM_SEED=7\n"), 0o644))

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(300), cfg.Economy.Period)
	assert.Equal(t, "/var/lib/vanir", cfg.Storage.JournalPath)
	// The environment wins over the file.
	assert.Equal(t, int64(99), cfg.Sim.Seed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative fee", func(c *Config) { c.Market.BaseFeeRatio = -0.1 }},
		{"zero lifetime", func(c *Config) { c.Market.OrderLifetime = 0 }},
		{"zero history", func(c *Config) { c.Economy.HistorySize = 0 }},
		{"zero index interval", func(c *Config) { c.IndexInterval = 0 }},
		{"no workers", func(c *Config) { c.Sim.Workers = 0 }},
		{"no players", func(c *Config) { c.Sim.Players = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("rejected by loader", func(t *testing.T) {
		t.Setenv("MARKET_ORDER_LIFETIME", "0")
		_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
}
