package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./casino.db", cfg.DatabasePath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 1000, cfg.StartBalance)
	assert.Equal(t, 100, cfg.DefaultBet)
	assert.Equal(t, 10, cfg.MinBet)
	assert.Equal(t, 10000, cfg.MaxBet)
	assert.Zero(t, cfg.ShuffleSeed)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Error(t, cfg.RequireBotToken())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MIN_BET", "25")
	t.Setenv("MAX_BET", "0")
	t.Setenv("SHUFFLE_SEED", "42")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SESSION_IDLE_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.MinBet)
	assert.Zero(t, cfg.MaxBet)
	assert.Equal(t, int64(42), cfg.ShuffleSeed)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 90*time.Second, cfg.SessionIdleTimeout)
	assert.NoError(t, cfg.RequireBotToken())
}

func TestLoadFromDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casino.env")
	require.NoError(t, os.WriteFile(path, []byte("START_BALANCE=500\nDATABASE_PATH=/tmp/x.db\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("START_BALANCE")
		os.Unsetenv("DATABASE_PATH")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.StartBalance)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{MinBet: 10, MaxBet: 100, DefaultBet: 10, StartBalance: 1000, LogFormat: "text"}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero min bet", mutate: func(c *Config) { c.MinBet = 0 }},
		{name: "max below min", mutate: func(c *Config) { c.MaxBet = 5 }},
		{name: "negative start balance", mutate: func(c *Config) { c.StartBalance = -1 }},
		{name: "default below min", mutate: func(c *Config) { c.DefaultBet = 1 }},
		{name: "default above max", mutate: func(c *Config) { c.DefaultBet = 150 }},
		{name: "negative idle timeout", mutate: func(c *Config) { c.SessionIdleTimeout = -time.Second }},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidNumber(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MIN_BET", "ten")

	_, err := Load()
	assert.Error(t, err)
}
