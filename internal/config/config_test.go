package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Game.HandCapacity)
	assert.Equal(t, 7, cfg.Game.FieldCapacity)
	assert.Equal(t, 30, cfg.Game.HeroHealth)
	assert.Equal(t, 3, cfg.Game.FirstPlayerHand)
	assert.Equal(t, 4, cfg.Game.SecondPlayerHand)
	assert.Equal(t, CardSourceCSV, cfg.Cards.Source)
	assert.Equal(t, 30*time.Second, cfg.Server.WebSocket.PingPeriod)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  format: json
game:
  hand_capacity: 8
cards:
  source: postgres
database:
  url: postgres://localhost/cards
  max_conns: 2
server:
  websocket:
    address: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.Game.HandCapacity)
	assert.Equal(t, 7, cfg.Game.FieldCapacity)
	assert.Equal(t, CardSourcePostgres, cfg.Cards.Source)
	assert.Equal(t, "postgres://localhost/cards", cfg.Database.URL)
	assert.Equal(t, int32(2), cfg.Database.MaxConns)
	assert.Equal(t, ":9090", cfg.Server.WebSocket.Address)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Game.HandCapacity)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HSPP_LOGGING_LEVEL", "warn")
	t.Setenv("HSPP_GAME_HAND_CAPACITY", "12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 12, cfg.Game.HandCapacity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero hand", func(c *Config) { c.Game.HandCapacity = 0 }},
		{"zero field", func(c *Config) { c.Game.FieldCapacity = 0 }},
		{"zero health", func(c *Config) { c.Game.HeroHealth = 0 }},
		{"negative opening hand", func(c *Config) { c.Game.SecondPlayerHand = -1 }},
		{"unknown source", func(c *Config) { c.Cards.Source = "s3" }},
		{"csv without path", func(c *Config) { c.Cards.CSVPath = "" }},
		{"postgres without url", func(c *Config) {
			c.Cards.Source = CardSourcePostgres
			c.Database.URL = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
