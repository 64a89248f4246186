package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STARBASE_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, time.Minute, cfg.Game.PayoutPeriod)
	require.Equal(t, 3, cfg.Game.LedgerRetries)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starbase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
transport:
  mode: stdio
game:
  tick_interval: 30s
  payout_period: 5m
  event_buffer: 8
`), 0o600))

	t.Setenv("STARBASE_CONFIG_PATH", path)
	t.Setenv("STARBASE_DB_PATH", "/tmp/game.db")
	t.Setenv("STARBASE_CITIZEN_PERIOD", "120000")
	t.Setenv("STARBASE_EVENT_BUFFER", "32")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "/tmp/game.db", cfg.DB.Path)
	require.Equal(t, 30*time.Second, cfg.Game.TickInterval)
	require.Equal(t, 5*time.Minute, cfg.Game.PayoutPeriod)
	require.Equal(t, 2*time.Minute, cfg.Game.CitizenPeriod)
	require.Equal(t, 32, cfg.Game.EventBuffer)
	require.Equal(t, 5*time.Minute, cfg.Game.ReconcileGrace)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("STARBASE_SERVER_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STARBASE_SERVER_PORT", "")
	t.Setenv("STARBASE_TRANSPORT_MODE", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("STARBASE_TRANSPORT_MODE", "")
	t.Setenv("STARBASE_TICK_INTERVAL", "soon")
	_, err = Load()
	require.Error(t, err)
}
