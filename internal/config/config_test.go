package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 60*time.Second, cfg.Server.SelectionTimeout)
	require.Equal(t, 300*time.Millisecond, cfg.Server.AIPacing)
	require.Empty(t, cfg.Server.ReplayDir)
	require.Equal(t, 7, cfg.Game.HandLimit)
	require.Equal(t, 7, cfg.Game.CountersPerTurn)
	require.Equal(t, 7, cfg.Game.OpeningHand)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadToleratesMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  address: ":9090"
  selection_timeout: 15s
  replay_dir: /tmp/replays
game:
  hand_limit: 9
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, 15*time.Second, cfg.Server.SelectionTimeout)
	require.Equal(t, "/tmp/replays", cfg.Server.ReplayDir)
	require.Equal(t, 9, cfg.Game.HandLimit)
	require.Equal(t, "json", cfg.Logging.Format)
	// Untouched keys keep their defaults.
	require.Equal(t, 7, cfg.Game.CountersPerTurn)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err, "unknown log format must be rejected")

	require.NoError(t, os.WriteFile(path, []byte("game:\n  hand_limit: 0\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err, "zero hand limit must be rejected")

	require.NoError(t, os.WriteFile(path, []byte("server:\n  selection_timeout: -1s\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err, "negative selection timeout must be rejected")
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("FRONTIER_SERVER_ADDRESS", ":7777")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":7777", cfg.Server.Address)
}
