package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAppConfig(), cfg)
}

func TestLoadConfig_ReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user:
  id: alice
  name: Alice
  role: trusted
tracker:
  min_width: 40
  max_width: 20
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.User.ID)
	assert.Equal(t, 40, cfg.Tracker.MinWidth)
	assert.Equal(t, 40, cfg.Tracker.MaxWidth)
	assert.Equal(t, DefaultAppConfig().Tracker.MaxHeight, cfg.Tracker.MaxHeight)

	u, err := cfg.ActingUser()
	require.NoError(t, err)
	assert.Equal(t, RoleTrusted, u.Role)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.User.Name = "Morgan"
	cfg.Tracker.MaxWidth = 80

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Morgan", got.User.Name)
	assert.Equal(t, 80, got.Tracker.MaxWidth)
}
