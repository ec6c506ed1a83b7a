package userconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/cli/config"
)

func TestGetConfigPath_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(PathEnv, path)

	got, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestGetConfigPath_Default(t *testing.T) {
	home := t.TempDir()
	t.Setenv(PathEnv, "")
	t.Setenv("HOME", home)

	got, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "bookify", config.ConfigFileName), got)
}

func TestSelectedBackend_RoundTrip(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "config.yaml"))

	selected, err := GetSelectedBackend()
	require.NoError(t, err)
	assert.Empty(t, selected)

	cfg := config.DefaultConfig()
	require.NoError(t, Save(cfg))
	require.NoError(t, SetSelectedBackend("local"))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", loaded.Selected)
	require.Len(t, loaded.Backends, 1)
}
