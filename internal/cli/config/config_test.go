package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Backends)
	assert.Nil(t, cfg.SelectedBackend())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookify", ConfigFileName)

	cfg := DefaultConfig()
	require.NoError(t, cfg.AddBackend("staging", "https://staging.bookify.test/api"))
	cfg.Selected = "staging"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "alias: staging")
	assert.Contains(t, string(data), "selected: staging")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Backends, 2)
	require.NotNil(t, loaded.SelectedBackend())
	assert.Equal(t, "https://staging.bookify.test/api", loaded.SelectedBackend().URL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("backends: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAddBackend(t *testing.T) {
	tests := []struct {
		name    string
		alias   string
		url     string
		wantErr bool
	}{
		{name: "valid", alias: "prod", url: "https://bookify.test/api"},
		{name: "empty alias", alias: " ", url: "https://bookify.test/api", wantErr: true},
		{name: "no scheme", alias: "prod", url: "bookify.test/api", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.AddBackend(tt.alias, tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cfg.Backends, 1)
		})
	}
}

func TestAddBackend_ReplacesExistingAlias(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.AddBackend("local", "http://127.0.0.1:9090/api"))

	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "http://127.0.0.1:9090/api", cfg.Backends[0].URL)
}

func TestGetBackendByURLOrAlias(t *testing.T) {
	cfg := &Config{Backends: []Backend{
		{Alias: "local", URL: "http://localhost:8080/api"},
		{Alias: "prod", URL: "https://bookify.test/api"},
	}}

	b, err := cfg.GetBackendByURLOrAlias("prod")
	require.NoError(t, err)
	assert.Equal(t, "https://bookify.test/api", b.URL)

	b, err = cfg.GetBackendByURLOrAlias("http://localhost:8080/api/")
	require.NoError(t, err)
	assert.Equal(t, "local", b.Alias)

	_, err = cfg.GetBackendByURLOrAlias("missing")
	assert.Error(t, err)
}

func TestSelectedBackend_StaleSelection(t *testing.T) {
	cfg := &Config{Selected: "gone", Backends: []Backend{{Alias: "local", URL: "http://localhost:8080/api"}}}
	assert.Nil(t, cfg.SelectedBackend())
}
