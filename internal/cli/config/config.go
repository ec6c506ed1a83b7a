// Package config reads and writes the CLI's backends file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "config.yaml"

// Backend is a named Bookify API endpoint
type Backend struct {
	Alias string `yaml:"alias"`
	URL   string `yaml:"url"`
}

// Config represents the CLI configuration file
type Config struct {
	Backends []Backend `yaml:"backends"`
	Selected string    `yaml:"selected,omitempty"` // alias of the backend in use
}

// DefaultConfig returns a configuration pointing at a local backend
func DefaultConfig() *Config {
	return &Config{
		Backends: []Backend{
			{Alias: "local", URL: "http://localhost:8080/api"},
		},
	}
}

// Load reads the configuration file. A missing file is an empty configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to a file, creating its directory
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetBackendByAlias returns a backend by its alias
func (c *Config) GetBackendByAlias(alias string) (*Backend, error) {
	for i := range c.Backends {
		if c.Backends[i].Alias == alias {
			return &c.Backends[i], nil
		}
	}
	return nil, fmt.Errorf("backend with alias '%s' not found", alias)
}

// GetBackendByURLOrAlias finds a backend by alias first, then by URL
func (c *Config) GetBackendByURLOrAlias(urlOrAlias string) (*Backend, error) {
	if b, err := c.GetBackendByAlias(urlOrAlias); err == nil {
		return b, nil
	}
	want := strings.TrimRight(urlOrAlias, "/")
	for i := range c.Backends {
		if strings.TrimRight(c.Backends[i].URL, "/") == want {
			return &c.Backends[i], nil
		}
	}
	return nil, fmt.Errorf("backend with URL or alias '%s' not found", urlOrAlias)
}

// SelectedBackend returns the selected backend, or nil when none is selected
// or the selection no longer exists
func (c *Config) SelectedBackend() *Backend {
	if c.Selected == "" {
		return nil
	}
	b, err := c.GetBackendByAlias(c.Selected)
	if err != nil {
		return nil
	}
	return b
}

// AddBackend adds or replaces the backend named alias
func (c *Config) AddBackend(alias, rawURL string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return fmt.Errorf("alias is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL '%s'", rawURL)
	}

	if b, err := c.GetBackendByAlias(alias); err == nil {
		b.URL = rawURL
		return nil
	}
	c.Backends = append(c.Backends, Backend{Alias: alias, URL: rawURL})
	return nil
}
