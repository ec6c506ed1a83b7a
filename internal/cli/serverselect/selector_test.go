package serverselect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookify-dev/bookify/internal/cli/config"
	appconfig "github.com/bookify-dev/bookify/internal/config"
)

func TestResolveBaseURL_Precedence(t *testing.T) {
	cfg := &config.Config{
		Selected: "prod",
		Backends: []config.Backend{{Alias: "prod", URL: "https://bookify.test/api"}},
	}

	tests := []struct {
		name       string
		flag, env  string
		cfg        *config.Config
		wantURL    string
		wantSource Source
	}{
		{"flag wins", "http://flag/api", "http://env/api", cfg, "http://flag/api", SourceFlag},
		{"env over selection", "", "http://env/api", cfg, "http://env/api", SourceEnv},
		{"selected backend", "", "", cfg, "https://bookify.test/api", SourceSelected},
		{"default", "", "", &config.Config{}, appconfig.DefaultAPIURL, SourceDefault},
		{"nil config", "", "", nil, appconfig.DefaultAPIURL, SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, source := ResolveBaseURL(tt.flag, tt.env, tt.cfg)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestPromptBackendSelection_NoBackends(t *testing.T) {
	_, err := PromptBackendSelection(&config.Config{})
	assert.Error(t, err)
}
