// Package serverselect decides which backend the CLI talks to.
package serverselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/bookify-dev/bookify/internal/cli/config"
	appconfig "github.com/bookify-dev/bookify/internal/config"
)

// Source tells where a resolved base URL came from
type Source string

const (
	SourceFlag     Source = "flag"
	SourceEnv      Source = "env"
	SourceSelected Source = "selected backend"
	SourceDefault  Source = "default"
)

// ResolveBaseURL determines the API base URL based on the following priority:
// 1. The --api-url flag
// 2. BOOKIFY_API_URL
// 3. The backend selected with `bookify use`
// 4. The default local backend
func ResolveBaseURL(flagURL, envURL string, userConfig *config.Config) (string, Source) {
	if flagURL != "" {
		return flagURL, SourceFlag
	}
	if envURL != "" {
		return envURL, SourceEnv
	}
	if userConfig != nil {
		if b := userConfig.SelectedBackend(); b != nil && b.URL != "" {
			return b.URL, SourceSelected
		}
	}
	return appconfig.DefaultAPIURL, SourceDefault
}

// PromptBackendSelection shows an interactive prompt for the user to select a backend
func PromptBackendSelection(cfg *config.Config) (*config.Backend, error) {
	if len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("no backends configured, add one with 'bookify backends add <alias> <url>'")
	}

	type backendOption struct {
		Label   string
		Backend *config.Backend
	}

	options := make([]backendOption, len(cfg.Backends))
	cursor := 0
	for i := range cfg.Backends {
		b := &cfg.Backends[i]
		options[i] = backendOption{
			Label:   fmt.Sprintf("%s (%s)", b.Alias, b.URL),
			Backend: b,
		}
		if b.Alias == cfg.Selected {
			cursor = i
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a backend",
		Items:     options,
		Templates: templates,
		Size:      10,
		CursorPos: cursor,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection cancelled: %w", err)
	}

	return options[index].Backend, nil
}
