package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/config"
	"github.com/bookify-dev/bookify/internal/cli/serverselect"
	"github.com/bookify-dev/bookify/internal/cli/userconfig"
)

// NewUseCmd creates the use command
func NewUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use [alias-or-url]",
		Short: "Select the backend to use for commands",
		Long: `Select the backend to use for commands.

If no param is provided, an interactive prompt will be shown.
The session is not carried over: log in again after switching.

Examples:
  $ bookify use            # Interactive selection
  $ bookify use staging    # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runUse(app, urlOrAlias)
		},
	}
	return cmd
}

func runUse(app *App, urlOrAlias string) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Backends) == 0 {
		cfg = config.DefaultConfig()
	}

	var backend *config.Backend
	if urlOrAlias != "" {
		backend, err = cfg.GetBackendByURLOrAlias(urlOrAlias)
	} else {
		backend, err = serverselect.PromptBackendSelection(cfg)
	}
	if err != nil {
		return err
	}

	cfg.Selected = backend.Alias
	if err := userconfig.Save(cfg); err != nil {
		return fmt.Errorf("failed to save selected backend: %w", err)
	}

	app.printf("Selected backend: %s (%s)\n", backend.Alias, backend.URL)
	return nil
}

// NewBackendsCmd creates the backends command
func NewBackendsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List configured backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := userconfig.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if len(cfg.Backends) == 0 {
				app.println("No backends configured.")
				app.println("\nAdd one with: bookify backends add <alias> <url>")
				return nil
			}

			w := newTable(app.Out, "", "ALIAS", "URL")
			for _, b := range cfg.Backends {
				mark := ""
				if b.Alias == cfg.Selected {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", mark, b.Alias, b.URL)
			}
			w.Flush()
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <alias> <url>",
		Short: "Add or replace a backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := userconfig.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.AddBackend(args[0], args[1]); err != nil {
				return err
			}
			if err := userconfig.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			app.printf("Added backend %s (%s)\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(add)
	return cmd
}
