// Package cli wires the bookify command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/commands"
	"github.com/bookify-dev/bookify/internal/config"
	"github.com/bookify-dev/bookify/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree around app. Before any command runs,
// app is initialised and the guard checks the command's route.
func NewRootCmd(app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookify",
		Short: "Bookify - the online bookstore from your terminal",
		Long: `Bookify CLI - Browse books, manage your cart and orders, and run the store.

Log in once with 'bookify login'; the session is kept in your OS keyring
(or the store chosen with BOOKIFY_SESSION_BACKEND) between commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			if err := app.Init(); err != nil {
				return err
			}
			return app.CheckRoute(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides BOOKIFY_API_URL and 'bookify use')")
	rootCmd.PersistentFlags().BoolVar(&app.Plain, "no-color", false, "Print statuses without colour")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bookify version %s\n", version)
		},
	})

	rootCmd.AddCommand(
		commands.NewLoginCmd(app),
		commands.NewLogoutCmd(app),
		commands.NewRegisterCmd(app),
		commands.NewWhoamiCmd(app),
		commands.NewPasswordCmd(app),
		commands.NewProfileCmd(app),
		commands.NewCatalogCmd(app),
		commands.NewBooksCmd(app),
		commands.NewAuthorsCmd(app),
		commands.NewCartCmd(app),
		commands.NewWishlistCmd(app),
		commands.NewOrdersCmd(app),
		commands.NewCheckoutCmd(app),
		commands.NewReturnsCmd(app),
		commands.NewAdminCmd(app),
		commands.NewUseCmd(app),
		commands.NewBackendsCmd(app),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	app := &commands.App{Env: cfg, Logger: logger.GetLogger()}
	if err := app.HandleError(NewRootCmd(app).Execute()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
