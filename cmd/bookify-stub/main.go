package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/auth"
	"github.com/bookify-dev/bookify/internal/config"
	"github.com/bookify-dev/bookify/internal/logger"
	"github.com/bookify-dev/bookify/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	root := &cobra.Command{
		Use:           "bookify-stub",
		Short:         "Local stand-in for the Bookify backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSignPaymentCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var userIDClaim bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger.Init(cfg.Logging.Level, cfg.Logging.Format)
			log := logger.GetLogger()

			var opts []auth.IssuerOption
			if userIDClaim {
				opts = append(opts, auth.WithUserIDClaim())
			}

			srv, err := server.New(cfg.Stub, log, opts...)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			log.Info().Str("version", version).Str("addr", cfg.Stub.Addr).Msg("Starting Bookify stub...")
			return srv.Start()
		},
	}

	cmd.Flags().BoolVar(&userIDClaim, "user-id-claim", false, "Embed a userId claim in issued tokens")
	return cmd
}

// newSignPaymentCmd prints the signature a real gateway would hand the
// payment widget, so UPI checkouts can be completed by hand.
func newSignPaymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-payment <gateway-order-id> <payment-id>",
		Short: "Print the payment signature for a gateway order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), server.SignPayment(cfg.Stub.PaymentKeySecret, args[0], args[1]))
			return nil
		},
	}
}
