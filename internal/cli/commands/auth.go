package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/forms"
	"github.com/bookify-dev/bookify/internal/guard"
	"github.com/bookify-dev/bookify/internal/session"
	"github.com/bookify-dev/bookify/internal/token"
)

// landingCommands is the command a route's page corresponds to
var landingCommands = map[string]string{
	guard.RouteAllBooks:       "bookify catalog",
	guard.RouteAdminDashboard: "bookify admin stats",
}

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Bookify backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set BOOKIFY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BOOKIFY_PASSWORD, will prompt if not provided)")

	return withRoute(cmd, guard.RouteLogin)
}

func runLogin(ctx context.Context, app *App, email, password string) error {
	// Environment credentials are useful for CI
	if email == "" {
		email = app.Env.Credentials.Email
	}
	if password == "" {
		password = app.Env.Credentials.Password
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or BOOKIFY_EMAIL env var)")
	}

	if password == "" {
		p, err := app.ReadPassword("Password: ")
		if err != nil {
			return err
		}
		password = p
	}

	if err := forms.Validate(forms.Login{Email: email, Password: password}); err != nil {
		return err
	}

	resp, err := app.Client.Login(ctx, email, password)
	if err != nil {
		// rejected credentials must not read as an expired session
		if client.Classify(err) == client.KindUnauthorized {
			return errors.New(client.Message(err, "Invalid credentials"))
		}
		return apiError(err, "Login failed")
	}

	role := session.Role(resp.Role)
	state, err := app.Client.SetSession(ctx, resp.Token, role)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	app.println("✓ Login successful!")
	app.printf("  User: %s\n", email)
	app.printf("  Role: %s\n", role)
	if state == client.StatePartial {
		app.println("  Your account id could not be resolved yet; it will be looked up when needed.")
	}
	if next, ok := landingCommands[guard.LandingRoute(role)]; ok {
		app.printf("\nNext: %s\n", next)
	}
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client.Logout(); err != nil {
				return err
			}
			app.println("Logged out.")
			return nil
		},
	}
	return withRoute(cmd, guard.RouteLogout)
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(app *App) *cobra.Command {
	var req client.RegisterRequest
	var admin bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				p, err := app.ReadPassword("Password: ")
				if err != nil {
					return err
				}
				req.Password = p
			}

			if err := forms.Validate(forms.Register{Name: req.Name, Email: req.Email, Password: req.Password}); err != nil {
				return err
			}

			register := app.Client.Register
			if admin {
				register = app.Client.RegisterAdmin
			}
			msg, err := register(cmd.Context(), req)
			if err != nil {
				return apiError(err, "Registration failed")
			}

			app.println(msg)
			app.println("Log in with: bookify login --email " + req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Register the administrator account")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return withRoute(cmd, guard.RouteRegister)
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Client.Session()
			if err != nil {
				return err
			}
			userID := s.UserID
			if userID == "" {
				userID = "(unresolved)"
			}
			app.printf("Email:   %s\n", s.Email)
			app.printf("Role:    %s\n", s.Role)
			app.printf("User ID: %s\n", userID)
			if claims, err := token.Decode(s.Token); err == nil && !claims.ExpiresAt.IsZero() {
				app.printf("Expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			app.printf("Backend: %s\n", app.Client.BaseURL())
			return nil
		},
	}
	return withRoute(cmd, guard.RouteProfile)
}

// NewPasswordCmd creates the password command group
func NewPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Recover a forgotten password",
	}

	forgot := &cobra.Command{
		Use:   "forgot <email>",
		Short: "Mail a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := app.Client.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return apiError(err, "Failed to send reset email")
			}
			app.println(msg)
			return nil
		},
	}

	var newPassword string
	reset := &cobra.Command{
		Use:   "reset <token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := newPassword
			if newPassword == "" {
				p, err := app.ReadPassword("New password: ")
				if err != nil {
					return err
				}
				if confirm, err = app.ReadPassword("Confirm password: "); err != nil {
					return err
				}
				newPassword = p
			}

			if err := forms.Validate(forms.ResetPassword{Password: newPassword, ConfirmPassword: confirm}); err != nil {
				return err
			}

			msg, err := app.Client.ResetPassword(cmd.Context(), args[0], newPassword)
			if err != nil {
				return apiError(err, "Failed to reset password")
			}
			app.println(msg)
			return nil
		},
	}
	reset.Flags().StringVar(&newPassword, "new-password", "", "New password (will prompt if not provided)")

	cmd.AddCommand(withRoute(forgot, guard.RouteLogin), withRoute(reset, guard.RouteLogin))
	return cmd
}
