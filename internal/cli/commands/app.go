package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bookify-dev/bookify/internal/checkout"
	"github.com/bookify-dev/bookify/internal/cli/client"
	"github.com/bookify-dev/bookify/internal/cli/serverselect"
	"github.com/bookify-dev/bookify/internal/cli/userconfig"
	"github.com/bookify-dev/bookify/internal/config"
	"github.com/bookify-dev/bookify/internal/guard"
	"github.com/bookify-dev/bookify/internal/session"
	"github.com/bookify-dev/bookify/internal/token"
)

// routeAnnotation is the cobra annotation naming the route a command opens
const routeAnnotation = "route"

// ErrAccessDenied is returned when the guard refuses a command
var ErrAccessDenied = errors.New("access denied")

// App carries what every command needs. Fields left nil are built from the
// environment by Init, so tests can inject a store, client or widget.
type App struct {
	Env    *config.Config
	APIURL string // --api-url
	Plain  bool   // --no-color

	Out    io.Writer
	Logger zerolog.Logger

	Store  session.Store
	Client *client.Client
	Guard  *guard.Guard
	Policy guard.Policy
	Widget checkout.Widget

	// ReadPassword prompts for a secret; defaults to a terminal read
	ReadPassword func(prompt string) (string, error)
}

// Init fills in whatever the caller did not provide
func (a *App) Init() error {
	if a.Env == nil {
		env, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		a.Env = env
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}

	if a.Store == nil {
		store, err := session.Open(a.Env.Session.Backend, a.Env.Session.Path, a.Env.Session.Profile)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		a.Store = store
	}

	if a.Client == nil {
		userCfg, err := userconfig.Load()
		if err != nil {
			a.Logger.Warn().Err(err).Msg("ignoring unreadable user config")
		}
		baseURL, source := serverselect.ResolveBaseURL(a.APIURL, a.Env.API.URL, userCfg)
		a.Logger.Debug().Str("url", baseURL).Str("source", string(source)).Msg("resolved backend")

		logger := a.Logger
		c, err := client.New(client.Config{
			BaseURL: baseURL,
			Store:   a.Store,
			Logger:  &logger,
		})
		if err != nil {
			return err
		}
		a.Client = c
	}

	if a.Guard == nil {
		a.Guard = guard.New(a.Store, a.Policy, a.Logger)
	}
	if a.Widget == nil {
		a.Widget = &promptWidget{out: a.Out}
	}
	if a.ReadPassword == nil {
		a.ReadPassword = readTerminalPassword
	}
	return nil
}

// CheckRoute runs the guard for the route cmd is annotated with. Commands
// without a route are not guarded.
func (a *App) CheckRoute(cmd *cobra.Command) error {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}

	decision, err := a.Guard.CheckRoute(route)
	if err != nil {
		return err
	}
	if decision.Allowed {
		if decision.Reason == guard.ReasonAllowed && route != guard.RouteLogout {
			return a.checkExpiry()
		}
		return nil
	}

	a.Logger.Debug().Str("route", route).Str("reason", decision.Reason).Str("redirect", decision.Redirect).Msg("route refused")
	switch decision.Reason {
	case guard.ReasonNoToken:
		return fmt.Errorf("%w: not logged in, run 'bookify login'", ErrAccessDenied)
	case guard.ReasonRoleMismatch:
		return fmt.Errorf("%w: this command needs a different account role, run 'bookify login'", ErrAccessDenied)
	default:
		return fmt.Errorf("%w: %s", ErrAccessDenied, decision.Reason)
	}
}

// checkExpiry clears a session whose token has already expired, so the
// command fails here instead of on a 401 from the backend. Tokens that do not
// decode are left for the backend to judge.
func (a *App) checkExpiry() error {
	tok, err := session.Token(a.Store)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	claims, err := token.Decode(tok)
	if err != nil || !claims.Expired(time.Now()) {
		return nil
	}

	a.Logger.Debug().Time("expired_at", claims.ExpiresAt).Msg("stored token expired")
	if err := a.Store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return fmt.Errorf("%w: session expired, please log in again", ErrAccessDenied)
}

// HandleError applies the CLI-wide reaction to a failed command. An expired
// or rejected token clears the session.
func (a *App) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if client.Classify(err) != client.KindUnauthorized || a.Store == nil {
		return err
	}

	// a failed login is not a session problem
	if s, loadErr := session.Load(a.Store); loadErr != nil || !s.Authenticated() {
		return err
	}
	if clearErr := a.Store.ClearAll(); clearErr != nil {
		a.Logger.Error().Err(clearErr).Msg("failed to clear session")
	}
	return fmt.Errorf("session expired, please log in again: %w", err)
}

// userID returns the logged-in account id
func (a *App) userID(ctx context.Context) (int64, error) {
	id, err := a.Client.EnsureUserID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve user id: %w", err)
	}
	return id, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.Out, args...)
}

// userError shows the backend's message while keeping the underlying error
// available to errors.As and client.Classify
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// apiError turns a backend failure into the message the pages showed. Server
// errors get fallback; their bodies are not meant for users.
func apiError(err error, fallback string) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	if client.Classify(err) == client.KindServer {
		return &userError{msg: fallback, err: err}
	}
	return &userError{msg: client.Message(err, fallback), err: err}
}

// withRoute annotates cmd with the route it opens
func withRoute(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route
	return cmd
}

var errNonInteractive = errors.New("password is required in non-interactive mode")

func readTerminalPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errNonInteractive
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
