// Package guard decides whether the stored session may open a route.
package guard

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookify-dev/bookify/internal/session"
)

// Route paths
const (
	RouteLogin             = "/login"
	RouteRegister          = "/register"
	RouteProfile           = "/profile"
	RouteLogout            = "/logout"
	RouteAllBooks          = "/all-books"
	RouteWishlist          = "/wishlist"
	RouteCart              = "/cart"
	RouteOrder             = "/order"
	RouteReturnReplacement = "/returnReplacement"
	RouteAdminDashboard    = "/adminDashboard"
	RouteBooks             = "/books"
	RouteAuthors           = "/authors"
	RouteAdminOrders       = "/adminOrders"
	RouteInformation       = "/informationPage"
)

// Access describes who may open a route
type Access struct {
	// Public routes skip the guard entirely
	Public bool
	// Role is the required role; empty means any authenticated user
	Role session.Role
}

// Routes is the route table
var Routes = map[string]Access{
	RouteLogin:             {Public: true},
	RouteRegister:          {Public: true},
	RouteProfile:           {},
	RouteLogout:            {},
	RouteAllBooks:          {Role: session.RoleUser},
	RouteWishlist:          {Role: session.RoleUser},
	RouteCart:              {Role: session.RoleUser},
	RouteOrder:             {Role: session.RoleUser},
	RouteReturnReplacement: {Role: session.RoleUser},
	RouteAdminDashboard:    {Role: session.RoleAdmin},
	RouteBooks:             {Role: session.RoleAdmin},
	RouteAuthors:           {Role: session.RoleAdmin},
	RouteAdminOrders:       {Role: session.RoleAdmin},
	RouteInformation:       {Role: session.RoleAdmin},
}

// Reasons reported in a Decision
const (
	ReasonAllowed       = "allowed"
	ReasonNoToken       = "no token"
	ReasonRoleMismatch  = "role mismatch"
	ReasonUnknownRoute  = "unknown route"
	ReasonPublicRoute   = "public route"
	ReasonSessionFailed = "session unreadable"
)

// Decision is the outcome of a guard check
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   string
}

// Policy tunes what the guard does on denial
type Policy struct {
	// ClearOnRoleMismatch clears the session when a logged-in user asks for a
	// route of the other role. Off by default: the session is left untouched.
	ClearOnRoleMismatch bool
}

// Guard checks the session in a store against route requirements
type Guard struct {
	store  session.Store
	policy Policy
	logger zerolog.Logger
}

// New creates a guard over store
func New(store session.Store, policy Policy, logger zerolog.Logger) *Guard {
	return &Guard{store: store, policy: policy, logger: logger}
}

// Check decides whether the current session satisfies required. An empty
// required role admits any logged-in user.
func (g *Guard) Check(required session.Role) (Decision, error) {
	s, err := session.Load(g.store)
	if err != nil {
		return Decision{Redirect: RouteLogin, Reason: ReasonSessionFailed}, fmt.Errorf("failed to load session: %w", err)
	}

	if !s.Authenticated() {
		if err := g.store.ClearAll(); err != nil {
			return Decision{Redirect: RouteLogin, Reason: ReasonNoToken}, fmt.Errorf("failed to clear session: %w", err)
		}
		g.logger.Debug().Str("required", string(required)).Msg("no token, redirecting to login")
		return Decision{Redirect: RouteLogin, Reason: ReasonNoToken}, nil
	}

	if required != "" && s.Role != required {
		g.logger.Debug().
			Str("required", string(required)).
			Str("role", string(s.Role)).
			Msg("role mismatch, redirecting to login")
		if g.policy.ClearOnRoleMismatch {
			if err := g.store.ClearAll(); err != nil {
				return Decision{Redirect: RouteLogin, Reason: ReasonRoleMismatch}, fmt.Errorf("failed to clear session: %w", err)
			}
		}
		return Decision{Redirect: RouteLogin, Reason: ReasonRoleMismatch}, nil
	}

	return Decision{Allowed: true, Reason: ReasonAllowed}, nil
}

// CheckRoute looks path up in the route table and checks it. Unknown paths
// redirect to login without touching the session.
func (g *Guard) CheckRoute(path string) (Decision, error) {
	access, ok := Routes[path]
	if !ok {
		return Decision{Redirect: RouteLogin, Reason: ReasonUnknownRoute}, nil
	}
	if access.Public {
		return Decision{Allowed: true, Reason: ReasonPublicRoute}, nil
	}
	return g.Check(access.Role)
}

// LandingRoute is where a freshly logged in user is sent
func LandingRoute(role session.Role) string {
	if role == session.RoleAdmin {
		return RouteAdminDashboard
	}
	return RouteAllBooks
}
