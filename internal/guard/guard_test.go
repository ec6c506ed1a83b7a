package guard

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/session"
)

func TestCheck_NoTokenClearsSession(t *testing.T) {
	for _, required := range []session.Role{"", session.RoleUser, session.RoleAdmin} {
		t.Run(string(required), func(t *testing.T) {
			store := session.NewMemoryStore()
			// leftovers without a token
			require.NoError(t, store.Set(session.FieldRole, string(session.RoleAdmin)))
			require.NoError(t, store.Set(session.FieldUserID, "4"))

			g := New(store, Policy{}, zerolog.Nop())
			d, err := g.Check(required)
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.Equal(t, RouteLogin, d.Redirect)
			assert.Equal(t, ReasonNoToken, d.Reason)

			for _, f := range session.Fields {
				_, err := store.Get(f)
				assert.ErrorIs(t, err, session.ErrNotFound)
			}
		})
	}
}

func TestCheck_RoleMismatchKeepsSessionByDefault(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetAll("tok", session.RoleUser, "1", "a@b.com"))

	g := New(store, Policy{}, zerolog.Nop())
	d, err := g.Check(session.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, RouteLogin, d.Redirect)
	assert.Equal(t, ReasonRoleMismatch, d.Reason)

	s, err := session.Load(store)
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: "tok", Role: session.RoleUser, UserID: "1", Email: "a@b.com"}, s)
}

func TestCheck_RoleMismatchClearsWhenConfigured(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetAll("tok", session.RoleUser, "1", "a@b.com"))

	g := New(store, Policy{ClearOnRoleMismatch: true}, zerolog.Nop())
	d, err := g.Check(session.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, d.Redirect)

	s, err := session.Load(store)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestCheck_Allowed(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetAll("tok", session.RoleAdmin, "1", "admin@b.com"))
	g := New(store, Policy{}, zerolog.Nop())

	d, err := g.Check(session.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Redirect)

	d, err = g.Check("")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestCheckRoute(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetAll("tok", session.RoleUser, "1", "a@b.com"))
	g := New(store, Policy{}, zerolog.Nop())

	tests := []struct {
		path    string
		allowed bool
		reason  string
	}{
		{RouteLogin, true, ReasonPublicRoute},
		{RouteRegister, true, ReasonPublicRoute},
		{RouteProfile, true, ReasonAllowed},
		{RouteCart, true, ReasonAllowed},
		{RouteAdminOrders, false, ReasonRoleMismatch},
		{"/nowhere", false, ReasonUnknownRoute},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, err := g.CheckRoute(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}

	// none of the above logged the user out
	tok, err := session.Token(store)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestLandingRoute(t *testing.T) {
	assert.Equal(t, RouteAdminDashboard, LandingRoute(session.RoleAdmin))
	assert.Equal(t, RouteAllBooks, LandingRoute(session.RoleUser))
	assert.Equal(t, RouteAllBooks, LandingRoute(""))
}
