package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookify-dev/bookify/internal/session"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSetSession_ResolvesUserIDByEmail(t *testing.T) {
	var lookups int
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lookups++
		assert.Equal(t, "/api/auth/email/a@b.com", r.URL.Path)
		_, _ = w.Write([]byte(`{"userId":42}`))
	})

	tok := signedToken(t, jwt.MapClaims{"sub": "a@b.com", "role": "ROLE_USER"})
	state, err := c.SetSession(context.Background(), tok, session.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StateEstablished, state)
	assert.Equal(t, 1, lookups)

	s, err := session.Load(store)
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: tok, Role: session.RoleUser, UserID: "42", Email: "a@b.com"}, s)
}

func TestSetSession_FailedLookupKeepsPreviousUserID(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	require.NoError(t, store.SetAll("old-token", session.RoleUser, "7", "old@b.com"))

	tok := signedToken(t, jwt.MapClaims{"sub": "a@b.com", "role": "ROLE_USER"})
	state, err := c.SetSession(context.Background(), tok, session.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatePartial, state)

	s, err := session.Load(store)
	require.NoError(t, err)
	assert.Equal(t, tok, s.Token)
	assert.Equal(t, "a@b.com", s.Email)
	assert.Equal(t, "7", s.UserID)
}

func TestSetSession_LookupWithoutUserIDKeepsPreviousUserID(t *testing.T) {
	for _, body := range []string{`{}`, `{"userId":null}`, `{"userId":0}`} {
		t.Run(body, func(t *testing.T) {
			c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			})
			require.NoError(t, store.SetAll("old-token", session.RoleUser, "7", "old@b.com"))

			tok := signedToken(t, jwt.MapClaims{"sub": "a@b.com", "role": "ROLE_USER"})
			state, err := c.SetSession(context.Background(), tok, session.RoleUser)
			require.NoError(t, err)
			assert.Equal(t, StatePartial, state)

			s, err := session.Load(store)
			require.NoError(t, err)
			assert.Equal(t, "7", s.UserID)

			require.NoError(t, store.Set(session.FieldUserID, ""))
			_, err = c.EnsureUserID(context.Background())
			assert.ErrorIs(t, err, ErrNoUserID)
		})
	}
}

func TestSetSession_TokenWithoutSubjectDropsPreviousEmail(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	require.NoError(t, store.SetAll("old-token", session.RoleUser, "7", "old@b.com"))

	tok := signedToken(t, jwt.MapClaims{"role": "ROLE_ADMIN"})
	state, err := c.SetSession(context.Background(), tok, session.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, StatePartial, state)

	s, err := session.Load(store)
	require.NoError(t, err)
	assert.Equal(t, tok, s.Token)
	assert.Empty(t, s.Email)
}

func TestSetSession_UsesUserIDClaim(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	tok := signedToken(t, jwt.MapClaims{"sub": "admin@b.com", "userId": 3, "role": "ROLE_ADMIN"})
	state, err := c.SetSession(context.Background(), tok, session.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, StateEstablished, state)

	s, err := session.Load(store)
	require.NoError(t, err)
	assert.Equal(t, "3", s.UserID)
	assert.Equal(t, session.RoleAdmin, s.Role)
}

func TestSetSession_EmptyTokenClearsEverything(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.SetAll("tok", session.RoleAdmin, "1", "a@b.com"))

	state, err := c.SetSession(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, StateCleared, state)

	for _, f := range session.Fields {
		_, err := store.Get(f)
		assert.ErrorIs(t, err, session.ErrNotFound, "field %s", f)
	}
}

func TestSetSession_UndecodableTokenIsPartial(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	state, err := c.SetSession(context.Background(), "not-a-jwt", session.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatePartial, state)

	tok, err := session.Token(store)
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", tok)
}

type failingStore struct {
	*session.MemoryStore
	failOn session.Field
}

func (f *failingStore) Set(field session.Field, value string) error {
	if field == f.failOn {
		return fmt.Errorf("disk full")
	}
	return f.MemoryStore.Set(field, value)
}

func TestSetSession_StoreFailureIsReturned(t *testing.T) {
	store := &failingStore{MemoryStore: session.NewMemoryStore(), failOn: session.FieldToken}
	c, err := New(Config{BaseURL: "http://localhost:8080/api", Store: store})
	require.NoError(t, err)

	_, err = c.SetSession(context.Background(), "tok", session.RoleUser)
	require.Error(t, err)
}

func TestEnsureUserID(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"userId":9}`))
	})

	_, err := c.EnsureUserID(context.Background())
	assert.True(t, errors.Is(err, ErrNotAuthenticated))

	require.NoError(t, store.Set(session.FieldToken, "tok"))
	_, err = c.EnsureUserID(context.Background())
	assert.True(t, errors.Is(err, ErrNoUserID))

	require.NoError(t, store.Set(session.FieldEmail, "a@b.com"))
	id, err := c.EnsureUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	stored, err := store.Get(session.FieldUserID)
	require.NoError(t, err)
	assert.Equal(t, "9", stored)
}

func TestLogout(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.SetAll("tok", session.RoleUser, "1", "a@b.com"))

	require.NoError(t, c.Logout())
	s, err := c.Session()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}
