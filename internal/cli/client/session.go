package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bookify-dev/bookify/internal/session"
	"github.com/bookify-dev/bookify/internal/token"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session and none is stored
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrNoUserID is returned when the session has a token but the user id could not be resolved
	ErrNoUserID = errors.New("user id unknown for this session")
)

// State is the outcome of SetSession
type State int

const (
	// StateCleared means no token was given and every field was removed
	StateCleared State = iota
	// StatePartial means token and role are stored but the user id was not resolved
	StatePartial
	// StateEstablished means all four fields are stored
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StateCleared:
		return "cleared"
	case StatePartial:
		return "partial"
	default:
		return "established"
	}
}

// SetSession records a freshly issued token. Token and role are stored first,
// then the user id is taken from the token or looked up by the email in its
// subject. A failed lookup is logged and keeps whatever user id was stored
// before; the email always follows the new token. An empty token clears the
// session.
func (c *Client) SetSession(ctx context.Context, tok string, role session.Role) (State, error) {
	if tok == "" {
		if err := c.store.ClearAll(); err != nil {
			return StateCleared, fmt.Errorf("failed to clear session: %w", err)
		}
		return StateCleared, nil
	}

	if err := c.store.Set(session.FieldToken, tok); err != nil {
		return StatePartial, fmt.Errorf("failed to store token: %w", err)
	}
	if err := c.store.Set(session.FieldRole, string(role)); err != nil {
		return StatePartial, fmt.Errorf("failed to store role: %w", err)
	}

	claims, err := token.Decode(tok)
	if err != nil {
		c.logger.Warn().Err(err).Msg("stored token could not be decoded")
		return StatePartial, c.forgetEmail()
	}

	// an empty subject removes the email of whoever was logged in before
	if err := c.store.Set(session.FieldEmail, claims.Subject); err != nil {
		return StatePartial, fmt.Errorf("failed to store email: %w", err)
	}

	if claims.HasUserID() {
		if err := c.store.Set(session.FieldUserID, claims.UserID); err != nil {
			return StatePartial, fmt.Errorf("failed to store user id: %w", err)
		}
		return StateEstablished, nil
	}

	if claims.Subject == "" {
		c.logger.Warn().Msg("token carries neither a user id nor a subject")
		return StatePartial, nil
	}

	id, err := c.UserIDByEmail(ctx, claims.Subject)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", claims.Subject).Msg("failed to resolve user id")
		return StatePartial, nil
	}
	if err := c.store.Set(session.FieldUserID, strconv.FormatInt(id, 10)); err != nil {
		return StatePartial, fmt.Errorf("failed to store user id: %w", err)
	}
	return StateEstablished, nil
}

func (c *Client) forgetEmail() error {
	if err := c.store.Set(session.FieldEmail, ""); err != nil {
		return fmt.Errorf("failed to clear email: %w", err)
	}
	return nil
}

// Logout clears every session field
func (c *Client) Logout() error {
	if err := c.store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Session returns the stored session
func (c *Client) Session() (session.Session, error) {
	return session.Load(c.store)
}

// EnsureUserID returns the stored user id, resolving it by email when an
// earlier lookup failed
func (c *Client) EnsureUserID(ctx context.Context) (int64, error) {
	s, err := session.Load(c.store)
	if err != nil {
		return 0, err
	}
	if !s.Authenticated() {
		return 0, ErrNotAuthenticated
	}

	if s.UserID != "" {
		id, err := strconv.ParseInt(s.UserID, 10, 64)
		if err == nil && id > 0 {
			return id, nil
		}
		c.logger.Warn().Str("userId", s.UserID).Msg("ignoring invalid stored user id")
	}

	if s.Email == "" {
		return 0, ErrNoUserID
	}

	id, err := c.UserIDByEmail(ctx, s.Email)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoUserID, err)
	}
	if err := c.store.Set(session.FieldUserID, strconv.FormatInt(id, 10)); err != nil {
		return 0, fmt.Errorf("failed to store user id: %w", err)
	}
	return id, nil
}
