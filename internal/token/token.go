// Package token decodes the backend's bearer tokens on the client side.
//
// The client never holds the signing key, so tokens are parsed without
// signature verification and only used to read the claims the backend put
// there: the subject (account email), an optional numeric user id, and the role.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be decoded
var ErrMalformedToken = errors.New("malformed token")

// Claims are the parts of the token the client cares about
type Claims struct {
	Subject   string
	UserID    string // empty when the token carries no user id claim
	Role      string
	ExpiresAt time.Time
}

// HasUserID reports whether the token carried a usable user id claim
func (c Claims) HasUserID() bool {
	return c.UserID != ""
}

// Expired reports whether the token has an expiry in the past
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// rawClaims mirrors what the backend signs
type rawClaims struct {
	UserID json.RawMessage `json:"userId,omitempty"`
	Role   string          `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode reads the claims of tokenString without verifying its signature
func Decode(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	var raw rawClaims
	if _, _, err := parser.ParseUnverified(tokenString, &raw); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims := Claims{
		Subject: raw.Subject,
		UserID:  parseUserID(raw.UserID),
		Role:    raw.Role,
	}
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.Time
	}
	return claims, nil
}

// parseUserID accepts a JSON number or a numeric string; anything else is absent
func parseUserID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if id, err := n.Int64(); err == nil && id > 0 {
			return strconv.FormatInt(id, 10)
		}
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
			return strconv.FormatInt(id, 10)
		}
	}
	return ""
}
