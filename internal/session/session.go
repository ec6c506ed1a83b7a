// Package session holds the client-side record of the authenticated user.
//
// The four fields (token, role, userId, email) are persisted in a Store so they
// survive between CLI invocations, the way the browser client kept them in
// local storage. A missing token means there is no session, whatever else is
// still stored.
package session

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get when a field has never been set or was cleared
var ErrNotFound = errors.New("session field not found")

// Field names one persisted session entry
type Field string

const (
	FieldToken  Field = "token"
	FieldRole   Field = "role"
	FieldUserID Field = "userId"
	FieldEmail  Field = "email"
)

// Fields lists every persisted field in a stable order
var Fields = []Field{FieldToken, FieldRole, FieldUserID, FieldEmail}

// Role is the account role reported by the backend at login
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Valid reports whether r is one of the roles the backend issues
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Session is a snapshot of the stored fields
type Session struct {
	Token  string
	Role   Role
	UserID string
	Email  string
}

// Authenticated reports whether a token is present
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store persists session fields. Implementations are last-write-wins and do not
// coordinate writers in other processes.
type Store interface {
	Get(field Field) (string, error)
	Set(field Field, value string) error
	SetAll(token string, role Role, userID, email string) error
	ClearAll() error
}

// Load reads all fields from the store. Absent fields are empty. When the token
// is absent the whole session is reported empty.
func Load(store Store) (Session, error) {
	values := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		v, err := store.Get(f)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Session{}, fmt.Errorf("failed to read session field %s: %w", f, err)
		}
		values[f] = v
	}

	if values[FieldToken] == "" {
		return Session{}, nil
	}

	return Session{
		Token:  values[FieldToken],
		Role:   Role(values[FieldRole]),
		UserID: values[FieldUserID],
		Email:  values[FieldEmail],
	}, nil
}

// Token returns the stored token, or an empty string when there is none
func Token(store Store) (string, error) {
	token, err := store.Get(FieldToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}
