package session

import (
	"fmt"
	"strings"
)

// Open returns the store for the named backend
func Open(backend, path, profile string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", "keyring":
		return NewKeyringStore(profile), nil
	case "sqlite":
		return OpenSQLite(path, profile)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend '%s', must be one of: keyring, sqlite, memory", backend)
	}
}
