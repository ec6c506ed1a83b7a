package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "bookify-cli"
)

// KeyringStore persists session fields in the OS keychain/credential manager,
// one entry per field, namespaced by profile
type KeyringStore struct {
	profile string
}

// NewKeyringStore returns a keyring-backed store for the given profile
func NewKeyringStore(profile string) *KeyringStore {
	if profile == "" {
		profile = "default"
	}
	return &KeyringStore{profile: profile}
}

// getKeyringKey returns a unique key for a session field per profile
func (k *KeyringStore) getKeyringKey(field Field) string {
	return fmt.Sprintf("%s-%s", k.profile, field)
}

func (k *KeyringStore) Get(field Field) (string, error) {
	value, err := keyring.Get(service, k.getKeyringKey(field))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s: %w", field, err)
	}
	return value, nil
}

func (k *KeyringStore) Set(field Field, value string) error {
	if value == "" {
		return k.delete(field)
	}
	if err := keyring.Set(service, k.getKeyringKey(field), value); err != nil {
		return fmt.Errorf("failed to save %s: %w", field, err)
	}
	return nil
}

func (k *KeyringStore) SetAll(token string, role Role, userID, email string) error {
	values := map[Field]string{
		FieldToken:  token,
		FieldRole:   string(role),
		FieldUserID: userID,
		FieldEmail:  email,
	}
	for _, f := range Fields {
		if err := k.Set(f, values[f]); err != nil {
			return err
		}
	}
	return nil
}

func (k *KeyringStore) ClearAll() error {
	for _, f := range Fields {
		if err := k.delete(f); err != nil {
			return err
		}
	}
	return nil
}

func (k *KeyringStore) delete(field Field) error {
	if err := keyring.Delete(service, k.getKeyringKey(field)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", field, err)
	}
	return nil
}
