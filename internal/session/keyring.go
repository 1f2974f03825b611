package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "tradehub"

// KeyringBackend stores session material in the OS keychain/credential
// manager, so tokens are never written to disk in plain text.
type KeyringBackend struct {
	service string
}

// NewKeyringBackend returns a backend scoped to the tradehub keyring service.
func NewKeyringBackend() *KeyringBackend {
	return &KeyringBackend{service: keyringService}
}

func (k *KeyringBackend) Get(key string) (string, bool) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		// ErrNotFound and a locked/unavailable keyring both read as "no
		// session"; the caller re-authenticates either way.
		return "", false
	}
	return value, true
}

func (k *KeyringBackend) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringBackend) Delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
