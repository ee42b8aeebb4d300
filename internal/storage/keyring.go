package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "carereminder"

// Keyring implements Adapter on the OS secure store (Keychain, Secret
// Service, WinCred, pass) with an encrypted file fallback.
type Keyring struct {
	ring keyring.Keyring
}

// OpenKeyring returns a Keyring backed by the first available system
// backend. fileDir is used by the file backend.
func OpenKeyring(fileDir string) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("carereminder-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyring(ring), nil
}

// NewKeyring wraps an already opened keyring.
func NewKeyring(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// Get retrieves the value stored under key.
func (k *Keyring) Get(_ context.Context, key string) (string, bool, error) {
	item, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %q from keyring: %w", key, err)
	}
	return string(item.Data), true, nil
}

// Set stores value under key.
func (k *Keyring) Set(_ context.Context, key, value string) error {
	err := k.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting %q in keyring: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key.
func (k *Keyring) Delete(_ context.Context, key string) error {
	if err := k.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting %q from keyring: %w", key, err)
	}
	return nil
}
