// Package credential keeps the game-master passphrase in the system keyring.
package credential

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

const (
	serviceName   = "questlog"
	passphraseKey = "gm-passphrase"
)

// ErrPassphrase is returned when a privileged user gives a wrong passphrase.
var ErrPassphrase = errors.New("wrong game master passphrase")

// Vault stores the game-master passphrase.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault backed by the system keyring, falling back to an
// encrypted file under dir.
func Open(dir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("questlog-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// HasPassphrase reports whether a passphrase is stored.
func (v *Vault) HasPassphrase() (bool, error) {
	_, err := v.ring.Get(passphraseKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting credential %q: %w", passphraseKey, err)
	}
	return true, nil
}

// SetPassphrase stores the passphrase, replacing any previous one.
func (v *Vault) SetPassphrase(passphrase string) error {
	if passphrase == "" {
		return errors.New("passphrase must not be empty")
	}
	err := v.ring.Set(keyring.Item{
		Key:   passphraseKey,
		Data:  []byte(passphrase),
		Label: "questlog game master passphrase",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", passphraseKey, err)
	}
	return nil
}

// ClearPassphrase removes the passphrase. Clearing when none is stored is
// not an error.
func (v *Vault) ClearPassphrase() error {
	err := v.ring.Remove(passphraseKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", passphraseKey, err)
	}
	return nil
}

// Verify checks passphrase against the stored one. With nothing stored
// every passphrase is accepted.
func (v *Vault) Verify(passphrase string) error {
	item, err := v.ring.Get(passphraseKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting credential %q: %w", passphraseKey, err)
	}
	if subtle.ConstantTimeCompare(item.Data, []byte(passphrase)) != 1 {
		return ErrPassphrase
	}
	return nil
}
