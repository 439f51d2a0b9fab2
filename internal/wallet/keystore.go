package wallet

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const (
	keychainService = "w3mint"
	// KeyEnvVar, when set, supplies the private key for every signing
	// wallet and bypasses the keychain.
	KeyEnvVar = "W3MINT_KEY"
)

var (
	// ErrSigningDeclined is returned when the user declines to unlock a key.
	ErrSigningDeclined = errors.New("signing declined")
	// ErrKeystoreUnavailable means no keyring backend could be opened.
	ErrKeystoreUnavailable = errors.New("no keychain available")
)

// KeystoreBackend stores private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// PasswordPrompt asks for the file-backend passphrase. An empty answer
// declines.
var PasswordPrompt keyring.PromptFunc = keyring.TerminalPrompt

// Keystore keeps keys in the OS keychain. A zero Keystore has no backend
// and fails every Store and Retrieve that KeyEnvVar does not serve.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore opens the platform keychain, falling back to passphrase
// encrypted files under dir.
func DefaultKeystore(dir string) *Keystore {
	ring, err := keyring.Open(ringConfig(dir, platformBackends()...))
	if err != nil {
		ring, _ = keyring.Open(ringConfig(dir, keyring.FileBackend))
	}
	return &Keystore{ring: ring}
}

// platformBackends is nil outside Linux, letting keyring choose. Headless
// Linux boxes rarely run a secret service, so the file backend stays last.
func platformBackends() []keyring.BackendType {
	if runtime.GOOS != "linux" {
		return nil
	}
	return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.FileBackend}
}

func ringConfig(dir string, backends ...keyring.BackendType) keyring.Config {
	return keyring.Config{
		ServiceName:              keychainService,
		AllowedBackends:          backends,
		KeychainTrustApplication: true,
		FileDir:                  dir,
		FilePasswordFunc:         promptOrDecline,
	}
}

func promptOrDecline(prompt string) (string, error) {
	pw, err := PasswordPrompt(prompt)
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrSigningDeclined, err)
	case pw == "":
		return "", ErrSigningDeclined
	}
	return pw, nil
}

func keyRef(name string) string { return keychainService + "." + name }

func (k *Keystore) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	ref := keyRef(name)
	if err := k.ring.Set(keyring.Item{Key: ref, Label: "w3mint wallet " + name, Data: []byte(hexKey)}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve returns the key behind ref. KeyEnvVar takes precedence.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if v := os.Getenv(KeyEnvVar); v != "" {
		return normaliseHexKey(v), nil
	}
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	item, err := k.ring.Get(ref)
	switch {
	case errors.Is(err, ErrSigningDeclined):
		return "", err
	case err != nil:
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key. Missing keys are not an error.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) || os.IsNotExist(err) {
		return nil
	}
	return err
}

// InMemoryKeystore keeps keys for the life of the process.
type InMemoryKeystore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = hexKey
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%s: %w", ref, keyring.ErrKeyNotFound)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}

// normaliseHexKey trims whitespace and any 0x prefix.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
