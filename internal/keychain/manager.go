// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe access to the OS credential store.
// It holds the bearer token and the display-only account hint, and nothing
// else: identity records are always re-fetched from the service.
//
// On macOS the native `security` command is preferred; every other platform
// goes through github.com/99designs/keyring with a configurable backend list,
// including an encrypted file backend for headless Linux hosts.
package keychain

import (
	"errors"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"

	"insightst/cli/internal/config"
	"insightst/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "insightst"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAccessToken = "auth_access_token"
	KeyAuthState   = "auth_state"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("keychain: key not found")

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// Open creates a Manager for the configured backends.
func Open(cfg config.KeyringConfig, log zerolog.Logger) (*Manager, error) {
	// Try native security backend first on macOS unless backends were pinned.
	if runtime.GOOS == "darwin" && len(cfg.Backends) == 0 {
		backend, err := newSecurityBackend(log)
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		log.Debug().Err(err).Msg("security command unavailable, falling back to keyring")
	}

	ring, err := openRing(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithKeyring wraps an already opened keyring. Tests use keyring.NewArrayKeyring.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// defaultBackends returns the platform preference order.
func defaultBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		// pass needs 'brew install pass' and an initialised store.
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}
}

// openRing opens the OS keyring with the configured or default backends.
func openRing(cfg config.KeyringConfig) (keyring.Keyring, error) {
	allowed := defaultBackends()
	if len(cfg.Backends) > 0 {
		allowed = allowed[:0:0]
		for _, b := range cfg.Backends {
			allowed = append(allowed, keyring.BackendType(b))
		}
	}

	fileDir := cfg.FileDir
	if fileDir == "" {
		dir, err := xdg.KeyringDir()
		if err != nil {
			return nil, err
		}
		fileDir = dir
	}

	kc := keyring.Config{
		ServiceName:      ServiceName,
		AllowedBackends:  allowed,
		PassPrefix:       ServiceName,
		FileDir:          fileDir,
		FilePasswordFunc: filePassword(),
	}
	if runtime.GOOS == "windows" {
		kc.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// filePassword unlocks the file backend from INSIGHTST_KEYRING_PASSWORD when
// set, and prompts on the terminal otherwise.
func filePassword() keyring.PromptFunc {
	if pw := os.Getenv("INSIGHTST_KEYRING_PASSWORD"); pw != "" {
		return keyring.FixedStringPrompt(pw)
	}
	return keyring.TerminalPrompt
}

func (m *Manager) set(key string, value []byte) error {
	if m.backend != nil {
		return m.backend.Set(key, string(value))
	}
	return m.ring.Set(keyring.Item{Key: key, Data: value})
}

func (m *Manager) get(key string) ([]byte, error) {
	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, ErrNotFound
		}
		return []byte(v), nil
	}
	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(it.Data) == 0 {
		return nil, ErrNotFound
	}
	return it.Data, nil
}

func (m *Manager) remove(key string) error {
	if m.backend != nil {
		return m.backend.Delete(key)
	}
	err := m.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// SaveAccessToken stores the bearer token.
// This method is thread-safe.
func (m *Manager) SaveAccessToken(token string) error {
	if token == "" {
		return errors.New("keychain: refusing to store empty access token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(KeyAccessToken, []byte(token))
}

// LoadAccessToken retrieves the bearer token. A missing token yields ErrNotFound.
// This method is thread-safe.
func (m *Manager) LoadAccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := m.get(KeyAccessToken)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ClearAuth removes the token and the auth state. The keys are deleted, never
// overwritten with an empty value.
// This method is thread-safe.
func (m *Manager) ClearAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.remove(KeyAccessToken), m.remove(KeyAuthState))
}

// SaveAuthState stores serialized auth state in the keychain.
// This method is thread-safe.
func (m *Manager) SaveAuthState(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(KeyAuthState, data)
}

// LoadAuthState retrieves serialized auth state from the keychain.
// This method is thread-safe.
func (m *Manager) LoadAuthState() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(KeyAuthState)
}

// ClearAuthState removes the stored auth state from the keychain.
// This method is thread-safe.
func (m *Manager) ClearAuthState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(KeyAuthState)
}
