// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "insightst/cli/internal/errors"
	"insightst/cli/internal/keychain"
)

// ErrSuperseded is returned by SetIfEpoch when the store was cleared after the
// caller observed its epoch.
var ErrSuperseded = apperrors.New(apperrors.Superseded, "The session was reset while signing in")

// Vault is the durable secret storage behind a CredentialStore.
// *keychain.Manager implements it.
type Vault interface {
	SaveAccessToken(token string) error
	LoadAccessToken() (string, error)
	ClearAuth() error
	SaveAuthState(data []byte) error
	LoadAuthState() ([]byte, error)
	ClearAuthState() error
}

var _ Vault = (*keychain.Manager)(nil)

// Hint is the display-only record of who was last signed in on this device.
// It is never used to decide whether anyone is signed in.
type Hint struct {
	Account string    `json:"account"`
	Name    string    `json:"name,omitempty"`
	SeenAt  time.Time `json:"seen_at"`
}

// CredentialStore holds the bearer token. It is the only session state that
// outlives the process. Calls serialize on one mutex and never touch the network.
type CredentialStore struct {
	mu     sync.Mutex
	vault  Vault
	log    zerolog.Logger
	token  string
	loaded bool
	epoch  uint64
}

// NewCredentialStore creates a store over vault. The token is read lazily.
func NewCredentialStore(vault Vault, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{vault: vault, log: log}
}

// Get returns the current token or "" when there is none. Read failures are
// logged and reported as absent.
func (s *CredentialStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.token
}

func (s *CredentialStore) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	tok, err := s.vault.LoadAccessToken()
	if err != nil {
		if !errors.Is(err, keychain.ErrNotFound) {
			s.log.Debug().Err(err).Msg("credential store: token unreadable, treating as absent")
		}
		return
	}
	s.token = tok
}

// Epoch returns the clear generation. It changes on every Clear.
func (s *CredentialStore) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Set persists token.
func (s *CredentialStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(token)
}

// SetIfEpoch persists token unless Clear ran after epoch was observed, in
// which case it returns ErrSuperseded and leaves the store empty.
func (s *CredentialStore) SetIfEpoch(epoch uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrSuperseded
	}
	return s.setLocked(token)
}

func (s *CredentialStore) setLocked(token string) error {
	if err := s.vault.SaveAccessToken(token); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// Clear erases the token and the account hint.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.token = ""
	s.loaded = true
	return s.vault.ClearAuth()
}

// SaveHint records the account last seen on this device.
func (s *CredentialStore) SaveHint(h Hint) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vault.SaveAuthState(b)
}

// Hint returns the last saved account hint.
func (s *CredentialStore) Hint() (Hint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var h Hint
	b, err := s.vault.LoadAuthState()
	if err != nil || len(b) == 0 {
		return h, false
	}
	if err := json.Unmarshal(b, &h); err != nil || h.Account == "" {
		// Unreadable hints are dropped so later reads start clean.
		if err := s.vault.ClearAuthState(); err != nil {
			s.log.Debug().Err(err).Msg("could not drop unreadable account hint")
		}
		return Hint{}, false
	}
	return h, true
}
