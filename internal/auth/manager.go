// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth owns the session: the persisted bearer token, the identity
// resolved for it, and the register/login/logout flows that change them.
//
// A Manager is created once per process and handed to whoever needs it. All
// state changes go through its methods; readers take a Snapshot or Subscribe.
package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"insightst/cli/internal/backend"
	"insightst/cli/internal/config"
	apperrors "insightst/cli/internal/errors"
	"insightst/cli/internal/logging"
)

// Clearer is session-scoped local storage wiped on logout and invalidation.
type Clearer interface {
	Clear() error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithMinSecretLength overrides the registration minimum secret length.
func WithMinSecretLength(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.minSecret = n
		}
	}
}

// WithSessionStorage registers storage to wipe whenever the session ends.
func WithSessionStorage(c ...Clearer) Option {
	return func(m *Manager) { m.scoped = append(m.scoped, c...) }
}

// Manager coordinates the credential store, the auth service and the
// in-memory session.
type Manager struct {
	store     *CredentialStore
	api       backend.API
	log       zerolog.Logger
	minSecret int
	scoped    []Clearer

	mu      sync.Mutex
	sess    Session
	gen     uint64 // bumped on every token change
	started bool
	subs    map[int]func(Event)
	nextSub int

	flight singleflight.Group
}

// NewManager creates a Manager over store and api. The session starts out
// resolving with whatever token the store holds; call Start to resolve it.
func NewManager(store *CredentialStore, api backend.API, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		api:       api,
		log:       zerolog.Nop(),
		minSecret: config.DefaultMinSecretLength,
		subs:      map[int]func(Event){},
	}
	for _, o := range opts {
		o(m)
	}
	m.sess = Session{Token: store.Get(), Resolving: true}
	return m
}

// Snapshot returns the current session.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Token returns the current bearer token, or "" when signed out.
func (m *Manager) Token() string {
	return m.Snapshot().Token
}

// Start resolves the token loaded at construction. Later calls are no-ops.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()
	_ = m.refresh(ctx)
}

// Login exchanges credentials for a token and resolves its identity. It
// succeeds only once the identity is known. On failure the store and any
// existing session are left as they were.
func (m *Manager) Login(ctx context.Context, email, secret string) error {
	if err := (Credentials{Email: email, Secret: secret}).Validate(); err != nil {
		return err
	}
	epoch := m.store.Epoch()
	token, err := m.api.Login(ctx, email, secret)
	if err != nil {
		m.log.Debug().Err(err).Msg("login rejected")
		return err
	}

	m.mu.Lock()
	if err := m.store.SetIfEpoch(epoch, token); err != nil {
		m.mu.Unlock()
		if errors.Is(err, ErrSuperseded) {
			return err
		}
		return apperrors.Wrap(apperrors.Transport, "Could not save your credentials", err)
	}
	changed := m.applyTokenLocked(token)
	snap := m.sess
	m.mu.Unlock()
	m.log.Debug().Str("token", logging.MaskToken(token)).Bool("changed", changed).Msg("token stored")

	if changed {
		m.emit(EventChanged, snap)
	} else if !snap.Resolving {
		return nil
	}

	if err := m.refresh(ctx); err != nil {
		if apperrors.Is(err, apperrors.Superseded) {
			return err
		}
		return apperrors.Wrap(apperrors.Transport, "Signed in, but your account could not be loaded", err)
	}
	return nil
}

// Register creates an account and then signs in with the same credentials.
// Nothing is sent when the input is invalid.
func (m *Manager) Register(ctx context.Context, r Registration) error {
	if err := r.Validate(m.minSecret); err != nil {
		return err
	}
	if err := m.api.Register(ctx, backend.Registration{Name: r.Name, Email: r.Email, Secret: r.Secret}); err != nil {
		m.log.Debug().Err(err).Msg("registration rejected")
		return err
	}
	return m.Login(ctx, r.Email, r.Secret)
}

// RefreshIdentity re-fetches the identity for the current token. Failures are
// absorbed: the session is reset instead.
func (m *Manager) RefreshIdentity(ctx context.Context) {
	_ = m.refresh(ctx)
}

// refresh resolves the identity for the current token generation. Concurrent
// callers for one generation share a single request, and a result that
// arrives after the token changed is dropped.
func (m *Manager) refresh(ctx context.Context) error {
	m.mu.Lock()
	token, gen := m.sess.Token, m.gen
	if token == "" {
		changed := m.sess.Resolving || m.sess.Identity != nil
		m.sess = Session{}
		m.mu.Unlock()
		if changed {
			m.emit(EventChanged, Session{})
		}
		return nil
	}
	m.mu.Unlock()

	v, err, shared := m.flight.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		id, err := m.api.Me(ctx)
		if err == nil && id == nil {
			err = apperrors.New(apperrors.Transport, "Could not load your account")
		}
		return id, err
	})
	if shared {
		m.log.Debug().Uint64("generation", gen).Msg("joined identity refresh in flight")
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.log.Debug().Uint64("generation", gen).Msg("stale identity refresh discarded")
		if err != nil {
			return err
		}
		return ErrSuperseded
	}
	if err != nil {
		m.resetLocked()
		m.mu.Unlock()
		m.log.Debug().Err(err).Msg("identity refresh failed, session reset")
		m.clearScoped()
		m.emit(EventInvalidated, Session{})
		return err
	}
	id, _ := v.(*backend.Identity)
	m.sess.Identity = id
	m.sess.Resolving = false
	snap := m.sess
	m.mu.Unlock()

	if err := m.store.SaveHint(Hint{Account: id.Account(), Name: id.Name, SeenAt: time.Now().UTC()}); err != nil {
		m.log.Debug().Err(err).Msg("could not save account hint")
	}
	m.emit(EventChanged, snap)
	return nil
}

// Logout revokes the token on the service when it can, then clears all local
// session state. It is safe to call when nobody is signed in.
func (m *Manager) Logout(ctx context.Context) error {
	if m.Token() != "" {
		if err := m.api.Logout(ctx); err != nil {
			m.log.Debug().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}

	m.mu.Lock()
	err := m.resetLocked()
	m.mu.Unlock()

	m.clearScoped()
	m.emit(EventLoggedOut, Session{})
	if err != nil {
		return apperrors.Wrap(apperrors.Transport, "Could not remove stored credentials", err)
	}
	return nil
}

// Invalidate handles a credential rejection for token, the token attached to
// the rejected request. It resets the session and emits EventInvalidated only
// if token is still the current one, so concurrent rejections act once. A
// rejection of a tokenless request predates the session and is ignored.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	m.mu.Lock()
	if token == "" || token != m.sess.Token {
		m.mu.Unlock()
		return
	}
	_ = m.resetLocked()
	m.mu.Unlock()

	m.log.Debug().Str("token", logging.MaskToken(token)).Msg("credential rejected, session invalidated")
	m.clearScoped()
	m.emit(EventInvalidated, Session{})
}

// applyTokenLocked installs token as current. Only a different token starts a
// new generation, so re-applying the same token triggers no further refresh.
func (m *Manager) applyTokenLocked(token string) bool {
	if token == m.sess.Token {
		return false
	}
	m.gen++
	m.sess = Session{Token: token, Resolving: true}
	return true
}

func (m *Manager) resetLocked() error {
	m.gen++
	m.sess = Session{}
	return m.store.Clear()
}

func (m *Manager) clearScoped() {
	for _, c := range m.scoped {
		if err := c.Clear(); err != nil {
			m.log.Debug().Err(err).Msg("could not clear session storage")
		}
	}
}
