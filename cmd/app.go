// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"insightst/cli/internal/auth"
	"insightst/cli/internal/backend"
	"insightst/cli/internal/config"
	apperrors "insightst/cli/internal/errors"
	"insightst/cli/internal/guard"
	"insightst/cli/internal/httperrors"
	"insightst/cli/internal/keychain"
	"insightst/cli/internal/logging"
	"insightst/cli/internal/manifest"
	"insightst/cli/internal/pipeline"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	out     io.Writer
	store   *auth.CredentialStore
	pl      *pipeline.Client
	session *auth.Manager

	mu       sync.Mutex
	surface  guard.Surface
	expired  bool
	unsubscr func()
}

// newApp loads config and the keychain and wires the session.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	log := logging.New(os.Stderr, cfg.LogLevel, verbose || logging.VerboseFromEnv())

	km, err := keychain.Open(cfg.Keyring, log)
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	return wireApp(ctx, cfg, km, log, os.Stdout)
}

// wireApp assembles store, pipeline, backend and session manager over vault.
func wireApp(ctx context.Context, cfg config.Config, vault auth.Vault, log zerolog.Logger, out io.Writer) (*app, error) {
	m, err := manifest.GetEndpoints(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := auth.NewCredentialStore(vault, log)
	pl := pipeline.New(m.BaseURL,
		pipeline.WithTimeout(cfg.RequestTimeout()),
		pipeline.WithLogger(log),
	)
	session := auth.NewManager(store, backend.New(pl, m.HTTP),
		auth.WithLogger(log),
		auth.WithMinSecretLength(cfg.MinSecretLength),
		auth.WithSessionStorage(manifest.SessionCache{}),
	)

	// Token first so the request ID and log line see the final headers.
	pl.OnPreSend(
		pipeline.BearerToken(store),
		pipeline.RequestID(),
		pipeline.UserAgent("insightst-cli/"+Version),
	)
	pl.OnPostReceive(
		pipeline.LogExchange(log),
		pipeline.RejectAuth(m.HTTP.Public(), session.Invalidate),
	)

	a := &app{cfg: cfg, log: log, out: out, store: store, pl: pl, session: session}
	a.unsubscr = session.Subscribe(a.onEvent)
	return a, nil
}

func (a *app) close() {
	if a.unsubscr != nil {
		a.unsubscr()
	}
}

// onEvent reacts to the session ending underneath a protected command.
func (a *app) onEvent(ev auth.Event) {
	if ev.Kind != auth.EventInvalidated {
		return
	}
	a.mu.Lock()
	notify := a.surface == guard.Protected && !a.expired
	a.expired = true
	a.mu.Unlock()
	if notify {
		pterm.Warning.WithWriter(a.out).Println("Your session has expired. Run 'insightst login' to sign in again.")
	}
}

func (a *app) sessionExpired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.expired
}

// fail prints err for the user and returns errReported. Network trouble gets
// the detailed explanation; everything else shows its message.
func (a *app) fail(action string, err error) error {
	if apperrors.Is(err, apperrors.Transport) && httperrors.Classify(err) != httperrors.Other {
		_ = httperrors.FormatNetworkError(a.out, err, action, httperrors.HostOf(a.cfg.BaseURL))
	} else {
		pterm.Error.WithWriter(a.out).Println(logging.PresentError(action, err))
	}
	a.log.Debug().Err(err).Str("action", action).Msg("command failed")
	return errReported
}
