// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"insightst/cli/internal/config"
	"insightst/cli/internal/guard"
	"insightst/cli/internal/keychain"
	"insightst/cli/internal/manifest"
)

func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["secret"] != "rightpass" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"T1"}`))
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer T1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":1,"name":"A","email":"a@x.com"}`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testApp(t *testing.T, ring keyring.Keyring) (*app, *bytes.Buffer) {
	t.Helper()
	manifest.ClearCache()
	t.Cleanup(manifest.ClearCache)

	cfg := config.Default()
	cfg.BaseURL = fakeService(t).URL
	out := &bytes.Buffer{}
	a, err := wireApp(context.Background(), cfg, keychain.NewWithKeyring(ring), zerolog.Nop(), out)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a, out
}

func TestRequireSessionSignedOut(t *testing.T) {
	a, out := testApp(t, keyring.NewArrayKeyring(nil))

	_, ok := a.requireSession(context.Background())
	require.False(t, ok)
	require.Contains(t, out.String(), "not logged in")
}

func TestRequireSessionExpiredToken(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	require.NoError(t, keychain.NewWithKeyring(ring).SaveAccessToken("stale"))
	a, out := testApp(t, ring)

	_, ok := a.requireSession(context.Background())
	require.False(t, ok)
	require.Equal(t, 1, strings.Count(out.String(), "session has expired"))
	require.NotContains(t, out.String(), "not logged in")
	require.Equal(t, "", a.store.Get())
}

func TestLoginThenAdmit(t *testing.T) {
	a, _ := testApp(t, keyring.NewArrayKeyring(nil))
	ctx := context.Background()

	require.True(t, a.admit(ctx, guard.PublicOnly).Allow)
	require.NoError(t, a.session.Login(ctx, "a@x.com", "rightpass"))

	d := a.admit(ctx, guard.PublicOnly)
	require.False(t, d.Allow)
	require.Equal(t, guard.Home, d.Redirect)

	s, ok := a.requireSession(ctx)
	require.True(t, ok)
	require.Equal(t, "a@x.com", s.Identity.Email)
}

func TestFailShowsServiceMessage(t *testing.T) {
	a, out := testApp(t, keyring.NewArrayKeyring(nil))
	ctx := context.Background()
	a.admit(ctx, guard.PublicOnly)

	err := a.session.Login(ctx, "a@x.com", "wrongpass")
	require.ErrorIs(t, a.fail("Login failed", err), errReported)
	require.Contains(t, out.String(), "Login failed: Invalid credentials")
	require.NotContains(t, out.String(), "session has expired")
}
