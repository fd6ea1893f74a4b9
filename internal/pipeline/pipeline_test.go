// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "insightst/cli/internal/errors"
	"insightst/cli/internal/logging"
)

type staticToken string

func (s staticToken) Get() string { return string(s) }

// recordingServer answers every request with status and body, and records
// the Authorization header it saw.
func recordingServer(t *testing.T, status int, body string) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	seen := []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func TestBearerTokenInjection(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "token present", token: "T1", want: "Bearer T1"},
		{name: "token absent", token: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, seen := recordingServer(t, http.StatusOK, `{}`)
			c := New(srv.URL)
			c.OnPreSend(BearerToken(staticToken(tt.token)))

			require.NoError(t, c.Do(context.Background(), http.MethodGet, "auth/me", nil, nil))
			require.Equal(t, []string{tt.want}, seen())
		})
	}
}

func TestAnonymousSuppressesToken(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{}`)
	c := New(srv.URL)
	c.OnPreSend(BearerToken(staticToken("T1")))

	require.NoError(t, c.Do(Anonymous(context.Background()), http.MethodPost, "auth/login", map[string]string{}, nil))
	require.Equal(t, []string{""}, seen())
}

func TestHooksRunInOrder(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{}`)
	c := New(srv.URL)

	var order []string
	c.OnPreSend(
		func(*http.Request) error { order = append(order, "pre1"); return nil },
		func(*http.Request) error { order = append(order, "pre2"); return nil },
	)
	c.OnPostReceive(
		func(*Exchange) { order = append(order, "post1") },
		func(*Exchange) { order = append(order, "post2") },
	)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "x", nil, nil))
	require.Equal(t, []string{"pre1", "pre2", "post1", "post2"}, order)
}

func TestPreSendErrorAbortsCall(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{}`)
	c := New(srv.URL)
	boom := errors.New("no")
	c.OnPreSend(func(*http.Request) error { return boom })

	err := c.Do(context.Background(), http.MethodGet, "x", nil, nil)
	require.ErrorIs(t, err, boom)
	require.Empty(t, seen())
}

func TestSuccessPassesThrough(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{"access_token":"T1"}`)
	c := New(srv.URL)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "auth/login", map[string]string{"email": "a@x.com"}, &out))
	require.Equal(t, "T1", out.AccessToken)
}

func TestStatusErrorKeepsBody(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusUnprocessableEntity, `{"detail":"bad"}`)
	c := New(srv.URL)

	err := c.Do(context.Background(), http.MethodPost, "auth/create-account", map[string]string{}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	require.JSONEq(t, `{"detail":"bad"}`, string(se.Body))
	require.Len(t, seen(), 1, "no retries")
}

func TestMalformedSuccessBodyIsTransport(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `not json`)
	c := New(srv.URL)

	var out map[string]any
	err := c.Do(context.Background(), http.MethodGet, "auth/me", nil, &out)
	require.True(t, apperrors.Is(err, apperrors.Transport))
}

func TestUnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	var observed error
	c.OnPostReceive(func(ex *Exchange) { observed = ex.Err })

	err := c.Do(context.Background(), http.MethodGet, "auth/me", nil, nil)
	require.True(t, apperrors.Is(err, apperrors.Transport))
	require.Equal(t, err, observed)
}

func TestRejectAuth(t *testing.T) {
	public := []string{"auth/login", "/auth/create-account"}
	tests := []struct {
		name     string
		status   int
		path     string
		skip     bool
		token    string
		wantCall bool
	}{
		{name: "401 on protected path", status: 401, path: "auth/me", token: "T1", wantCall: true},
		{name: "401 unauthenticated request", status: 401, path: "analysis/history", wantCall: true},
		{name: "401 on login", status: 401, path: "auth/login", token: "T1"},
		{name: "401 on register", status: 401, path: "auth/create-account"},
		{name: "401 with skip", status: 401, path: "auth/logout", token: "T1", skip: true},
		{name: "403 is not rejection", status: 403, path: "auth/me", token: "T1"},
		{name: "500 is not rejection", status: 500, path: "auth/me", token: "T1"},
		{name: "200", status: 200, path: "auth/me", token: "T1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := recordingServer(t, tt.status, `{"detail":"x"}`)
			c := New(srv.URL)
			c.OnPreSend(BearerToken(staticToken(tt.token)))

			var calls []string
			c.OnPostReceive(RejectAuth(public, func(_ context.Context, token string) {
				calls = append(calls, token)
			}))

			ctx := context.Background()
			if tt.skip {
				ctx = SkipAuthRejection(ctx)
			}
			_ = c.Do(ctx, http.MethodGet, tt.path, nil, nil)

			if tt.wantCall {
				require.Equal(t, []string{tt.token}, calls)
			} else {
				require.Empty(t, calls)
			}
		})
	}
}

func TestRejectAuthCompletesBeforeCallerSeesFailure(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusUnauthorized, `{"detail":"expired"}`)
	c := New(srv.URL)

	var done atomic.Bool
	c.OnPostReceive(RejectAuth(nil, func(context.Context, string) { done.Store(true) }))

	err := c.Do(context.Background(), http.MethodGet, "auth/me", nil, nil)
	require.Error(t, err)
	require.True(t, done.Load())
}

func TestRequestIDAndLogging(t *testing.T) {
	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := New(srv.URL)
	c.OnPreSend(RequestID(), BearerToken(staticToken("abcdefghijklmnop")))
	c.OnPostReceive(LogExchange(logging.New(&buf, "debug", false)))

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "auth/me", nil, nil))
	got := <-ids
	require.Len(t, got, 36)
	require.Contains(t, buf.String(), got)
	require.Contains(t, buf.String(), "abcd***")
	require.NotContains(t, buf.String(), "abcdefghijklmnop")
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bearer T1", "T1"},
		{"bearer   T1 ", "T1"},
		{"Bearer", ""},
		{"Basic abc", ""},
		{"BearerT1xx", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseBearerToken(tt.in); got != tt.want {
			t.Errorf("ParseBearerToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientOptions(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{name: "default", want: 15 * time.Second},
		{name: "timeout only", opts: []Option{WithTimeout(3 * time.Second)}, want: 3 * time.Second},
		{name: "client keeps its timeout", opts: []Option{WithHTTPClient(shared)}, want: time.Minute},
		{name: "timeout before client", opts: []Option{WithTimeout(2 * time.Second), WithHTTPClient(shared)}, want: 2 * time.Second},
		{name: "timeout after client", opts: []Option{WithHTTPClient(shared), WithTimeout(2 * time.Second)}, want: 2 * time.Second},
		{name: "nil client", opts: []Option{WithHTTPClient(nil), WithTimeout(time.Second)}, want: time.Second},
		{name: "zero disables", opts: []Option{WithTimeout(0)}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("http://example.invalid", tt.opts...)
			require.Equal(t, tt.want, c.http.Timeout)
			require.Equal(t, time.Minute, shared.Timeout, "caller's client is never modified")
		})
	}
}
