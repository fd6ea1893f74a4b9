// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "insightst/cli/internal/errors"
	"insightst/cli/internal/manifest"
	"insightst/cli/internal/pipeline"
)

// capture records what the fake service received. Handlers run on the
// server's goroutines, so access is locked.
type capture struct {
	mu     sync.Mutex
	method string
	path   string
	auth   string
	body   []byte
}

func (c *capture) record(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method, c.path, c.auth, c.body = r.Method, r.URL.Path, r.Header.Get("Authorization"), b
}

func (c *capture) get() (method, path, auth string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method, c.path, c.auth, c.body
}

type staticToken string

func (s staticToken) Get() string { return string(s) }

func newTestAPI(t *testing.T, token string, h http.HandlerFunc) API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	pl := pipeline.New(srv.URL)
	pl.OnPreSend(pipeline.BearerToken(staticToken(token)))
	return New(pl, manifest.DefaultEndpoints())
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestDetailMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string detail", body: `{"detail":"Invalid credentials"}`, want: "Invalid credentials"},
		{name: "array detail", body: `{"detail":[{"loc":["body","email"],"msg":"field required"},{"msg":"second"}]}`, want: "field required"},
		{name: "empty array", body: `{"detail":[]}`, want: ""},
		{name: "array without msg", body: `{"detail":[{"loc":"x"}]}`, want: ""},
		{name: "no detail", body: `{"error":"x"}`, want: ""},
		{name: "not json", body: `Internal Server Error`, want: ""},
		{name: "object detail", body: `{"detail":{"msg":"nested"}}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetailMessage([]byte(tt.body)))
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantKind  apperrors.Kind
		wantMsg   string
	}{
		{name: "success", status: 200, body: `{"access_token":"T1","token_type":"bearer"}`, wantToken: "T1"},
		{name: "camel case token", status: 200, body: `{"accessToken":"T2"}`, wantToken: "T2"},
		{name: "wrong password", status: 401, body: `{"detail":"Invalid credentials"}`, wantKind: apperrors.Validation, wantMsg: "Invalid credentials"},
		{name: "field errors", status: 422, body: `{"detail":[{"msg":"value is not a valid email address"}]}`, wantKind: apperrors.Validation, wantMsg: "value is not a valid email address"},
		{name: "server error", status: 500, body: `oops`, wantKind: apperrors.Transport, wantMsg: "Login failed"},
		{name: "no token issued", status: 200, body: `{"token_type":"bearer"}`, wantKind: apperrors.Transport, wantMsg: "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &capture{}
			api := newTestAPI(t, "OLD", func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				reply(w, tt.status, tt.body)
			})

			token, err := api.Login(context.Background(), "a@x.com", "pw-12345")
			_, path, auth, body := rec.get()
			require.Equal(t, "/auth/login", path)
			require.Empty(t, auth, "login must be sent unauthenticated")
			require.JSONEq(t, `{"email":"a@x.com","secret":"pw-12345"}`, string(body))
			if tt.wantKind == "" {
				require.NoError(t, err)
				require.Equal(t, tt.wantToken, token)
				return
			}
			require.Equal(t, tt.wantKind, apperrors.KindOf(err))
			require.Equal(t, tt.wantMsg, apperrors.UserMessage(err, ""))
		})
	}
}

func TestRegisterSendsBody(t *testing.T) {
	rec := &capture{}
	api := newTestAPI(t, "", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		reply(w, 200, `{"id":7,"email":"a@x.com"}`)
	})

	reg := Registration{Name: "A", Email: "a@x.com", Secret: "rightpass"}
	require.NoError(t, api.Register(context.Background(), reg))

	_, path, _, body := rec.get()
	require.Equal(t, "/auth/create-account", path)
	var got Registration
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, reg, got)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api := newTestAPI(t, "", func(w http.ResponseWriter, r *http.Request) {
		reply(w, 400, `{"detail":"Email already registered."}`)
	})
	err := api.Register(context.Background(), Registration{Name: "A", Email: "a@x.com", Secret: "rightpass"})
	require.True(t, apperrors.Is(err, apperrors.Validation))
	require.Equal(t, "Email already registered.", apperrors.UserMessage(err, ""))
}

func TestMe(t *testing.T) {
	rec := &capture{}
	api := newTestAPI(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		reply(w, 200, `{"id":1,"name":"A","email":"a@x.com","admin":true,"plan":"free"}`)
	})

	id, err := api.Me(context.Background())
	require.NoError(t, err)
	_, _, auth, _ := rec.get()
	require.Equal(t, "Bearer T1", auth)
	require.Equal(t, "1", id.ID)
	require.Equal(t, "A", id.Name)
	require.Equal(t, "a@x.com", id.Email)
	require.True(t, id.Admin)
	require.Equal(t, "free", id.Profile["plan"])
	require.Equal(t, "a@x.com", id.Account())
}

func TestMeFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperrors.Kind
	}{
		{name: "rejected", status: 401, body: `{"detail":"Could not validate credentials"}`, wantKind: apperrors.AuthRejected},
		{name: "server error", status: 503, body: ``, wantKind: apperrors.Transport},
		{name: "empty identity", status: 200, body: `{}`, wantKind: apperrors.Transport},
		{name: "malformed", status: 200, body: `[1,2]`, wantKind: apperrors.Transport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, "T1", func(w http.ResponseWriter, r *http.Request) {
				reply(w, tt.status, tt.body)
			})
			_, err := api.Me(context.Background())
			require.Equal(t, tt.wantKind, apperrors.KindOf(err))
		})
	}
}

func TestLogoutCarriesToken(t *testing.T) {
	rec := &capture{}
	api := newTestAPI(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		reply(w, 200, `{"message":"ok"}`)
	})
	require.NoError(t, api.Logout(context.Background()))

	method, path, auth, _ := rec.get()
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/auth/logout", path)
	require.Equal(t, "Bearer T1", auth)
}

func TestIdentityAccountFallbacks(t *testing.T) {
	var nilID *Identity
	require.Equal(t, "", nilID.Account())
	require.Equal(t, "A", (&Identity{Name: "A", ID: "1"}).Account())
	require.Equal(t, "1", (&Identity{ID: "1"}).Account())
}
