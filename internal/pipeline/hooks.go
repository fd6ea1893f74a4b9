// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"insightst/cli/internal/logging"
)

// TokenSource yields the current bearer token, or "" when there is none.
type TokenSource interface {
	Get() string
}

// BearerToken attaches "Authorization: Bearer <token>" when src holds a token.
// Without a token, or for Anonymous requests, the request goes out unauthenticated.
func BearerToken(src TokenSource) PreSend {
	return func(req *http.Request) error {
		if anonymous(req.Context()) {
			return nil
		}
		if tok := src.Get(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		return nil
	}
}

// RequestID tags each request with a fresh X-Request-ID unless one is set.
func RequestID() PreSend {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.NewString())
		}
		return nil
	}
}

// UserAgent sets the User-Agent header.
func UserAgent(ua string) PreSend {
	return func(req *http.Request) error {
		req.Header.Set("User-Agent", ua)
		return nil
	}
}

// LogExchange writes one debug line per exchange. Credentials are masked.
func LogExchange(log zerolog.Logger) PostReceive {
	return func(ex *Exchange) {
		ev := log.Debug().
			Str("method", ex.Request.Method).
			Str("path", ex.Request.URL.Path).
			Str("request_id", ex.Request.Header.Get("X-Request-ID"))
		if tok := ParseBearerToken(ex.Request.Header.Get("Authorization")); tok != "" {
			ev = ev.Str("auth", logging.MaskToken(tok))
		}
		if ex.Response != nil {
			ev = ev.Int("status", ex.Response.StatusCode)
		}
		var se *StatusError
		if ex.Err != nil && !errors.As(ex.Err, &se) {
			ev = ev.Str("error", logging.Mask(ex.Err.Error()))
		}
		ev.Msg("request")
	}
}

// RejectAuth reports credential rejections. On a 401 it calls onReject with the
// token that was attached to the failing request ("" when none was). Requests
// to a public entry surface, or made with SkipAuthRejection, are exempt: a 401
// there is a failed attempt, and reacting to it would loop back to the same surface.
func RejectAuth(publicPaths []string, onReject func(ctx context.Context, token string)) PostReceive {
	public := make([]string, 0, len(publicPaths))
	for _, p := range publicPaths {
		if p = strings.Trim(p, "/"); p != "" {
			public = append(public, "/"+p)
		}
	}
	return func(ex *Exchange) {
		if ex.StatusCode() != http.StatusUnauthorized {
			return
		}
		ctx := ex.Request.Context()
		if authRejectionSkipped(ctx) {
			return
		}
		path := strings.TrimRight(ex.Request.URL.Path, "/")
		for _, p := range public {
			if strings.HasSuffix(path, p) {
				return
			}
		}
		onReject(ctx, ParseBearerToken(ex.Request.Header.Get("Authorization")))
	}
}
