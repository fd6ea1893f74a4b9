// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apperrors "insightst/cli/internal/errors"
	"insightst/cli/internal/pipeline"
)

// Fallback messages shown when the service gives no usable detail.
const (
	msgRegisterFailed = "Registration failed"
	msgLoginFailed    = "Login failed"
	msgLogoutFailed   = "Logout failed"
)

// Register posts {name, email, secret} to the create-account route.
func (h *HTTP) Register(ctx context.Context, r Registration) error {
	ctx = pipeline.Anonymous(ctx)
	if err := h.pl.Do(ctx, http.MethodPost, h.endpoints.Register, r, nil); err != nil {
		return normalize(err, msgRegisterFailed, false)
	}
	return nil
}

// Login posts {email, secret} and returns the issued access token.
func (h *HTTP) Login(ctx context.Context, email, secret string) (string, error) {
	ctx = pipeline.Anonymous(ctx)
	body := map[string]string{"email": email, "secret": secret}

	var raw map[string]any
	if err := h.pl.Do(ctx, http.MethodPost, h.endpoints.Login, body, &raw); err != nil {
		return "", normalize(err, msgLoginFailed, false)
	}
	token := extractAccessToken(raw)
	if token == "" {
		return "", apperrors.New(apperrors.Transport, msgLoginFailed)
	}
	return token, nil
}

// Logout posts to the logout route with the stored credential. A rejection
// here never invalidates the session; the caller is tearing it down anyway.
func (h *HTTP) Logout(ctx context.Context) error {
	ctx = pipeline.SkipAuthRejection(ctx)
	if err := h.pl.Do(ctx, http.MethodPost, h.endpoints.Logout, nil, nil); err != nil {
		return normalize(err, msgLogoutFailed, false)
	}
	return nil
}

// extractAccessToken extracts the access token from the response payload.
// It tries multiple common field names to be resilient to different response formats.
func extractAccessToken(result map[string]any) string {
	for _, key := range []string{"access_token", "accessToken", "token"} {
		if v, ok := result[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// DetailMessage extracts the display message from a failure body shaped as
// {"detail": "text"} or {"detail": [{"msg": "text"}, ...]}. It returns "" when
// the body carries neither.
func DetailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		return strings.TrimSpace(items[0].Msg)
	}
	return ""
}

// normalize maps a pipeline failure onto the error kinds callers act on.
// protected marks calls whose 401 means the stored credential was rejected.
func normalize(err error, fallback string, protected bool) error {
	var se *pipeline.StatusError
	if !errors.As(err, &se) {
		return apperrors.Wrap(apperrors.Transport, fallback, err)
	}
	if se.StatusCode == http.StatusUnauthorized && protected {
		return apperrors.Wrap(apperrors.AuthRejected, "Your session has expired", se)
	}
	if msg := DetailMessage(se.Body); msg != "" {
		return apperrors.Wrap(apperrors.Validation, msg, se)
	}
	return apperrors.Wrap(apperrors.Transport, fallback, se)
}
