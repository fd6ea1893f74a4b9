// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend is the client for the remote auth service. Every call goes
// through the shared request pipeline, so credentials are attached and
// rejections are observed in one place. Failures come back as typed errors
// from internal/errors with a message fit for display.
package backend

import "context"

// API defines the auth service operations the session manager depends on.
// Implementations may call the real service or provide fakes for tests.
type API interface {
	// Register creates an account. It does not sign in.
	Register(ctx context.Context, r Registration) error
	// Login exchanges credentials for a bearer token. Sent unauthenticated.
	Login(ctx context.Context, email, secret string) (accessToken string, err error)
	// Me returns the identity bound to the stored token.
	Me(ctx context.Context) (*Identity, error)
	// Logout revokes the stored token on the service.
	Logout(ctx context.Context) error
}

// Registration is the create-account request body.
type Registration struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"secret"`
}
