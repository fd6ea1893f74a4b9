// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest resolves the auth service endpoint table. The built-in
// defaults match the service's routes; a deployment may publish a manifest
// JSON document to relocate them.
package manifest

import (
	"strings"
)

// Manifest represents the endpoint configuration of a deployment.
type Manifest struct {
	Version int           `json:"version"`
	BaseURL string        `json:"base_url"`
	HTTP    HTTPEndpoints `json:"http"`
}

// HTTPEndpoints contains REST API endpoint paths relative to BaseURL.
type HTTPEndpoints struct {
	Register string `json:"account_create"` // e.g., "auth/create-account"
	Login    string `json:"token_issue"`    // e.g., "auth/login"
	Me       string `json:"account_whoami"` // e.g., "auth/me"
	Logout   string `json:"session_logout"` // e.g., "auth/logout"
}

// DefaultEndpoints returns the service's standard routes.
func DefaultEndpoints() HTTPEndpoints {
	return HTTPEndpoints{
		Register: "auth/create-account",
		Login:    "auth/login",
		Me:       "auth/me",
		Logout:   "auth/logout",
	}
}

// Default returns a manifest for baseURL with the standard routes.
func Default(baseURL string) *Manifest {
	return &Manifest{Version: 1, BaseURL: strings.TrimRight(baseURL, "/"), HTTP: DefaultEndpoints()}
}

// Public lists the unauthenticated entry surfaces. A credential rejection from
// one of these is a failed attempt, not an expired session.
func (e HTTPEndpoints) Public() []string {
	return []string{e.Login, e.Register}
}

// withDefaults fills any endpoint the document left empty.
func (e HTTPEndpoints) withDefaults() HTTPEndpoints {
	d := DefaultEndpoints()
	if e.Register == "" {
		e.Register = d.Register
	}
	if e.Login == "" {
		e.Login = d.Login
	}
	if e.Me == "" {
		e.Me = d.Me
	}
	if e.Logout == "" {
		e.Logout = d.Logout
	}
	return e
}
