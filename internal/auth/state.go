// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "insightst/cli/internal/backend"

// Session is a point-in-time view of the session state.
// Identity is set only while Token is set.
type Session struct {
	Token    string
	Identity *backend.Identity
	// Resolving is true from process start or a token change until the
	// identity fetch for that token completes.
	Resolving bool
}

// Authenticated reports whether an identity is resolved.
func (s Session) Authenticated() bool {
	return s.Identity != nil
}
