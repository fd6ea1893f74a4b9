// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides what a surface may show for a given session. It only
// reads the session and is re-evaluated after every session change.
package guard

import "insightst/cli/internal/auth"

// Outcome is what the presentation layer should render.
type Outcome int

const (
	// RenderPending means the session is still resolving; show a placeholder.
	RenderPending Outcome = iota
	// RenderProtected means an identity is resolved.
	RenderProtected
	// RenderPublic means nobody is signed in.
	RenderPublic
)

func (o Outcome) String() string {
	switch o {
	case RenderPending:
		return "pending"
	case RenderProtected:
		return "protected"
	case RenderPublic:
		return "public"
	default:
		return "unknown"
	}
}

// Evaluate maps a session to an outcome. Resolving always wins, whatever the
// token and identity hold.
func Evaluate(s auth.Session) Outcome {
	switch {
	case s.Resolving:
		return RenderPending
	case s.Authenticated():
		return RenderProtected
	default:
		return RenderPublic
	}
}

// Surface classifies an entry point.
type Surface int

const (
	// Protected surfaces need a signed-in user.
	Protected Surface = iota
	// PublicOnly surfaces (sign in, create account) are for signed-out users.
	PublicOnly
)

// Where a denied surface sends the user.
const (
	EntryPoint = "login"
	Home       = "whoami"
)

// Decision is the result of Admit. Redirect is set only when Allow is false
// and the outcome is settled.
type Decision struct {
	Outcome  Outcome
	Allow    bool
	Redirect string
}

// Admit decides whether surface may render for s. While resolving nothing is
// allowed and nothing is redirected.
func Admit(surface Surface, s auth.Session) Decision {
	out := Evaluate(s)
	d := Decision{Outcome: out}
	switch {
	case out == RenderPending:
	case surface == Protected && out == RenderProtected:
		d.Allow = true
	case surface == Protected:
		d.Redirect = EntryPoint
	case surface == PublicOnly && out == RenderPublic:
		d.Allow = true
	default:
		d.Redirect = Home
	}
	return d
}
