// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"insightst/cli/internal/auth"
	"insightst/cli/internal/guard"
)

// admit resolves the session for surface and returns the guard's decision.
// While the persisted token is being checked the pending outcome is shown as
// a spinner rather than guessing either way.
func (a *app) admit(ctx context.Context, surface guard.Surface) guard.Decision {
	a.mu.Lock()
	a.surface = surface
	a.mu.Unlock()

	if guard.Evaluate(a.session.Snapshot()) == guard.RenderPending {
		stop := startPendingSpinner(a.out, "Checking your session")
		a.session.Start(ctx)
		stop()
	}
	return guard.Admit(surface, a.session.Snapshot())
}

// requireSession admits a protected command. When nobody is signed in it
// prints the sign-in notice and reports false.
func (a *app) requireSession(ctx context.Context) (auth.Session, bool) {
	d := a.admit(ctx, guard.Protected)
	if d.Allow {
		return a.session.Snapshot(), true
	}
	if !a.sessionExpired() {
		a.printNotLoggedIn()
	}
	return auth.Session{}, false
}

func (a *app) printNotLoggedIn() {
	fmt.Fprintln(a.out, "🔒 You're not logged in yet!")
	fmt.Fprintf(a.out, "   Run 'insightst %s' to get started.\n", guard.EntryPoint)
}
