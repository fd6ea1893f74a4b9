// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "slices"

// EventKind classifies session notifications.
type EventKind int

const (
	// EventChanged fires when the token, identity or resolving flag changes.
	EventChanged EventKind = iota
	// EventInvalidated fires once when the service rejects the current credential
	// or its identity can no longer be resolved.
	EventInvalidated
	// EventLoggedOut fires on every explicit Logout.
	EventLoggedOut
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventInvalidated:
		return "invalidated"
	case EventLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Event carries the session as it was right after the change.
type Event struct {
	Kind    EventKind
	Session Session
}

// Subscribe registers fn for every event and returns a func that removes it.
// Handlers run synchronously on the goroutine that caused the change, after
// the manager's lock is released, so they may call back into the manager.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) emit(kind EventKind, s Session) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.mu.Unlock()

	m.log.Debug().Str("event", kind.String()).Bool("authenticated", s.Authenticated()).Bool("resolving", s.Resolving).Msg("session event")
	ev := Event{Kind: kind, Session: s}
	for _, fn := range fns {
		fn(ev)
	}
}
