// Copyright (c) 2026 Planora. All rights reserved.

/*
Package guard decides what happens when the user navigates to a route.

# Architecture

[Evaluate] is a pure function from a session snapshot and a role requirement
to a [Decision]; it has no side effects and carries the complete decision
ladder: loading, unauthenticated, profile missing, forbidden, allowed.

[Guard] wraps it with the two stateful concerns: resolving the route table
entry for a path, and kicking off the background profile fetch when a
restored session has no profile yet. The shell calls [Guard.Check] once per
navigation and renders whatever comes back — the guard never blocks.
*/
package guard

import (
	"github.com/planora/edt-client/internal/rbac"
	"github.com/planora/edt-client/internal/session"
)

// State is the outcome category of a navigation check.
type State string

const (
	// StateLoading means an auth operation is in progress; render a spinner.
	StateLoading State = "LOADING"

	// StateUnauthenticated means there is no session; redirect to login.
	StateUnauthenticated State = "UNAUTHENTICATED"

	// StateNoProfile means a token exists but the profile is not loaded yet.
	// A background fetch is running; render a spinner and re-check.
	StateNoProfile State = "NO_PROFILE"

	// StateForbidden means the user's role does not satisfy the route.
	StateForbidden State = "FORBIDDEN"

	// StateAllowed means the route may render.
	StateAllowed State = "ALLOWED"
)

// Decision is the result of one navigation check.
type Decision struct {
	State State `json:"state"`

	// RedirectTo is set for UNAUTHENTICATED: the login route.
	RedirectTo string `json:"redirect_to,omitempty"`

	// From is the originally requested path, preserved across the login
	// redirect so a successful sign-in can return the user there.
	From string `json:"from,omitempty"`
}

// Evaluate runs the decision ladder for one route requirement.
//
// The order is load-bearing: loading masks everything, authentication is
// checked before authorization, and a missing profile defers the role check
// rather than failing it — denying on missing data would flash "forbidden"
// at every restored session.
func Evaluate(snap session.Snapshot, required []rbac.Role, path string) Decision {
	switch {
	case snap.IsLoading:
		return Decision{State: StateLoading}
	case !snap.IsAuthenticated:
		return Decision{State: StateUnauthenticated, RedirectTo: "/login", From: path}
	case len(required) > 0 && snap.User == nil:
		return Decision{State: StateNoProfile}
	case len(required) > 0 && !rbac.IsAllowed(snap.Role(), required):
		return Decision{State: StateForbidden}
	default:
		return Decision{State: StateAllowed}
	}
}

// Guard evaluates navigations against the route table and the live session.
type Guard struct {
	store *session.Store
	table Table
}

// New builds a Guard over the session store and a route table.
func New(store *session.Store, table Table) *Guard {
	return &Guard{store: store, table: table}
}

// Check evaluates a navigation to path.
//
// Whenever the session is authenticated without a loaded profile it also
// triggers the background fetch (at most one in flight) — even on routes
// open to any role, since the navigation and header still need the profile.
// On NO_PROFILE the caller re-checks after a short delay, exactly like a
// spinner re-render.
func (g *Guard) Check(path string) Decision {
	snap := g.store.Snapshot()
	if snap.IsAuthenticated && snap.User == nil {
		g.store.EnsureUser()
	}
	return Evaluate(snap, g.table.Match(path), path)
}
