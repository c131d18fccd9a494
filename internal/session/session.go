// Copyright (c) 2026 Planora. All rights reserved.

/*
Package session owns the client's authentication state.

# Architecture

The [Store] is the single source of truth for "who is logged in and with what
credential". It is mutated exclusively by the lifecycle operations defined
here (Initialize, Login, Logout, FetchCurrentUser, token rotation); every
other component — the route guard, the navigation composer, the shell —
only reads immutable [Snapshot] values.

# Invariants

  - IsAuthenticated is true iff the access token is non-empty.
  - A user profile is never present while unauthenticated.
  - A response that arrives after the session epoch changed is dropped
    (generation guard), so a logout can never be undone by a late fetch.
*/
package session

import (
	"context"

	"github.com/planora/edt-client/internal/rbac"
)

// Credentials is a login form submission.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput holds the data required to enroll a new account.
//
// Registration is forwarded to the backend verbatim; the client performs only
// surface validation. A successful registration does not authenticate — the
// user signs in afterwards, mirroring the backend's email-verification flow.
type RegisterInput struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      rbac.Role `json:"role"`
	Phone     string    `json:"phone,omitempty"`
}

// LoginResult is a successfully established backend session.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *rbac.UserProfile
}

// AuthAPI is the backend authentication boundary consumed by the [Store].
//
// # Why an interface?
//
// The store must stay testable without a network: tests inject a fake that
// can block, fail, or answer out of order to exercise the stale-response
// guard. The production implementation lives in the edtapi package.
type AuthAPI interface {
	// Login exchanges credentials for a token pair and the user profile.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// CurrentUser fetches the profile for the held bearer token.
	CurrentUser(ctx context.Context) (*rbac.UserProfile, error)

	// Logout notifies the backend that the refresh token should be revoked.
	// Best effort: failures are ignored by the caller.
	Logout(ctx context.Context, refreshToken string) error

	// Register creates a new account without signing it in.
	Register(ctx context.Context, input RegisterInput) (*rbac.UserProfile, error)
}

// Snapshot is an immutable view of the session handed to readers.
type Snapshot struct {
	Token           string            `json:"-"`
	RefreshToken    string            `json:"-"`
	User            *rbac.UserProfile `json:"user,omitempty"`
	IsAuthenticated bool              `json:"is_authenticated"`
	IsLoading       bool              `json:"is_loading"`
	Error           string            `json:"error,omitempty"`
}

// Role returns the snapshot's role, or the absent role when no profile is
// loaded. This is the value fed into the rbac policy.
func (s Snapshot) Role() rbac.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
