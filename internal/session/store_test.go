// Copyright (c) 2026 Planora. All rights reserved.

package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/edt-client/internal/platform/apperr"
	"github.com/planora/edt-client/internal/platform/keystore"
	"github.com/planora/edt-client/internal/rbac"
	"github.com/planora/edt-client/internal/session"
)

// fakeAuthAPI scripts backend behavior per test.
type fakeAuthAPI struct {
	mu          sync.Mutex
	loginFn     func(email, password string) (*session.LoginResult, error)
	currentFn   func() (*rbac.UserProfile, error)
	gate        chan struct{} // when set, CurrentUser blocks until closed
	logoutCalls int
}

func (f *fakeAuthAPI) Login(_ context.Context, email, password string) (*session.LoginResult, error) {
	return f.loginFn(email, password)
}

func (f *fakeAuthAPI) CurrentUser(_ context.Context) (*rbac.UserProfile, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.currentFn()
}

func (f *fakeAuthAPI) Logout(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return nil
}

func (f *fakeAuthAPI) Register(_ context.Context, input session.RegisterInput) (*rbac.UserProfile, error) {
	return &rbac.UserProfile{Username: input.Username, Role: input.Role}, nil
}

func adminProfile() *rbac.UserProfile {
	return &rbac.UserProfile{ID: 1, Username: "admin", FullName: "Alice Admin", Role: rbac.RoleAdmin}
}

func newStore(t *testing.T, api session.AuthAPI) (*session.Store, *keystore.Memory) {
	t.Helper()
	keys := keystore.NewMemory()
	store := session.New(keys, slog.New(slog.NewTextHandler(io.Discard, nil)))
	store.Bind(api)
	return store, keys
}

// assertInvariant checks the core session invariant on a snapshot.
func assertInvariant(t *testing.T, snap session.Snapshot) {
	t.Helper()
	assert.Equal(t, snap.Token != "", snap.IsAuthenticated, "isAuthenticated must track token presence")
	if !snap.IsAuthenticated {
		assert.Nil(t, snap.User, "profile must never outlive authentication")
	}
}

/*
TestLogin_Success verifies the full happy path: tokens applied, profile set,
error cleared, pair persisted to durable storage.
*/
func TestLogin_Success(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(email, password string) (*session.LoginResult, error) {
			assert.Equal(t, "a@b.com", email)
			return &session.LoginResult{AccessToken: "t1", RefreshToken: "r1", User: adminProfile()}, nil
		},
	}
	store, keys := newStore(t, api)

	require.NoError(t, store.Login(context.Background(), "a@b.com", "secret"))

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, rbac.RoleAdmin, snap.Role())
	assert.Empty(t, snap.Error)

	persisted, err := keys.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", persisted.AccessToken)
	assert.Equal(t, "r1", persisted.RefreshToken)
}

/*
TestLogin_Failure keeps the session unauthenticated and surfaces a
form-safe error message the UI can render.
*/
func TestLogin_Failure(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(string, string) (*session.LoginResult, error) {
			return nil, apperr.BadCredentials("Identifiants invalides")
		},
	}
	store, _ := newStore(t, api)

	err := store.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.False(t, snap.IsAuthenticated)
	assert.Equal(t, "Identifiants invalides", snap.Error)
	assert.False(t, snap.IsLoading)

	// ClearError resets the surfaced message before the next attempt.
	store.ClearError()
	assert.Empty(t, store.Snapshot().Error)
}

/*
TestInitialize_RestoresTokens loads the persisted pair without touching the
network: authenticated, but no profile until the guard asks for one.
*/
func TestInitialize_RestoresTokens(t *testing.T) {
	keys := keystore.NewMemory()
	require.NoError(t, keys.Save(context.Background(), keystore.Tokens{AccessToken: "t1", RefreshToken: "r1"}))

	store := session.New(keys, slog.New(slog.NewTextHandler(io.Discard, nil)))
	store.Bind(&fakeAuthAPI{})
	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.True(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
}

/*
TestFetchCurrentUser_SelfHealing: a rejected stored token clears the entire
session and wipes durable storage — the forced-logout path.
*/
func TestFetchCurrentUser_SelfHealing(t *testing.T) {
	keys := keystore.NewMemory()
	require.NoError(t, keys.Save(context.Background(), keystore.Tokens{AccessToken: "stale", RefreshToken: "r"}))

	api := &fakeAuthAPI{
		currentFn: func() (*rbac.UserProfile, error) {
			return nil, apperr.SessionInvalid("Session expirée", nil)
		},
	}
	store := session.New(keys, slog.New(slog.NewTextHandler(io.Discard, nil)))
	store.Bind(api)
	require.NoError(t, store.Initialize(context.Background()))

	err := store.FetchCurrentUser(context.Background())
	require.Error(t, err)

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)

	_, err = keys.Load(context.Background())
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

/*
TestFetchCurrentUser_TransientFailure keeps the session intact so the next
navigation can retry the profile fetch.
*/
func TestFetchCurrentUser_TransientFailure(t *testing.T) {
	keys := keystore.NewMemory()
	require.NoError(t, keys.Save(context.Background(), keystore.Tokens{AccessToken: "t1"}))

	calls := 0
	api := &fakeAuthAPI{
		currentFn: func() (*rbac.UserProfile, error) {
			calls++
			if calls == 1 {
				return nil, apperr.Transient("backend unreachable", errors.New("dial tcp: timeout"))
			}
			return adminProfile(), nil
		},
	}
	store := session.New(keys, slog.New(slog.NewTextHandler(io.Discard, nil)))
	store.Bind(api)
	require.NoError(t, store.Initialize(context.Background()))

	// First attempt fails transiently: still authenticated, no profile.
	require.Error(t, store.FetchCurrentUser(context.Background()))
	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.True(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)

	// Retry succeeds.
	require.NoError(t, store.FetchCurrentUser(context.Background()))
	assert.Equal(t, rbac.RoleAdmin, store.Snapshot().Role())
}

/*
TestStaleResponseGuard: a profile fetch that resolves after a logout must
not resurrect the session — success included.
*/
func TestStaleResponseGuard(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAuthAPI{
		gate: gate,
		currentFn: func() (*rbac.UserProfile, error) {
			return adminProfile(), nil
		},
	}
	keys := keystore.NewMemory()
	require.NoError(t, keys.Save(context.Background(), keystore.Tokens{AccessToken: "t1", RefreshToken: "r1"}))

	store := session.New(keys, slog.New(slog.NewTextHandler(io.Discard, nil)))
	store.Bind(api)
	require.NoError(t, store.Initialize(context.Background()))

	// 1. Start the fetch; it parks on the gate.
	done := make(chan error, 1)
	go func() { done <- store.FetchCurrentUser(context.Background()) }()

	// Wait for the fetch to latch before logging out.
	require.Eventually(t, func() bool {
		return !store.EnsureUser() // no-op while one is in flight
	}, time.Second, 5*time.Millisecond)

	// 2. Log out mid-flight.
	store.Logout(context.Background())

	// 3. Let the original request resolve successfully.
	close(gate)
	require.NoError(t, <-done)

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.False(t, snap.IsAuthenticated, "late response must not re-authenticate")
	assert.Nil(t, snap.User)
}

/*
TestLogout_Idempotent: clearing an already-clear session is harmless and the
backend revocation is only attempted when a refresh token existed.
*/
func TestLogout_Idempotent(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(string, string) (*session.LoginResult, error) {
			return &session.LoginResult{AccessToken: "t1", RefreshToken: "r1", User: adminProfile()}, nil
		},
	}
	store, keys := newStore(t, api)
	require.NoError(t, store.Login(context.Background(), "a@b.com", "secret"))

	store.Logout(context.Background())
	store.Logout(context.Background())

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.False(t, snap.IsAuthenticated)

	_, err := keys.Load(context.Background())
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.logoutCalls, "second logout had no refresh token to revoke")
}

/*
TestApplyAccessToken_IgnoredAfterLogout: a token rotation landing after the
session was cleared must not re-authenticate.
*/
func TestApplyAccessToken_IgnoredAfterLogout(t *testing.T) {
	store, _ := newStore(t, &fakeAuthAPI{})

	store.ApplyAccessToken("rotated")
	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.False(t, snap.IsAuthenticated)
}

/*
TestForceLogout clears everything exactly like the fetch self-healing path.
*/
func TestForceLogout(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(string, string) (*session.LoginResult, error) {
			return &session.LoginResult{AccessToken: "t1", RefreshToken: "r1", User: adminProfile()}, nil
		},
	}
	store, keys := newStore(t, api)
	require.NoError(t, store.Login(context.Background(), "a@b.com", "secret"))

	store.ForceLogout("refresh rejected")

	snap := store.Snapshot()
	assertInvariant(t, snap)
	assert.False(t, snap.IsAuthenticated)
	_, err := keys.Load(context.Background())
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}
