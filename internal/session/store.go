// Copyright (c) 2026 Planora. All rights reserved.

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/planora/edt-client/internal/platform/apperr"
	"github.com/planora/edt-client/internal/platform/constants"
	"github.com/planora/edt-client/internal/platform/keystore"
	"github.com/planora/edt-client/internal/rbac"
)

// Store is the process-wide session state container.
//
// # Concurrency
//
// One mutex guards all fields. Network calls happen outside the lock and
// their results are applied under it, which gives the documented
// last-write-wins semantics for user-paced operations like login.
type Store struct {
	mu   sync.Mutex
	log  *slog.Logger
	keys keystore.Store
	api  AuthAPI

	token        string
	refreshToken string
	user         *rbac.UserProfile
	isLoading    bool
	errMsg       string

	// generation identifies the current authenticated epoch. It changes on
	// every login, logout, and forced invalidation; a response captured under
	// an older generation is discarded instead of applied.
	generation string

	// fetchInFlight latches the profile fetch so the guard's
	// AUTHENTICATED_NO_PROFILE state triggers it at most once per transition.
	fetchInFlight bool
}

// New constructs a Store over the given durable keystore.
//
// The AuthAPI is attached afterwards via [Store.Bind]: the store is part of
// the gateway's token source, so it must exist before the gateway and the
// API clients built on top of it.
func New(keys keystore.Store, logger *slog.Logger) *Store {
	return &Store{
		log:        logger,
		keys:       keys,
		generation: uuid.NewString(),
	}
}

// Bind attaches the backend authentication client. Wiring-time only; it must
// be called exactly once, before any lifecycle operation runs.
func (s *Store) Bind(api AuthAPI) {
	s.api = api
}

// # Lifecycle Operations

// Initialize restores the persisted token pair from durable storage.
//
// It performs no network I/O and never blocks rendering: the profile for a
// restored token is fetched lazily by the route guard's first evaluation.
func (s *Store) Initialize(ctx context.Context) error {
	tokens, err := s.keys.Load(ctx)
	if err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			return nil // fresh start
		}
		// A corrupted keystore must not brick the client: start signed out.
		s.log.Warn("keystore unreadable, starting unauthenticated", slog.Any("error", err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.generation = uuid.NewString()
	return nil
}

// Login authenticates against the backend and establishes the session.
//
// # Flow
//
//  1. Clear any stale error, mark the session loading.
//  2. Exchange credentials outside the lock.
//  3. Apply the outcome under the lock (last write wins on races).
//  4. Persist the token pair to durable storage.
//
// Failures are recoverable: the error message is surfaced for the login
// form and the session stays unauthenticated.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.errMsg = ""
	s.isLoading = true
	api := s.api
	s.mu.Unlock()

	result, err := api.Login(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if err != nil {
		s.errMsg = loginErrorMessage(err)
		return err
	}

	// ── Apply the new authenticated epoch ─────────────────────────────────
	s.token = result.AccessToken
	s.refreshToken = result.RefreshToken
	s.user = result.User
	s.errMsg = ""
	s.generation = uuid.NewString()
	s.fetchInFlight = false

	s.persistLocked(ctx)

	s.log.Info("session established",
		slog.String("user", result.User.Username),
		slog.String("role", string(result.User.Role)),
	)
	return nil
}

// FetchCurrentUser populates the profile for a restored token.
//
// Valid only while authenticated with no profile loaded; any other state is
// a no-op. A token rejection here is the single self-healing path by which
// a stale persisted token becomes a forced logout. Plain network failures
// keep the session intact so the next navigation can retry.
func (s *Store) FetchCurrentUser(ctx context.Context) error {
	s.mu.Lock()
	if s.token == "" || s.user != nil || s.fetchInFlight {
		s.mu.Unlock()
		return nil
	}
	s.fetchInFlight = true
	gen := s.generation
	api := s.api
	s.mu.Unlock()

	profile, err := api.CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// ── Stale-response guard ──────────────────────────────────────────────
	// If the epoch changed while the request was in flight (logout, new
	// login), this response belongs to a dead session and must not be
	// applied — success included.
	if s.generation != gen {
		return nil
	}
	s.fetchInFlight = false

	if err != nil {
		if apperr.IsSessionInvalid(err) {
			s.log.Warn("stored token rejected, clearing session", slog.Any("error", err))
			s.invalidateLocked(ctx)
			return err
		}
		// Transient: keep the session, retry on the next guard evaluation.
		s.log.Warn("profile fetch failed, will retry", slog.Any("error", err))
		return err
	}

	s.user = profile
	return nil
}

// EnsureUser triggers a background profile fetch when the guard lands in the
// authenticated-without-profile state. It reports whether a fetch was
// actually started; repeat calls while one is in flight are no-ops.
func (s *Store) EnsureUser() bool {
	s.mu.Lock()
	needed := s.token != "" && s.user == nil && !s.fetchInFlight
	s.mu.Unlock()
	if !needed {
		return false
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.GatewayRequestTimeout)
		defer cancel()
		// Errors are already translated into state transitions inside.
		_ = s.FetchCurrentUser(ctx)
	}()
	return true
}

// Logout clears the session, wipes durable storage, and notifies the backend
// best-effort. It is idempotent: logging out twice is harmless.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	refresh := s.refreshToken
	s.clearLocked()
	s.mu.Unlock()

	if err := s.keys.Clear(ctx); err != nil {
		s.log.Warn("keystore clear failed", slog.Any("error", err))
	}

	// Revoking the refresh token server-side is a courtesy, not a
	// requirement: the local session is already gone either way.
	if refresh != "" && s.api != nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), constants.LogoutNotifyTimeout)
		defer cancel()
		if err := s.api.Logout(notifyCtx, refresh); err != nil {
			s.log.Debug("backend logout notification failed", slog.Any("error", err))
		}
	}
}

// ClearError resets the surfaced error before a new login attempt, so a
// stale failure message does not linger on the form.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Register forwards an enrollment request. It never mutates authentication
// state; a failure is surfaced like a recoverable login error.
func (s *Store) Register(ctx context.Context, input RegisterInput) (*rbac.UserProfile, error) {
	s.mu.Lock()
	s.errMsg = ""
	s.isLoading = true
	api := s.api
	s.mu.Unlock()

	profile, err := api.Register(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	if err != nil {
		s.errMsg = loginErrorMessage(err)
		return nil, err
	}
	return profile, nil
}

// # Read Access

// Snapshot returns an immutable view of the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Token:           s.token,
		RefreshToken:    s.refreshToken,
		User:            s.user,
		IsAuthenticated: s.token != "",
		IsLoading:       s.isLoading,
		Error:           s.errMsg,
	}
}

// # Gateway Token Source
//
// The API gateway reads and rotates credentials through these methods; they
// make the Store the only holder of token state in the process.

// AccessToken returns the current bearer credential, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// RefreshToken returns the current refresh credential, or "" when signed out.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// ApplyAccessToken installs a rotated access token after a successful
// refresh and persists the updated pair.
//
// The rotation is ignored if the session was cleared while the refresh was
// in flight — a late refresh must not resurrect a dead session.
func (s *Store) ApplyAccessToken(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.token = token
	s.persistLocked(context.Background())
}

// ForceLogout clears the session after an irrecoverable authorization
// failure (refresh rejected, token revoked). Unlike [Store.Logout] it does
// not notify the backend: the credentials are already dead.
func (s *Store) ForceLogout(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" && s.user == nil {
		return
	}
	s.log.Warn("session invalidated", slog.String("reason", reason))
	s.invalidateLocked(context.Background())
}

// # Internals

// clearLocked resets every session field and opens a new epoch.
// Callers must hold the mutex.
func (s *Store) clearLocked() {
	s.token = ""
	s.refreshToken = ""
	s.user = nil
	s.errMsg = ""
	s.isLoading = false
	s.fetchInFlight = false
	s.generation = uuid.NewString()
}

// invalidateLocked clears state and wipes durable storage.
// Callers must hold the mutex.
func (s *Store) invalidateLocked(ctx context.Context) {
	s.clearLocked()
	if err := s.keys.Clear(ctx); err != nil {
		s.log.Warn("keystore clear failed", slog.Any("error", err))
	}
}

// persistLocked writes the current pair to durable storage.
// Persistence failures are logged, not fatal: the in-memory session keeps
// working for the lifetime of the process.
func (s *Store) persistLocked(ctx context.Context) {
	err := s.keys.Save(ctx, keystore.Tokens{
		AccessToken:  s.token,
		RefreshToken: s.refreshToken,
	})
	if err != nil {
		s.log.Warn("keystore save failed", slog.Any("error", err))
	}
}

// loginErrorMessage extracts a form-safe message from a failure.
func loginErrorMessage(err error) string {
	if ae := apperr.As(err); ae != nil {
		return ae.Message
	}
	return "Connexion impossible. Veuillez réessayer."
}
