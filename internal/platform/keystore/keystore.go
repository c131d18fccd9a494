// Copyright (c) 2026 Planora. All rights reserved.

/*
Package keystore persists the session token pair across client restarts.

It is the only durable storage the client owns: everything else lives behind
the backend API. The store holds exactly two values — the access token and
the refresh token — and is read once at startup, written on login/refresh,
and wiped on logout.

Backends:

  - File: encrypted at rest (scrypt-derived key + NaCl secretbox).
  - Redis: for deployments that already run a local Redis, e.g. kiosk fleets.
  - Memory: ephemeral sessions and tests.

All backends are interchangeable behind the [Store] interface; the session
core never knows which one is wired.
*/
package keystore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no token pair has been persisted yet.
var ErrNotFound = errors.New("keystore: no persisted tokens")

// Tokens is the persisted credential pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store is the durable client storage boundary.
type Store interface {
	// Load reads the persisted token pair. It returns [ErrNotFound] when the
	// store is empty, which callers treat as a fresh start, not a failure.
	Load(ctx context.Context) (Tokens, error)

	// Save persists the token pair, replacing any previous value.
	Save(ctx context.Context, tokens Tokens) error

	// Clear wipes the persisted pair. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}

// # In-Memory Backend

// Memory is an ephemeral [Store] used for tests and --no-persist sessions.
type Memory struct {
	mu     sync.Mutex
	tokens Tokens
	loaded bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements [Store].
func (m *Memory) Load(_ context.Context) (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return Tokens{}, ErrNotFound
	}
	return m.tokens, nil
}

// Save implements [Store].
func (m *Memory) Save(_ context.Context, tokens Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	m.loaded = true
	return nil
}

// Clear implements [Store].
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	m.loaded = false
	return nil
}
