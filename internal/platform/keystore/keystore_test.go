// Copyright (c) 2026 Planora. All rights reserved.

package keystore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/edt-client/internal/platform/keystore"
)

/*
TestFileStore_RoundTrip verifies that a saved token pair survives a reload
through a brand new store instance, i.e. across process restarts.
*/
func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := keystore.NewFileStore(dir, "session.keystore", "unit-test-secret")
	require.NoError(t, err)

	// 1. Empty store reports a fresh start
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	// 2. Save, then reload with a new instance
	saved := keystore.Tokens{AccessToken: "t1", RefreshToken: "r1"}
	require.NoError(t, store.Save(ctx, saved))

	reopened, err := keystore.NewFileStore(dir, "session.keystore", "unit-test-secret")
	require.NoError(t, err)

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// 3. Clear wipes the pair and is idempotent
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

/*
TestFileStore_WrongSecret ensures a store opened with a different secret
cannot read the persisted tokens.
*/
func TestFileStore_WrongSecret(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := keystore.NewFileStore(dir, "session.keystore", "secret-a")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, keystore.Tokens{AccessToken: "t1", RefreshToken: "r1"}))

	intruder, err := keystore.NewFileStore(dir, "session.keystore", "secret-b")
	require.NoError(t, err)

	_, err = intruder.Load(ctx)
	assert.ErrorIs(t, err, keystore.ErrCorrupted)
}

/*
TestFileStore_TamperedFile ensures a modified keystore file fails to open
rather than yielding garbage tokens.
*/
func TestFileStore_TamperedFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := keystore.NewFileStore(dir, "session.keystore", "secret")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, keystore.Tokens{AccessToken: "t1", RefreshToken: "r1"}))

	path := filepath.Join(dir, "session.keystore")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// Flip one byte in the sealed region
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, keystore.ErrCorrupted)
}

/*
TestMemory_Lifecycle verifies the ephemeral backend honors the same contract
as the durable ones.
*/
func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := keystore.NewMemory()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	require.NoError(t, store.Save(ctx, keystore.Tokens{AccessToken: "t1"}))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", loaded.AccessToken)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}
