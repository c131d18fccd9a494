// Copyright (c) 2026 Planora. All rights reserved.

package keystore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// File layout: magic | salt(16) | nonce(24) | secretbox(JSON tokens).
const (
	fileMagic = "PEDT1"
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// scrypt cost parameters. Interactive-level: the file is decrypted once per
// process start, so the derivation cost is paid rarely.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrCorrupted is returned when the keystore file cannot be authenticated.
// A wrong EDT_KEYSTORE_SECRET and a tampered file are indistinguishable.
var ErrCorrupted = errors.New("keystore: file corrupted or wrong secret")

// FileStore is an encrypted-at-rest [Store] backed by a single state file.
//
// # Security
//
// Tokens are bearer credentials: anyone holding the file and the secret can
// impersonate the user. The file is therefore sealed with a secretbox keyed
// by an scrypt derivation of the configured secret, written 0600, and
// replaced atomically so a crash never leaves a half-written pair.
type FileStore struct {
	path   string
	secret []byte
}

// NewFileStore creates a file-backed store at dir/name using the given secret.
func NewFileStore(dir, name, secret string) (*FileStore, error) {
	if secret == "" {
		return nil, errors.New("keystore: secret must not be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keystore: create state dir: %w", err)
	}
	return &FileStore{
		path:   filepath.Join(dir, name),
		secret: []byte(secret),
	}, nil
}

// Load implements [Store].
func (f *FileStore) Load(_ context.Context) (Tokens, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Tokens{}, ErrNotFound
		}
		return Tokens{}, fmt.Errorf("keystore: read %s: %w", f.path, err)
	}

	// ── 1. Frame Validation ───────────────────────────────────────────────
	header := len(fileMagic) + saltSize + nonceSize
	if len(raw) < header+secretbox.Overhead || string(raw[:len(fileMagic)]) != fileMagic {
		return Tokens{}, ErrCorrupted
	}

	salt := raw[len(fileMagic) : len(fileMagic)+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], raw[len(fileMagic)+saltSize:header])
	sealed := raw[header:]

	// ── 2. Key Derivation & Open ──────────────────────────────────────────
	key, err := f.deriveKey(salt)
	if err != nil {
		return Tokens{}, err
	}

	plain, ok := secretbox.Open(nil, sealed, &nonce, key)
	if !ok {
		return Tokens{}, ErrCorrupted
	}

	var tokens Tokens
	if err := json.Unmarshal(plain, &tokens); err != nil {
		return Tokens{}, ErrCorrupted
	}
	return tokens, nil
}

// Save implements [Store].
func (f *FileStore) Save(_ context.Context, tokens Tokens) error {
	plain, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("keystore: encode tokens: %w", err)
	}

	// ── 1. Fresh Salt & Nonce per Write ───────────────────────────────────
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("keystore: salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("keystore: nonce: %w", err)
	}

	key, err := f.deriveKey(salt)
	if err != nil {
		return err
	}

	// ── 2. Seal & Frame ───────────────────────────────────────────────────
	out := make([]byte, 0, len(fileMagic)+saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, fileMagic...)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plain, &nonce, key)

	// ── 3. Atomic Replace ─────────────────────────────────────────────────
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("keystore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("keystore: replace %s: %w", f.path, err)
	}
	return nil
}

// Clear implements [Store].
func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("keystore: remove %s: %w", f.path, err)
	}
	return nil
}

// deriveKey stretches the configured secret into a secretbox key.
func (f *FileStore) deriveKey(salt []byte) (*[keySize]byte, error) {
	derived, err := scrypt.Key(f.secret, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("keystore: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], derived)
	return &key, nil
}
