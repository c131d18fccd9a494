// Copyright (c) 2026 Planora. All rights reserved.

package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/planora/edt-client/internal/platform/constants"
)

// Opinionated default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// RedisStore is a [Store] backed by a Redis instance.
//
// It exists for kiosk-style deployments where the client process is
// disposable but the signed-in session must survive container restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses a Redis URL, verifies connectivity, and returns a
// ready-to-use token store.
func NewRedisStore(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisStore, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("keystore: invalid redis URL: %w", err)
	}

	// A single-user token store needs no pool depth.
	options.PoolSize = 2
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	// Validate connectivity immediately at startup.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("keystore: redis ping failed: %w", err)
	}

	logger.Info("redis keystore connected", slog.String("addr", options.Addr))

	return &RedisStore{client: client}, nil
}

// Load implements [Store].
func (r *RedisStore) Load(ctx context.Context) (Tokens, error) {
	raw, err := r.client.Get(ctx, constants.RedisKeyTokens).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Tokens{}, ErrNotFound
		}
		return Tokens{}, fmt.Errorf("keystore: redis get failed: %w", err)
	}

	var tokens Tokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return Tokens{}, fmt.Errorf("keystore: decode persisted tokens: %w", err)
	}
	return tokens, nil
}

// Save implements [Store].
func (r *RedisStore) Save(ctx context.Context, tokens Tokens) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("keystore: encode tokens: %w", err)
	}

	// No TTL: the pair stays until logout or replacement. Expiry is enforced
	// by the backend on the tokens themselves, not by the store.
	if err := r.client.Set(ctx, constants.RedisKeyTokens, raw, 0).Err(); err != nil {
		return fmt.Errorf("keystore: redis set failed: %w", err)
	}
	return nil
}

// Clear implements [Store].
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, constants.RedisKeyTokens).Err(); err != nil {
		return fmt.Errorf("keystore: redis del failed: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
