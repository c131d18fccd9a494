// Copyright (c) 2026 Planora. All rights reserved.

/*
Package constants provides centralized, immutable values for the EDT client.

It defines default timeouts, polling intervals, and cross-cutting keys that
are shared between the session core, the API gateway, and the local shell.

Categories:

  - Shell Timing: Read/Write/Idle timeouts for the local UI server.
  - Gateway Timing: Outbound request deadlines and refresh skew.
  - Storage: Keystore file format and Redis key taxonomy.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the session and gateway logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "planora-edt"
	AppVersion = "0.1.0-dev"
)

// # Shell Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests during shutdown.
	ShutdownTimeout = 15 * time.Second
)

// # Gateway Timing

const (
	// GatewayRequestTimeout is the per-request deadline for backend calls.
	GatewayRequestTimeout = 30 * time.Second

	// DownloadTimeout is the deadline for report export downloads, which can
	// take noticeably longer than regular JSON calls.
	DownloadTimeout = 2 * time.Minute

	// RefreshSkew is how close to its expiry an access token may get before
	// the gateway refreshes it proactively instead of waiting for a 401.
	RefreshSkew = 30 * time.Second

	// LogoutNotifyTimeout bounds the best-effort backend logout notification.
	LogoutNotifyTimeout = 3 * time.Second
)

// # Gateway Pacing

const (
	// DefaultGatewayRPS is the requests per second allowed toward the backend.
	DefaultGatewayRPS = 20.0

	// DefaultGatewayBurst is the token bucket burst for outbound calls.
	DefaultGatewayBurst = 40
)

// # Shell Rate Limiting

const (
	// DefaultShellRPS is the requests per second allowed per client of the shell.
	DefaultShellRPS = 50.0

	// DefaultShellBurst is the maximum burst allowed by the shell limiter.
	DefaultShellBurst = 100

	// RateLimitCleanupInterval is how often idle limiter entries are removed.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before eviction.
	RateLimitClientTTL = 3 * time.Minute
)

// # Notifications

const (
	// DefaultPollInterval is how often the notification poller queries the backend.
	DefaultPollInterval = 30 * time.Second

	// MinPollInterval is the lower bound accepted from configuration.
	MinPollInterval = 5 * time.Second
)

// # Durable Storage

const (
	// KeystoreFileName is the default token file under the state directory.
	KeystoreFileName = "session.keystore"

	// RedisKeyTokens is the Redis key holding the persisted token pair.
	RedisKeyTokens = "edt:client:tokens"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
)
