// Copyright (c) 2026 Planora. All rights reserved.

package gateway_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/internal/platform/apperr"
)

// fakeTokens is an in-memory TokenSource for exercising the refresh protocol.
type fakeTokens struct {
	mu           sync.Mutex
	access       string
	refresh      string
	forcedReason string
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) ApplyAccessToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = token
}

func (f *fakeTokens) ForceLogout(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = ""
	f.refresh = ""
	f.forcedReason = reason
}

func (f *fakeTokens) forced() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forcedReason
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGateway(t *testing.T, baseURL string, tokens gateway.TokenSource) *gateway.Gateway {
	t.Helper()
	g, err := gateway.New(baseURL, tokens, testLogger())
	require.NoError(t, err)
	return g
}

// signedToken mints a token whose exp claim the gateway can read. The key is
// irrelevant: expiry is inspected without verification.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

/*
TestGet_AttachesBearer checks the plain happy path: bearer header set,
response decoded.
*/
func TestGet_AttachesBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/ping", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	g := newGateway(t, server.URL, &fakeTokens{access: "t1", refresh: "r1"})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, g.Get(context.Background(), "/api/ping", &out))
	assert.True(t, out.OK)
}

/*
TestUnauthorized_RefreshThenRetry: a 401 triggers exactly one refresh and one
retry carrying the rotated token.
*/
func TestUnauthorized_RefreshThenRetry(t *testing.T) {
	var refreshCalls, apiCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access": "fresh"}`))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Token is invalid or expired"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value": 42}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: "r1"}
	g := newGateway(t, server.URL, tokens)

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, g.Get(context.Background(), "/api/data", &out))

	assert.Equal(t, 42, out.Value)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), apiCalls.Load(), "original attempt plus one retry")
	assert.Equal(t, "fresh", tokens.AccessToken(), "rotation applied to the token source")
}

/*
TestConcurrent401_SingleRefresh: two requests that fail with 401 at the same
time share one refresh call, and both retries succeed with the new token.
*/
func TestConcurrent401_SingleRefresh(t *testing.T) {
	var refreshCalls, staleServed atomic.Int32
	bothStale := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		// Hold the refresh until both callers have seen their 401, which
		// guarantees the second caller joins the in-flight refresh.
		<-bothStale
		refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access": "fresh"}`))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			if staleServed.Add(1) == 2 {
				close(bothStale)
			}
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "expired"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value": 1}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: "r1"}
	g := newGateway(t, server.URL, tokens)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out struct {
				Value int `json:"value"`
			}
			errs[i] = g.Get(context.Background(), "/api/data", &out)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), refreshCalls.Load(), "concurrent 401s must share one refresh")
}

/*
TestRefreshRejected_ForcesLogout: a refresh token the backend refuses ends the
session. The caller gets a session-invalid error and no retry happens.
*/
func TestRefreshRejected_ForcesLogout(t *testing.T) {
	var apiCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Token is blacklisted"}`))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "expired"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: "dead"}
	g := newGateway(t, server.URL, tokens)

	err := g.Get(context.Background(), "/api/data", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsSessionInvalid(err))
	assert.Equal(t, int32(1), apiCalls.Load(), "no retry after a failed refresh")
	assert.Equal(t, "token refresh rejected", tokens.forced())
	assert.Empty(t, tokens.AccessToken())
}

/*
TestProactiveRefresh: a token inside the expiry skew window is rotated before
the request goes out, so the backend never sees the stale one.
*/
func TestProactiveRefresh(t *testing.T) {
	expiring := signedToken(t, time.Now().Add(5*time.Second))

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access": "fresh"}`))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &fakeTokens{access: expiring, refresh: "r1"}
	g := newGateway(t, server.URL, tokens)

	require.NoError(t, g.Get(context.Background(), "/api/data", nil))
	assert.Equal(t, int32(1), refreshCalls.Load())
}

/*
TestPostAnonymous: no bearer header, and a 401 surfaces directly instead of
triggering the refresh protocol.
*/
func TestPostAnonymous(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "No active account found"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g := newGateway(t, server.URL, &fakeTokens{access: "t1", refresh: "r1"})

	err := g.PostAnonymous(context.Background(), "/api/auth/login/", map[string]string{"email": "a@b.com"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), refreshCalls.Load(), "anonymous calls never refresh")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "No active account found", ae.Message)
}

/*
TestErrorTranslation covers the DRF response shapes: detail objects, field
maps, and plain 4xx/5xx statuses.
*/
func TestErrorTranslation(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"detail object", http.StatusNotFound, `{"detail": "Introuvable."}`, apperr.KindRecoverable, "Introuvable."},
		{"field map", http.StatusBadRequest, `{"email": ["Ce champ est obligatoire."]}`, apperr.KindRecoverable, "email: Ce champ est obligatoire."},
		{"empty body", http.StatusConflict, ``, apperr.KindRecoverable, "Conflict"},
		{"server error", http.StatusInternalServerError, `{"detail": "boom"}`, apperr.KindInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := newGateway(t, server.URL, &fakeTokens{access: "t1"})
			err := g.Get(context.Background(), "/api/x", nil)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantKind, ae.Kind)
			assert.Equal(t, tt.wantMsg, ae.Message)
		})
	}
}

/*
TestNetworkFailure_Transient: an unreachable backend yields a transient error
that must not touch session state.
*/
func TestNetworkFailure_Transient(t *testing.T) {
	tokens := &fakeTokens{access: "t1", refresh: "r1"}
	g := newGateway(t, "http://127.0.0.1:1", tokens)

	err := g.Get(context.Background(), "/api/data", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
	assert.Equal(t, "t1", tokens.AccessToken(), "session untouched")
}

/*
TestDownload extracts the filename from Content-Disposition and streams the
body untouched.
*/
func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="emploi_du_temps.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	g := newGateway(t, server.URL, &fakeTokens{access: "t1"})

	result, err := g.Download(context.Background(), "/api/reports/export/schedules/")
	require.NoError(t, err)
	defer result.Body.Close()

	assert.Equal(t, "emploi_du_temps.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)

	raw, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(raw))
}
