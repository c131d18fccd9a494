// Copyright (c) 2026 Planora. All rights reserved.

/*
Package gateway is the single HTTP boundary between the client and the
timetable backend.

# Architecture

Every backend call in the process flows through [Gateway]: it attaches the
bearer credential, paces outbound traffic, translates failures into the
apperr taxonomy, and owns the token refresh protocol. API clients above it
(edtapi) deal in typed requests and never see raw *http.Response values.

# Refresh Protocol

The access token is short-lived; the refresh token rotates it.

  - Proactively: before a request is sent, a token within RefreshSkew of its
    expiry is refreshed first, avoiding a guaranteed 401 round trip.
  - Reactively: a 401 on an authenticated request triggers one refresh and
    one retry of the original request. A second 401 is final.

Concurrent 401s collapse into a single refresh call (singleflight); every
waiter retries with the rotated token. A refresh rejected by the backend
forces a logout through the [TokenSource] — the credentials are dead and no
amount of retrying changes that.
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/planora/edt-client/internal/platform/apperr"
	"github.com/planora/edt-client/internal/platform/constants"
	"github.com/planora/edt-client/internal/platform/ctxutil"
)

// maxErrorBody bounds how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// TokenSource supplies credentials to the gateway and receives rotation and
// invalidation events back. The session store is the production implementation.
type TokenSource interface {
	// AccessToken returns the current bearer token, or "" when signed out.
	AccessToken() string

	// RefreshToken returns the current refresh token, or "" when signed out.
	RefreshToken() string

	// ApplyAccessToken installs a rotated access token.
	ApplyAccessToken(token string)

	// ForceLogout clears the session after an irrecoverable refresh failure.
	ForceLogout(reason string)
}

// Gateway executes authenticated JSON requests against the backend.
type Gateway struct {
	base    string
	client  *http.Client
	tokens  TokenSource
	log     *slog.Logger
	limiter *rate.Limiter

	// refreshGroup collapses concurrent refresh attempts into one call.
	refreshGroup singleflight.Group
}

// New builds a Gateway for the backend at baseURL.
//
// The base URL must carry the scheme and host (and an optional path prefix);
// request paths are joined onto it verbatim.
func New(baseURL string, tokens TokenSource, logger *slog.Logger) (*Gateway, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("gateway: invalid base URL %q", baseURL)
	}

	return &Gateway{
		base:    strings.TrimRight(baseURL, "/"),
		client:  &http.Client{}, // deadlines come from the request context
		tokens:  tokens,
		log:     logger,
		limiter: rate.NewLimiter(rate.Limit(constants.DefaultGatewayRPS), constants.DefaultGatewayBurst),
	}, nil
}

// # JSON Verbs

// Get performs an authenticated GET and decodes the response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, nil, out, true)
}

// Post performs an authenticated POST with a JSON body.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPost, path, body, out, true)
}

// Put performs an authenticated PUT with a JSON body.
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPut, path, body, out, true)
}

// Patch performs an authenticated PATCH with a JSON body.
func (g *Gateway) Patch(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPatch, path, body, out, true)
}

// Delete performs an authenticated DELETE. Most backend resources answer
// with 204 and no body; pass a nil out in that case.
func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodDelete, path, nil, out, true)
}

// PostAnonymous performs a POST without a bearer token and without the
// refresh-retry protocol. Login, registration, and password reset use it;
// their 401s mean "bad credentials", not "dead session", and the caller
// translates them.
func (g *Gateway) PostAnonymous(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPost, path, body, out, false)
}

// # Downloads

// DownloadResult is a streamed file response. The caller owns Body and must
// close it.
type DownloadResult struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Download performs an authenticated GET for a binary export (PDF, Excel).
// The filename is taken from Content-Disposition when the backend sets one.
func (g *Gateway) Download(ctx context.Context, path string) (*DownloadResult, error) {
	return g.download(ctx, http.MethodGet, path, nil, "")
}

// PostDownload performs an authenticated POST whose response is a binary
// stream. The report export endpoints take their filters in the body.
func (g *Gateway) PostDownload(ctx context.Context, path string, body any) (*DownloadResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("encode POST %s: %w", path, err))
	}
	return g.download(ctx, http.MethodPost, path, payload, contentTypeJSON)
}

func (g *Gateway) download(ctx context.Context, method, path string, payload []byte, contentType string) (*DownloadResult, error) {
	resp, err := g.roundTrip(ctx, method, path, payload, contentType, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, g.decodeError(resp)
	}

	result := &DownloadResult{
		ContentType: resp.Header.Get(constants.HeaderContentType),
		Body:        resp.Body,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			result.Filename = params["filename"]
		}
	}
	return result, nil
}

// # Uploads

// Upload performs an authenticated multipart POST carrying one file plus
// extra form fields. The Excel import endpoint is the only consumer.
func (g *Gateway) Upload(ctx context.Context, path, field, filename string, content io.Reader, extra map[string]string, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return apperr.Internal(fmt.Errorf("upload %s: %w", path, err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return apperr.Internal(fmt.Errorf("upload %s: %w", path, err))
	}
	for key, value := range extra {
		if err := form.WriteField(key, value); err != nil {
			return apperr.Internal(fmt.Errorf("upload %s: %w", path, err))
		}
	}
	if err := form.Close(); err != nil {
		return apperr.Internal(fmt.Errorf("upload %s: %w", path, err))
	}

	resp, err := g.roundTrip(ctx, http.MethodPost, path, buf.Bytes(), form.FormDataContentType(), true)
	if err != nil {
		return err
	}
	return g.finish(resp, http.MethodPost, path, out)
}

// # Request Execution

const contentTypeJSON = "application/json"

// do runs one JSON request through the full protocol: pacing, bearer attach,
// proactive refresh, reactive refresh-and-retry, and error translation.
func (g *Gateway) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return apperr.Internal(fmt.Errorf("encode %s %s: %w", method, path, err))
		}
	}

	resp, err := g.roundTrip(ctx, method, path, payload, contentTypeJSON, authed)
	if err != nil {
		return err
	}
	return g.finish(resp, method, path, out)
}

// finish consumes a response: error translation, optional JSON decode.
func (g *Gateway) finish(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Internal(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// roundTrip sends the request once, refreshing proactively beforehand and
// reactively on a 401. The returned response body is open.
func (g *Gateway) roundTrip(ctx context.Context, method, path string, payload []byte, contentType string, authed bool) (*http.Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, apperr.Transient("request cancelled while pacing", err)
	}

	token := ""
	if authed {
		token = g.tokens.AccessToken()
		if token != "" && expiresWithin(token, constants.RefreshSkew) {
			if rotated, err := g.refreshAccess(ctx, token); err == nil {
				token = rotated
			}
			// Refresh failure here is not final: the request still goes out
			// with the old token and the 401 path gets the last word.
		}
	}

	resp, err := g.send(ctx, method, path, payload, contentType, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || !authed || token == "" {
		return resp, nil
	}
	resp.Body.Close()

	// ── 401: refresh once, retry once ─────────────────────────────────────
	rotated, err := g.refreshAccess(ctx, token)
	if err != nil {
		return nil, err
	}
	g.log.Debug("retrying after token refresh",
		slog.String("method", method),
		slog.String("path", path),
	)
	return g.send(ctx, method, path, payload, contentType, rotated)
}

// send builds and executes a single HTTP attempt.
func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, contentType, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build %s %s: %w", method, path, err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil && contentType != "" {
		req.Header.Set(constants.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		req.Header.Set(constants.HeaderXRequestID, requestID)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.Transient("backend unreachable", err)
	}
	return resp, nil
}

// # Token Refresh

// refreshRequest and refreshResponse mirror the backend's SimpleJWT contract.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refreshAccess rotates the access token through the refresh endpoint.
//
// staleToken is the bearer that just failed (or is about to expire): if
// another caller already rotated past it, the fresh token is returned without
// a second network call. Concurrent callers share one in-flight refresh.
// A rejected refresh token forces a logout before the error is returned.
func (g *Gateway) refreshAccess(ctx context.Context, staleToken string) (string, error) {
	rotated, err, _ := g.refreshGroup.Do("refresh", func() (any, error) {
		if current := g.tokens.AccessToken(); current != "" && current != staleToken {
			return current, nil
		}

		refresh := g.tokens.RefreshToken()
		if refresh == "" {
			return "", apperr.SessionInvalid("Session expirée. Veuillez vous reconnecter.", nil)
		}

		var result refreshResponse
		if err := g.refreshCall(ctx, refreshRequest{Refresh: refresh}, &result); err != nil {
			return "", err
		}
		if result.Access == "" {
			return "", apperr.SessionInvalid("Session expirée. Veuillez vous reconnecter.", nil)
		}

		g.tokens.ApplyAccessToken(result.Access)
		g.log.Debug("access token rotated")
		return result.Access, nil
	})
	if err != nil {
		if apperr.IsSessionInvalid(err) {
			g.tokens.ForceLogout("token refresh rejected")
		}
		return "", err
	}
	return rotated.(string), nil
}

// refreshCall posts to the refresh endpoint outside the normal verb path, so
// a failing refresh can never recurse into another refresh.
func (g *Gateway) refreshCall(ctx context.Context, body, out any) error {
	resp, err := g.send(ctx, http.MethodPost, "/api/auth/token/refresh/", mustJSON(body), contentTypeJSON, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// # Error Translation

// backendError is the shape of DRF error responses. Detail covers the common
// case; free-form field maps are flattened by decodeError.
type backendError struct {
	Detail string `json:"detail"`
}

// decodeError turns a non-2xx response into an [apperr.AppError].
func (g *Gateway) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := ""
	var be backendError
	if err := json.Unmarshal(raw, &be); err == nil && be.Detail != "" {
		detail = be.Detail
	} else if detail = firstFieldError(raw); detail == "" && len(raw) > 0 && !strings.HasPrefix(strings.TrimSpace(string(raw)), "<") {
		detail = strings.TrimSpace(string(raw))
	}

	appErr := apperr.FromStatus(resp.StatusCode, detail)
	g.log.Debug("backend error",
		slog.Int("status", resp.StatusCode),
		slog.String("code", appErr.Code),
	)
	return appErr
}

// firstFieldError extracts the first message from a DRF field-error map like
// {"email": ["Ce champ est obligatoire."]}.
func firstFieldError(raw []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	for field, value := range fields {
		var messages []string
		if err := json.Unmarshal(value, &messages); err == nil && len(messages) > 0 {
			return field + ": " + messages[0]
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil && single != "" {
			return field + ": " + single
		}
	}
	return ""
}

// # Helpers

// expiresWithin reports whether the JWT's exp claim falls inside the skew
// window. The signature is not verified: only the backend can do that, and
// the gateway merely wants a scheduling hint. Tokens without a readable exp
// are left to the reactive 401 path.
func expiresWithin(token string, skew time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < skew
}

// mustJSON marshals a value known to be encodable.
func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("gateway: unencodable value: %v", err))
	}
	return raw
}
