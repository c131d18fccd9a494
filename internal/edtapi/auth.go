// Copyright (c) 2026 Planora. All rights reserved.

package edtapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/internal/platform/apperr"
	"github.com/planora/edt-client/internal/rbac"
	"github.com/planora/edt-client/internal/session"
)

// AuthClient talks to the backend's auth application. It is the production
// implementation of [session.AuthAPI].
type AuthClient struct {
	gw  *gateway.Gateway
	log *slog.Logger
}

// NewAuthClient builds the auth client over the shared gateway.
func NewAuthClient(gw *gateway.Gateway, logger *slog.Logger) *AuthClient {
	return &AuthClient{gw: gw, log: logger}
}

// authResponse is the backend's login envelope.
type authResponse struct {
	Message string            `json:"message"`
	User    *rbac.UserProfile `json:"user"`
	Tokens  struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
}

// Login exchanges credentials for a token pair and the user profile.
//
// A 401 here means the credentials were wrong, not that a session died, so
// the error is downgraded to a recoverable one before it reaches the store.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*session.LoginResult, error) {
	var resp authResponse
	err := c.gw.PostAnonymous(ctx, "/api/auth/login/", session.Credentials{Email: email, Password: password}, &resp)
	if err != nil {
		if apperr.IsSessionInvalid(err) {
			return nil, apperr.BadCredentials("Email ou mot de passe incorrect.")
		}
		return nil, err
	}
	if resp.User == nil || resp.Tokens.Access == "" {
		return nil, apperr.Internal(errMalformedLogin)
	}

	return &session.LoginResult{
		AccessToken:  resp.Tokens.Access,
		RefreshToken: resp.Tokens.Refresh,
		User:         resp.User,
	}, nil
}

// CurrentUser fetches the profile for the held bearer token.
func (c *AuthClient) CurrentUser(ctx context.Context) (*rbac.UserProfile, error) {
	var user rbac.UserProfile
	if err := c.gw.Get(ctx, "/api/auth/profile/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout asks the backend to blacklist the refresh token. The logout view
// reads refresh_token, unlike the refresh endpoint's refresh field.
func (c *AuthClient) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.gw.PostAnonymous(ctx, "/api/auth/logout/", body, nil)
}

// registerRequest adds the confirmation field the backend serializer
// requires; the client never asks users to type a password twice over JSON.
type registerRequest struct {
	session.RegisterInput
	PasswordConfirm string `json:"password_confirm"`
}

// Register creates a new account. The account is not signed in: the backend
// sends an email verification first.
func (c *AuthClient) Register(ctx context.Context, input session.RegisterInput) (*rbac.UserProfile, error) {
	var user rbac.UserProfile
	req := registerRequest{RegisterInput: input, PasswordConfirm: input.Password}
	if err := c.gw.PostAnonymous(ctx, "/api/auth/register/", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the signed-in user's password.
func (c *AuthClient) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"current_password":     currentPassword,
		"new_password":         newPassword,
		"new_password_confirm": newPassword,
	}
	return c.gw.Post(ctx, "/api/auth/change-password/", body, nil)
}

// RequestPasswordReset starts the email-based reset flow.
func (c *AuthClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.gw.PostAnonymous(ctx, "/api/auth/password-reset/", map[string]string{"email": email}, nil)
}

// ConfirmPasswordReset completes the reset flow with the emailed token.
func (c *AuthClient) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.gw.PostAnonymous(ctx, "/api/auth/password-reset/confirm/", body, nil)
}

// errMalformedLogin guards against a 200 with a truncated envelope; treating
// it as success would establish a session with no credentials.
var errMalformedLogin = errors.New("login response missing user or tokens")
