// Copyright (c) 2026 Planora. All rights reserved.

package rbac

// UserProfile is the server-supplied identity of the signed-in account.
//
// # Rules
//   - Immutable from the client's perspective within a session.
//   - Replaced wholesale on re-fetch, never patched field by field.
//   - JSON tags mirror the backend's user serializer.
type UserProfile struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	FullName        string `json:"full_name"`
	Role            Role   `json:"role"`
	RoleDisplay     string `json:"role_display"`
	Phone           string `json:"phone,omitempty"`
	Avatar          string `json:"avatar,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified"`
	DateJoined      string `json:"date_joined"`
	LastLogin       string `json:"last_login,omitempty"`
}

// DisplayName returns the name rendered in the header and navigation.
func (u *UserProfile) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if name != "" && u.LastName != "" {
			name += " "
		}
		return name + u.LastName
	}
	return u.Username
}
