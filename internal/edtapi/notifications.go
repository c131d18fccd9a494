// Copyright (c) 2026 Planora. All rights reserved.

package edtapi

import (
	"context"
	"fmt"

	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/pkg/pagination"
)

// NotificationsClient talks to the backend's notifications application.
type NotificationsClient struct {
	gw *gateway.Gateway
}

// NewNotificationsClient builds the notifications client over the shared gateway.
func NewNotificationsClient(gw *gateway.Gateway) *NotificationsClient {
	return &NotificationsClient{gw: gw}
}

// List returns one page of the signed-in user's notifications, newest first.
func (c *NotificationsClient) List(ctx context.Context, params pagination.Params) (pagination.Page[Notification], error) {
	var page pagination.Page[Notification]
	if err := c.gw.Get(ctx, "/api/notifications/"+params.Query(), &page); err != nil {
		return pagination.Page[Notification]{}, err
	}
	return page, nil
}

// UnreadCount returns the number of unread notifications. The poller calls
// this on every tick, so it must stay the cheapest call in the package.
func (c *NotificationsClient) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.gw.Get(ctx, "/api/notifications/unread-count/", &out); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

// MarkRead marks a single notification as read.
func (c *NotificationsClient) MarkRead(ctx context.Context, id int64) error {
	return c.gw.Post(ctx, fmt.Sprintf("/api/notifications/%d/read/", id), nil, nil)
}

// MarkAllRead marks every notification as read.
func (c *NotificationsClient) MarkAllRead(ctx context.Context) error {
	return c.gw.Post(ctx, "/api/notifications/mark-all-read/", nil, nil)
}

// Preferences fetches the delivery settings.
func (c *NotificationsClient) Preferences(ctx context.Context) (*NotificationPreference, error) {
	var prefs NotificationPreference
	if err := c.gw.Get(ctx, "/api/notifications/preferences/", &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences patches the delivery settings.
func (c *NotificationsClient) UpdatePreferences(ctx context.Context, prefs NotificationPreference) (*NotificationPreference, error) {
	var updated NotificationPreference
	if err := c.gw.Patch(ctx, "/api/notifications/preferences/", prefs, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
