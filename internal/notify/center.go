// Copyright (c) 2026 Planora. All rights reserved.

/*
Package notify keeps the client's notification state current.

# Architecture

[Center] is the in-memory mirror of the user's notifications: the shell reads
it, the [Poller] and the explicit refresh operations write it. The [Poller]
periodically asks the backend for the unread counter — the cheapest call the
backend offers — and only the badge count is polled; the full list is fetched
on demand when the user opens the notification panel.
*/
package notify

import (
	"sync"

	"github.com/planora/edt-client/internal/edtapi"
)

// Center holds the mirrored notification state.
type Center struct {
	mu     sync.Mutex
	items  []edtapi.Notification
	unread int
}

// NewCenter returns an empty center.
func NewCenter() *Center {
	return &Center{}
}

// Replace swaps in a freshly fetched list and recomputes the unread count
// from it.
func (c *Center) Replace(items []edtapi.Notification) {
	unread := 0
	for _, item := range items {
		if !item.IsRead {
			unread++
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.unread = unread
}

// SetUnread installs the polled badge count without touching the list.
func (c *Center) SetUnread(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unread = count
}

// MarkRead flags one local item as read and decrements the badge. The
// backend call happens separately; the local state is optimistic.
func (c *Center) MarkRead(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id && !c.items[i].IsRead {
			c.items[i].IsRead = true
			if c.unread > 0 {
				c.unread--
			}
			return
		}
	}
}

// MarkAllRead flags every local item as read and zeroes the badge.
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].IsRead = true
	}
	c.unread = 0
}

// Clear drops all mirrored state. Called on logout.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.unread = 0
}

// Items returns a copy of the mirrored list.
func (c *Center) Items() []edtapi.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]edtapi.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Unread returns the badge count.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}
