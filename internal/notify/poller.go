// Copyright (c) 2026 Planora. All rights reserved.

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/planora/edt-client/internal/platform/constants"
	"github.com/planora/edt-client/internal/session"
)

// CountSource fetches the unread badge count from the backend. The
// notifications API client is the production implementation.
type CountSource interface {
	UnreadCount(ctx context.Context) (int, error)
}

// Poller refreshes the badge count on a fixed interval while a session is
// active.
type Poller struct {
	store    *session.Store
	source   CountSource
	center   *Center
	interval time.Duration
	log      *slog.Logger
}

// NewPoller builds a poller. An interval below the configured minimum is
// clamped up to it.
func NewPoller(store *session.Store, source CountSource, center *Center, interval time.Duration, logger *slog.Logger) *Poller {
	if interval < constants.MinPollInterval {
		interval = constants.MinPollInterval
	}
	return &Poller{
		store:    store,
		source:   source,
		center:   center,
		interval: interval,
		log:      logger,
	}
}

// Run polls until ctx is cancelled. It ticks immediately on start, then on
// the interval. Ticks without an authenticated session are skipped silently;
// backend failures are logged and never mutate anything — the next tick
// simply tries again.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.store.Snapshot().IsAuthenticated {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.GatewayRequestTimeout)
	defer cancel()

	count, err := p.source.UnreadCount(callCtx)
	if err != nil {
		p.log.Debug("unread-count poll failed", slog.Any("error", err))
		return
	}
	p.center.SetUnread(count)
}
