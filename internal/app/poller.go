package app

import (
	"context"
	"sync"
	"time"

	"festquiz/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// SnapshotFunc fetches the current room state.
type SnapshotFunc func(ctx context.Context) (domain.RoomSnapshot, error)

// SnapshotHandler reacts to a fetched snapshot and returns true once polling should stop.
type SnapshotHandler func(domain.RoomSnapshot) bool

// PollHandle controls a running poller. Stop is safe to call any number of
// times and from any goroutine, including from inside the handler.
type PollHandle struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Stop cancels the poller. It does not wait for an in-flight request.
func (h *PollHandle) Stop() {
	h.once.Do(h.cancel)
}

// Done is closed once the polling goroutine has exited.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

// StartPoller fetches a snapshot every interval until the handler asks to
// stop, the handle is stopped, or ctx is cancelled. Fetch failures are logged
// and retried on the next tick.
func StartPoller(ctx context.Context, clock clockwork.Clock, interval, timeout time.Duration, fetch SnapshotFunc, handle SnapshotHandler) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{cancel: cancel, done: make(chan struct{})}

	// Created before the goroutine so callers observe the ticker as soon as
	// StartPoller returns.
	ticker := clock.NewTicker(interval)

	go func() {
		defer close(h.done)
		defer ticker.Stop()
		defer h.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
			}

			snap, err := fetchWithTimeout(ctx, fetch, timeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Debug().Err(err).Msg("room poll failed, retrying next tick")
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if handle(snap) {
				return
			}
		}
	}()
	return h
}

func fetchWithTimeout(ctx context.Context, fetch SnapshotFunc, timeout time.Duration) (domain.RoomSnapshot, error) {
	if timeout <= 0 {
		return fetch(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fetch(ctx)
}
