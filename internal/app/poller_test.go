package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"festquiz/internal/domain"
	"github.com/jonboulle/clockwork"
)

func TestPollerStopsWhenHandlerIsDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fc := clockwork.NewFakeClock()
	rooms := newFakeRooms(func(call int) (domain.RoomSnapshot, error) {
		if call == 1 {
			return domain.RoomSnapshot{}, errors.New("timeout")
		}
		return domain.RoomSnapshot{AnswersLocked: call == 3}, nil
	})

	seen := 0
	h := StartPoller(ctx, fc, time.Second, 0, func(ctx context.Context) (domain.RoomSnapshot, error) {
		return rooms.Snapshot(ctx, "ROOM")
	}, func(snap domain.RoomSnapshot) bool {
		seen++
		return snap.AnswersLocked
	})

	for i := 0; i < 3; i++ {
		if err := fc.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("ticker not registered: %v", err)
		}
		fc.Advance(time.Second)
		rooms.waitCall(t)
	}

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not exit after handler finished")
	}
	if seen != 2 {
		t.Fatalf("expected handler to see 2 snapshots, got %d", seen)
	}
	h.Stop()
}

func TestPollerStopIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	h := StartPoller(context.Background(), fc, time.Second, 0, func(context.Context) (domain.RoomSnapshot, error) {
		return domain.RoomSnapshot{}, nil
	}, func(domain.RoomSnapshot) bool { return false })

	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not exit after stop")
	}
}
