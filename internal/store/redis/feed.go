package redis

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/utils"
)

// FeedEvent is one emission of a subscription: a full snapshot or an error.
// An error event is always the last one.
type FeedEvent struct {
	Snapshot *domain.Snapshot
	Err      error
}

// Subscribe streams full snapshots of uid's collections. The first event is
// the current snapshot; a new one follows every committed batch. The channel
// is closed when ctx is cancelled or after an error event. There is no
// automatic retry: call Subscribe again to resume.
func (s *Store) Subscribe(ctx context.Context, uid string) <-chan FeedEvent {
	out := make(chan FeedEvent)
	go s.runFeed(ctx, uid, out)
	return out
}

func (s *Store) runFeed(ctx context.Context, uid string, out chan<- FeedEvent) {
	defer close(out)

	send := func(ev FeedEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if uid == "" {
		send(FeedEvent{Err: domain.ErrPermission})
		return
	}

	pubsub := s.client.Subscribe(ctx, ChangesChannel(uid))
	defer utils.Close(pubsub)

	// Wait for the subscription to be confirmed so no commit slips between
	// the first snapshot and the first notification.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			send(FeedEvent{Err: domain.Transport("subscribe", err)})
		}
		return
	}

	lastRev := int64(-1)
	emit := func() bool {
		snap, err := s.LoadSnapshot(ctx, uid)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return false
			}
			send(FeedEvent{Err: err})
			return false
		}
		if snap.Revision == lastRev {
			return true
		}
		lastRev = snap.Revision
		return send(FeedEvent{Snapshot: snap})
	}

	if !emit() {
		return
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				send(FeedEvent{Err: domain.Transport("subscribe", errors.New("change feed closed"))})
				return
			}
			drain(messages)
			if !emit() {
				return
			}
		}
	}
}

// drain drops notifications already queued; one reload covers them all.
func drain[T any](ch <-chan T) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
