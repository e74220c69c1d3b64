package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/metadata"
)

func nextEvent(t *testing.T, ch <-chan FeedEvent) FeedEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "feed closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
		return FeedEvent{}
	}
}

func TestSubscribe_InitialSnapshotThenCommits(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := s.Subscribe(ctx, uid)

	ev := nextEvent(t, feed)
	require.NoError(t, ev.Err)
	assert.Zero(t, ev.Snapshot.Revision)
	assert.Empty(t, ev.Snapshot.Bookmarks)

	var b domain.Batch
	b.CreateBookmark(domain.Bookmark{Type: domain.TypeText, Title: "t", TextContent: "t"})
	commit(t, s, &b)

	ev = nextEvent(t, feed)
	require.NoError(t, ev.Err)
	assert.Equal(t, int64(1), ev.Snapshot.Revision)
	assert.Len(t, ev.Snapshot.Bookmarks, 1)

	cancel()
	select {
	case _, ok := <-feed:
		for ok {
			_, ok = <-feed
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed not closed after cancel")
	}
}

func TestSubscribe_IsolatedPerUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	other := s.Subscribe(ctx, "someone-else")
	nextEvent(t, other)

	var b domain.Batch
	b.CreateBookmark(domain.Bookmark{Type: domain.TypeText, Title: "t", TextContent: "t"})
	commit(t, s, &b)

	select {
	case ev := <-other:
		t.Fatalf("unexpected event for another user: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribe_NoUser(t *testing.T) {
	s, _ := newTestStore(t)
	feed := s.Subscribe(context.Background(), "")
	ev := nextEvent(t, feed)
	assert.ErrorIs(t, ev.Err, domain.ErrPermission)
	_, ok := <-feed
	assert.False(t, ok)
}

func TestMetadataCache(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	url := "https://example.com"

	_, ok, err := s.CachedMetadata(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)

	title := "Example"
	require.NoError(t, s.CacheMetadata(ctx, url, metadata.Metadata{Title: &title}, time.Hour))

	got, ok, err := s.CachedMetadata(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Example", *got.Title)
	assert.Nil(t, got.Thumbnail)

	mr.FastForward(2 * time.Hour)
	_, ok, err = s.CachedMetadata(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CacheMetadata(ctx, url, metadata.Metadata{Title: &title}, time.Hour))
	require.NoError(t, s.FlushMetadata(ctx))
	_, ok, err = s.CachedMetadata(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)
}
