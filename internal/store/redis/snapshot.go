package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// LoadSnapshot reads both collections of uid as one consistent snapshot.
//
// The read runs under WATCH on the revision key and finishes with an empty
// transaction, so a commit landing mid-read makes EXEC fail and the read is
// retried.
func (s *Store) LoadSnapshot(ctx context.Context, uid string) (*domain.Snapshot, error) {
	if uid == "" {
		return nil, domain.ErrPermission
	}

	for attempt := 1; attempt <= maxSnapshotAttempts; attempt++ {
		var snap *domain.Snapshot
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			var err error
			snap, err = s.readSnapshot(ctx, tx, uid)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Exists(ctx, RevisionKey(uid))
				return nil
			})
			return err
		}, RevisionKey(uid))

		switch {
		case err == nil:
			return snap, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, domain.Transport("load snapshot", err)
		}
	}
	return nil, domain.Transport("load snapshot",
		fmt.Errorf("revision kept changing after %d attempts", maxSnapshotAttempts))
}

func (s *Store) readSnapshot(ctx context.Context, tx *redis.Tx, uid string) (*domain.Snapshot, error) {
	rev, err := tx.Get(ctx, RevisionKey(uid)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}

	bookmarkIDs, err := tx.ZRevRange(ctx, BookmarksIndexKey(uid), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	folderIDs, err := tx.ZRange(ctx, FoldersIndexKey(uid), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get folder IDs: %w", err)
	}

	bookmarkCmds := make([]*redis.MapStringStringCmd, len(bookmarkIDs))
	tagCmds := make([]*redis.StringSliceCmd, len(bookmarkIDs))
	folderCmds := make([]*redis.MapStringStringCmd, len(folderIDs))

	if len(bookmarkIDs)+len(folderIDs) > 0 {
		_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range bookmarkIDs {
				bookmarkCmds[i] = pipe.HGetAll(ctx, BookmarkKey(uid, id))
				tagCmds[i] = pipe.SMembers(ctx, BookmarkTagsKey(uid, id))
			}
			for i, id := range folderIDs {
				folderCmds[i] = pipe.HGetAll(ctx, FolderKey(uid, id))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read documents: %w", err)
		}
	}

	snap := &domain.Snapshot{
		UserID:    uid,
		Revision:  rev,
		Bookmarks: make([]domain.Bookmark, 0, len(bookmarkIDs)),
		Folders:   make([]domain.Folder, 0, len(folderIDs)),
		TakenAt:   s.now().UTC(),
	}
	for i, id := range bookmarkIDs {
		h := bookmarkCmds[i].Val()
		if len(h) == 0 {
			// Index entry without a document.
			continue
		}
		tags := tagCmds[i].Val()
		sort.Strings(tags)
		snap.Bookmarks = append(snap.Bookmarks, decodeBookmark(id, h, tags))
	}
	for i, id := range folderIDs {
		h := folderCmds[i].Val()
		if len(h) == 0 {
			continue
		}
		snap.Folders = append(snap.Folders, decodeFolder(id, h))
	}
	return snap, nil
}
