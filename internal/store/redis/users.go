package redis

import (
	"context"
	"fmt"
	"sort"
)

// Users returns every user id that has committed at least one batch.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, UsersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user IDs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Stats returns bookmark and folder counts of uid without loading documents.
func (s *Store) Stats(ctx context.Context, uid string) (bookmarks, folders int64, err error) {
	pipe := s.client.Pipeline()
	b := pipe.ZCard(ctx, BookmarksIndexKey(uid))
	f := pipe.ZCard(ctx, FoldersIndexKey(uid))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return b.Val(), f.Val(), nil
}
