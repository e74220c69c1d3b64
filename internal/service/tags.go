package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// RenameTag replaces oldTag with newTag on every bookmark carrying it.
func (s *Service) RenameTag(ctx context.Context, oldTag, newTag string) (Result, error) {
	if _, err := user(ctx); err != nil {
		return Result{}, err
	}
	newTag = strings.TrimSpace(newTag)
	switch {
	case newTag == "":
		return Result{}, domain.Validationf("new tag name is required")
	case newTag == oldTag:
		return Result{}, domain.Validationf("new tag name is unchanged")
	}

	return s.fenced(ctx, "rename_tag", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		if domain.ContainsTag(domain.UniqueTags(snap.Bookmarks), newTag) {
			return nil, nil, domain.Validationf("tag %q already exists", newTag)
		}
		holders := tagHolders(snap, oldTag)
		if len(holders) == 0 {
			return nil, nil, domain.Validationf("no bookmark carries tag %q", oldTag)
		}

		var b domain.Batch
		for _, id := range holders {
			b.UpdateBookmark(id, domain.BookmarkPatch{RemoveTags: []string{oldTag}, AddTags: []string{newTag}})
		}
		return &b, holders, nil
	})
}

// DeleteTag removes tag from every bookmark carrying it. An unused tag is
// not an error.
func (s *Service) DeleteTag(ctx context.Context, tag string) (Result, error) {
	uid, snap, err := s.current(ctx)
	if err != nil {
		return Result{}, err
	}

	holders := tagHolders(snap, tag)
	if len(holders) == 0 {
		return Result{IDs: []string{}, Revision: snap.Revision}, nil
	}

	var b domain.Batch
	for _, id := range holders {
		b.UpdateBookmark(id, domain.BookmarkPatch{RemoveTags: []string{tag}})
	}
	return s.commit(ctx, "delete_tag", uid, &b, holders)
}

func tagHolders(snap *domain.Snapshot, tag string) []string {
	var ids []string
	for i := range snap.Bookmarks {
		if snap.Bookmarks[i].HasTag(tag) {
			ids = append(ids, snap.Bookmarks[i].ID)
		}
	}
	return ids
}
