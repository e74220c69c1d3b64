package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// BulkTrash moves every selected bookmark to the trash in one batch.
func (s *Service) BulkTrash(ctx context.Context, ids []string) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return Result{}, domain.NoOpf("no bookmarks selected")
	}

	now := s.stamp()
	var b domain.Batch
	for _, id := range ids {
		b.UpdateBookmark(id, domain.TrashPatch(now))
	}
	return s.commit(ctx, "bulk_trash", uid, &b, ids)
}

// BulkMove files every selected bookmark into folderID, taking trashed ones
// out of the trash.
func (s *Service) BulkMove(ctx context.Context, ids []string, folderID string) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	if folderID = strings.TrimSpace(folderID); folderID == "" {
		return Result{}, domain.Validationf("a target folder is required")
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return Result{}, domain.NoOpf("no bookmarks selected")
	}

	var b domain.Batch
	b.AssertFolder(folderID)
	for _, id := range ids {
		b.UpdateBookmark(id, domain.FilePatch(folderID))
	}
	return s.commit(ctx, "bulk_move", uid, &b, ids)
}

// BulkAddTags adds tags to every selected bookmark, keeping existing ones.
func (s *Service) BulkAddTags(ctx context.Context, ids []string, tags []string) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	tags = domain.NormalizeTags(tags)
	if len(tags) == 0 {
		return Result{}, domain.Validationf("at least one tag is required")
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return Result{}, domain.NoOpf("no bookmarks selected")
	}

	var b domain.Batch
	for _, id := range ids {
		b.UpdateBookmark(id, domain.BookmarkPatch{AddTags: tags})
	}
	return s.commit(ctx, "bulk_add_tags", uid, &b, ids)
}
