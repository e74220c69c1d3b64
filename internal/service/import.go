package service

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// Import commits an import batch. Every written record gets updatedAt=now;
// records that did not exist before get createdAt=now unless the import
// carries one. A batch that would leave the folder graph with a cycle is
// rejected.
func (s *Service) Import(ctx context.Context, b *domain.Batch) (Result, error) {
	if _, err := user(ctx); err != nil {
		return Result{}, err
	}
	if b == nil || b.Len() == 0 {
		return Result{}, domain.NoOpf("nothing to import")
	}

	return s.fenced(ctx, "import", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		if id, ok := domain.NewFolderTree(mergeFolders(snap.Folders, b.Writes)).Cyclic(); ok {
			return nil, nil, domain.Validationf("import would make folder %s its own ancestor", id)
		}

		now := s.stamp()
		stamped := domain.Batch{Writes: make([]domain.Write, len(b.Writes))}
		ids := make([]string, 0, len(b.Writes))
		for i, w := range b.Writes {
			switch {
			case w.Bookmark != nil:
				p := *w.Bookmark
				p.UpdatedAt = &now
				w.Bookmark = &p
			case w.Folder != nil:
				p := *w.Folder
				p.UpdatedAt = &now
				w.Folder = &p
			}
			stamped.Writes[i] = w
			if w.ID != "" {
				ids = append(ids, w.ID)
			}
		}
		return &stamped, ids, nil
	})
}

// mergeFolders returns the folders as they would be after writes: stored
// folders patched by the folder writes, new ones appended, deleted ones gone.
func mergeFolders(stored []domain.Folder, writes []domain.Write) []domain.Folder {
	byID := make(map[string]int, len(stored))
	merged := make([]domain.Folder, 0, len(stored)+len(writes))
	for _, f := range stored {
		byID[f.ID] = len(merged)
		merged = append(merged, f)
	}

	deleted := make(map[string]bool)
	for _, w := range writes {
		if w.Collection != domain.CollectionFolders || w.ID == "" {
			continue
		}
		if w.Kind == domain.WriteDelete {
			deleted[w.ID] = true
			continue
		}
		i, ok := byID[w.ID]
		if !ok {
			if w.Kind == domain.WriteUpdate || w.Kind == domain.WriteAssert {
				continue
			}
			i = len(merged)
			byID[w.ID] = i
			merged = append(merged, domain.Folder{ID: w.ID})
		}
		delete(deleted, w.ID)
		if w.Folder != nil && w.Folder.SetParent {
			merged[i].ParentID = w.Folder.ParentID
		}
	}

	out := merged[:0]
	for _, f := range merged {
		if !deleted[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

// PurgeTrash permanently deletes the caller's bookmarks that entered the
// trash before cutoff. Bookmarks trashed without a recorded time fall back
// to their last update.
func (s *Service) PurgeTrash(ctx context.Context, cutoff time.Time) (Result, error) {
	return s.fenced(ctx, "purge_trash", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		var ids []string
		for i := range snap.Bookmarks {
			bk := &snap.Bookmarks[i]
			if !bk.IsTrashed {
				continue
			}
			at := bk.TrashedAt
			if at.IsZero() {
				at = bk.UpdatedAt
			}
			if at.IsZero() || !at.Before(cutoff) {
				continue
			}
			ids = append(ids, bk.ID)
		}
		if len(ids) == 0 {
			return nil, nil, nil
		}

		var b domain.Batch
		for _, id := range ids {
			b.DeleteBookmark(id)
		}
		return &b, ids, nil
	})
}
