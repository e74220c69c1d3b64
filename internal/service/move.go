package service

import (
	"context"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// Move resolves a drop of src on dst and applies it as a single mutation.
// Dropping an item on itself issues nothing; a rejected drop returns ErrNoOp.
func (s *Service) Move(ctx context.Context, src domain.DragSource, dst domain.Location) (Result, error) {
	return s.fenced(ctx, "move", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		plan, err := domain.PlanMove(domain.NewFolderTree(snap.Folders), src, dst)
		if err != nil {
			return nil, nil, err
		}

		now := s.stamp()
		var b domain.Batch
		switch plan.Action {
		case domain.MoveNone:
			return nil, nil, nil
		case domain.MoveBookmarkToFolder:
			b.AssertFolder(plan.Target)
			b.UpdateBookmark(src.ID, domain.FilePatch(plan.Target))
		case domain.MoveBookmarkToTrash:
			b.UpdateBookmark(src.ID, domain.TrashPatch(now))
		case domain.MoveBookmarkUnfile:
			b.UpdateBookmark(src.ID, domain.UnfilePatch())
		case domain.MoveFolderUnder:
			target := plan.Target
			b.AssertFolder(target)
			b.UpdateFolder(src.ID, domain.FolderPatch{SetParent: true, ParentID: &target, UpdatedAt: &now})
		case domain.MoveFolderToRoot:
			b.UpdateFolder(src.ID, domain.FolderPatch{SetParent: true, ParentID: nil, UpdatedAt: &now})
		}
		return &b, []string{src.ID}, nil
	})
}
