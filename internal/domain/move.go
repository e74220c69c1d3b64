package domain

// ItemKind identifies what is being dragged.
type ItemKind string

const (
	ItemBookmark ItemKind = "bookmark"
	ItemFolder   ItemKind = "folder"
)

// DragSource is the dragged item.
type DragSource struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

// MoveAction is the mutation a drop resolves to.
type MoveAction int

const (
	// MoveNone issues no mutation.
	MoveNone MoveAction = iota
	// MoveBookmarkToFolder sets folderId=target, isTrashed=false.
	MoveBookmarkToFolder
	// MoveBookmarkToTrash trashes the bookmark.
	MoveBookmarkToTrash
	// MoveBookmarkUnfile sets folderId=null, isTrashed=false.
	MoveBookmarkUnfile
	// MoveFolderUnder sets parentId=target.
	MoveFolderUnder
	// MoveFolderToRoot sets parentId=null.
	MoveFolderToRoot
)

// MovePlan is the resolved outcome of a drop.
type MovePlan struct {
	Action MoveAction
	Source DragSource
	Target string // folder id for MoveBookmarkToFolder and MoveFolderUnder
}

// PlanMove resolves a drop of src on dst into a single mutation.
// A rejected drop returns an ErrNoOp error and must not be applied.
func PlanMove(tree *FolderTree, src DragSource, dst Location) (MovePlan, error) {
	plan := MovePlan{Action: MoveNone, Source: src}
	if src.ID == "" {
		return plan, Validationf("drag source needs an id")
	}

	if dst.Kind == LocationFolder && dst.Folder == src.ID {
		if src.Kind == ItemFolder {
			return plan, NoOpf("a folder cannot be moved into itself")
		}
		return plan, nil
	}

	switch src.Kind {
	case ItemBookmark:
		return planBookmark(plan, dst)
	case ItemFolder:
		return planFolder(tree, plan, dst)
	default:
		return plan, Validationf("unknown drag source kind %q", src.Kind)
	}
}

func planBookmark(plan MovePlan, dst Location) (MovePlan, error) {
	switch dst.Kind {
	case LocationFolder:
		plan.Action = MoveBookmarkToFolder
		plan.Target = dst.Folder
		return plan, nil
	case LocationStatic:
		switch dst.View {
		case ViewTrash:
			plan.Action = MoveBookmarkToTrash
			return plan, nil
		case ViewAllBookmarks, ViewFavorites, ViewRecent, ViewTagsRoot:
			plan.Action = MoveBookmarkUnfile
			return plan, nil
		}
	}
	return plan, NoOpf("cannot drop a bookmark on %s", dst)
}

func planFolder(tree *FolderTree, plan MovePlan, dst Location) (MovePlan, error) {
	switch {
	case dst.Kind == LocationFolder:
		if tree != nil && tree.IsAncestor(plan.Source.ID, dst.Folder) {
			return plan, NoOpf("a folder cannot be moved into its own subfolder")
		}
		plan.Action = MoveFolderUnder
		plan.Target = dst.Folder
		return plan, nil
	case dst.IsStatic(ViewAllBookmarks):
		plan.Action = MoveFolderToRoot
		return plan, nil
	default:
		return plan, NoOpf("folders can only be dropped on All Bookmarks or another folder")
	}
}
