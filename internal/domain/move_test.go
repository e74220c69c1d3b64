package domain

import (
	"errors"
	"testing"
)

// f1 -> f2 -> f3, f4 at root.
func fixtureTree() *FolderTree {
	return NewFolderTree([]Folder{
		{ID: "f1", Name: "Work"},
		{ID: "f2", Name: "Projects", ParentID: StringPtr("f1")},
		{ID: "f3", Name: "Archive", ParentID: StringPtr("f2")},
		{ID: "f4", Name: "Personal"},
	})
}

func TestPlanMoveBookmark(t *testing.T) {
	tree := fixtureTree()

	tests := []struct {
		name   string
		dst    Location
		action MoveAction
		target string
	}{
		{name: "onto folder", dst: InFolder("f3"), action: MoveBookmarkToFolder, target: "f3"},
		{name: "onto trash", dst: Static(ViewTrash), action: MoveBookmarkToTrash},
		{name: "onto all bookmarks", dst: AllBookmarks, action: MoveBookmarkUnfile},
		{name: "onto favorites", dst: Static(ViewFavorites), action: MoveBookmarkUnfile},
		{name: "onto recent", dst: Static(ViewRecent), action: MoveBookmarkUnfile},
		{name: "onto tags", dst: Static(ViewTagsRoot), action: MoveBookmarkUnfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanMove(tree, DragSource{Kind: ItemBookmark, ID: "b1"}, tt.dst)
			if err != nil {
				t.Fatalf("PlanMove() error = %v", err)
			}
			if plan.Action != tt.action || plan.Target != tt.target {
				t.Errorf("PlanMove() = %+v, want action %v target %q", plan, tt.action, tt.target)
			}
		})
	}
}

func TestPlanMoveFolder(t *testing.T) {
	tree := fixtureTree()

	tests := []struct {
		name     string
		src      string
		dst      Location
		action   MoveAction
		target   string
		rejected bool
	}{
		{name: "under sibling", src: "f4", dst: InFolder("f2"), action: MoveFolderUnder, target: "f2"},
		{name: "deep folder up to root", src: "f3", dst: AllBookmarks, action: MoveFolderToRoot},
		{name: "onto itself", src: "f1", dst: InFolder("f1"), rejected: true},
		{name: "under own child", src: "f1", dst: InFolder("f2"), rejected: true},
		{name: "under own grandchild", src: "f1", dst: InFolder("f3"), rejected: true},
		{name: "onto trash", src: "f4", dst: Static(ViewTrash), rejected: true},
		{name: "onto favorites", src: "f4", dst: Static(ViewFavorites), rejected: true},
		{name: "onto recent", src: "f4", dst: Static(ViewRecent), rejected: true},
		{name: "onto tags", src: "f4", dst: Static(ViewTagsRoot), rejected: true},
		{name: "under own parent", src: "f3", dst: InFolder("f1"), action: MoveFolderUnder, target: "f1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanMove(tree, DragSource{Kind: ItemFolder, ID: tt.src}, tt.dst)
			if tt.rejected {
				if !errors.Is(err, ErrNoOp) {
					t.Fatalf("PlanMove() error = %v, want ErrNoOp", err)
				}
				if plan.Action != MoveNone {
					t.Errorf("rejected plan carries action %v", plan.Action)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanMove() error = %v", err)
			}
			if plan.Action != tt.action || plan.Target != tt.target {
				t.Errorf("PlanMove() = %+v, want action %v target %q", plan, tt.action, tt.target)
			}
		})
	}
}

func TestPlanMoveSameIDIsNoop(t *testing.T) {
	plan, err := PlanMove(fixtureTree(), DragSource{Kind: ItemBookmark, ID: "x"}, InFolder("x"))
	if err != nil {
		t.Fatalf("PlanMove() error = %v", err)
	}
	if plan.Action != MoveNone {
		t.Errorf("PlanMove() action = %v, want MoveNone", plan.Action)
	}
}

func TestPlanMoveUnknownKind(t *testing.T) {
	_, err := PlanMove(fixtureTree(), DragSource{Kind: "note", ID: "n1"}, AllBookmarks)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("PlanMove() error = %v, want ErrValidation", err)
	}
}
