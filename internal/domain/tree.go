package domain

import "strings"

// FolderTree is an arena of folders keyed by id with a parent -> children
// lookup. It is rebuilt from the flat folder list of each snapshot.
type FolderTree struct {
	byID     map[string]*Folder
	children map[string][]string // "" holds root-level folders
	order    []string
}

// NewFolderTree indexes folders. Children keep the input order
// (createdAt ascending for snapshot folders).
func NewFolderTree(folders []Folder) *FolderTree {
	t := &FolderTree{
		byID:     make(map[string]*Folder, len(folders)),
		children: make(map[string][]string),
		order:    make([]string, 0, len(folders)),
	}
	for i := range folders {
		f := &folders[i]
		t.byID[f.ID] = f
		t.order = append(t.order, f.ID)
	}
	for _, id := range t.order {
		parent := Deref(t.byID[id].ParentID)
		// Dangling parents are shown at the root.
		if _, ok := t.byID[parent]; parent != "" && !ok {
			parent = ""
		}
		t.children[parent] = append(t.children[parent], id)
	}
	return t
}

// Len returns the number of folders.
func (t *FolderTree) Len() int { return len(t.byID) }

// Get returns the folder with id.
func (t *FolderTree) Get(id string) (*Folder, bool) {
	f, ok := t.byID[id]
	return f, ok
}

// Children returns the ids of the direct children of id ("" for root level).
func (t *FolderTree) Children(id string) []string {
	return t.children[id]
}

// Parent returns the parent id of id, "" at root or for unknown ids.
func (t *FolderTree) Parent(id string) string {
	f, ok := t.byID[id]
	if !ok {
		return ""
	}
	return Deref(f.ParentID)
}

// IsAncestor reports whether ancestor appears on the parent chain of id,
// id itself included. The walk is bounded by the folder count so a corrupt
// graph cannot loop forever.
func (t *FolderTree) IsAncestor(ancestor, id string) bool {
	cur := id
	for steps := 0; cur != "" && steps <= len(t.byID); steps++ {
		if cur == ancestor {
			return true
		}
		cur = t.Parent(cur)
	}
	return false
}

// Cyclic returns a folder whose parent chain loops instead of reaching the
// root or a dangling parent.
func (t *FolderTree) Cyclic() (string, bool) {
	for _, id := range t.order {
		cur, steps := id, 0
		for cur != "" && steps <= len(t.byID) {
			f, ok := t.byID[cur]
			if !ok {
				break
			}
			cur = Deref(f.ParentID)
			steps++
		}
		if cur != "" && steps > len(t.byID) {
			return id, true
		}
	}
	return "", false
}

// Path returns the folder names from the root down to id.
func (t *FolderTree) Path(id string) []string {
	var names []string
	cur := id
	for steps := 0; cur != "" && steps <= len(t.byID); steps++ {
		f, ok := t.byID[cur]
		if !ok {
			break
		}
		names = append([]string{f.Name}, names...)
		cur = Deref(f.ParentID)
	}
	return names
}

// SiblingNameTaken reports whether a folder under parent (excluding skipID)
// already uses name, compared case-insensitively.
func (t *FolderTree) SiblingNameTaken(parent, name, skipID string) bool {
	for _, id := range t.children[parent] {
		if id == skipID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(t.byID[id].Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// FolderNode is a nested view of the tree used for rendering.
type FolderNode struct {
	Folder
	Children []FolderNode `json:"children"`
}

// Nested returns the folder forest starting at the root level.
func (t *FolderTree) Nested() []FolderNode {
	visited := make(map[string]bool, len(t.byID))
	var build func(parent string) []FolderNode
	build = func(parent string) []FolderNode {
		ids := t.children[parent]
		nodes := make([]FolderNode, 0, len(ids))
		for _, id := range ids {
			if visited[id] {
				continue
			}
			visited[id] = true
			nodes = append(nodes, FolderNode{Folder: *t.byID[id], Children: build(id)})
		}
		return nodes
	}
	return build("")
}
