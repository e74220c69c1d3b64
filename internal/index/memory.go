package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// MemoryIndex holds the latest snapshot of one user's bookmarks and folders.
// Each update replaces the whole snapshot; readers never see a partial one.
type MemoryIndex struct {
	mu         sync.RWMutex
	snapshot   *domain.Snapshot
	bookmarks  map[string]int // ID -> position in snapshot.Bookmarks
	tree       *domain.FolderTree
	tags       []string // derived lazily, reset on every replace
	lastReload time.Time
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	idx := &MemoryIndex{}
	idx.resetLocked()
	return idx
}

// Replace swaps in a new snapshot.
func (idx *MemoryIndex) Replace(snap *domain.Snapshot) {
	if snap == nil {
		idx.Reset()
		return
	}

	positions := make(map[string]int, len(snap.Bookmarks))
	for i := range snap.Bookmarks {
		positions[snap.Bookmarks[i].ID] = i
	}
	tree := domain.NewFolderTree(snap.Folders)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.snapshot = snap
	idx.bookmarks = positions
	idx.tree = tree
	idx.tags = nil
	idx.lastReload = time.Now()
}

// Reset empties the index, as on logout.
func (idx *MemoryIndex) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.resetLocked()
}

func (idx *MemoryIndex) resetLocked() {
	idx.snapshot = &domain.Snapshot{Bookmarks: []domain.Bookmark{}, Folders: []domain.Folder{}}
	idx.bookmarks = map[string]int{}
	idx.tree = domain.NewFolderTree(nil)
	idx.tags = nil
	idx.lastReload = time.Time{}
}

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (idx *MemoryIndex) Snapshot() *domain.Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.snapshot
}

// Bookmark retrieves a bookmark by ID.
func (idx *MemoryIndex) Bookmark(id string) (domain.Bookmark, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	pos, ok := idx.bookmarks[id]
	if !ok {
		return domain.Bookmark{}, false
	}
	return idx.snapshot.Bookmarks[pos], true
}

// Folder retrieves a folder by ID.
func (idx *MemoryIndex) Folder(id string) (domain.Folder, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	f, ok := idx.tree.Get(id)
	if !ok {
		return domain.Folder{}, false
	}
	return *f, true
}

// Tree returns the folder tree of the current snapshot.
func (idx *MemoryIndex) Tree() *domain.FolderTree {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.tree
}

// Tags returns the sorted tag set of the current snapshot.
func (idx *MemoryIndex) Tags() []string {
	idx.mu.RLock()
	tags, snap := idx.tags, idx.snapshot
	idx.mu.RUnlock()
	if tags != nil {
		return tags
	}

	tags = domain.UniqueTags(snap.Bookmarks)

	idx.mu.Lock()
	// Only cache if no replace happened meanwhile.
	if idx.snapshot == snap {
		idx.tags = tags
	}
	idx.mu.Unlock()
	return tags
}

// Revision returns the store revision of the current snapshot.
func (idx *MemoryIndex) Revision() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.snapshot.Revision
}

// Count returns the number of bookmarks and folders in the index.
func (idx *MemoryIndex) Count() (bookmarks, folders int) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.snapshot.Bookmarks), len(idx.snapshot.Folders)
}

// GetLastReload returns when the last snapshot was applied.
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
