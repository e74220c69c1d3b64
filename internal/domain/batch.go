package domain

import "time"

// Collection names a per-user collection of the remote store.
type Collection string

const (
	CollectionBookmarks Collection = "bookmarks"
	CollectionFolders   Collection = "folders"
)

// WriteKind is the operation of a single batched write.
type WriteKind int

const (
	// WriteCreate inserts a new document. An empty ID is assigned by the store.
	WriteCreate WriteKind = iota
	// WriteUpdate patches an existing document; it fails with ErrNotFound otherwise.
	WriteUpdate
	// WriteUpsert patches a document, creating it when missing (merge semantics).
	WriteUpsert
	// WriteDelete removes an existing document; it fails with ErrNotFound otherwise.
	WriteDelete
	// WriteAssert writes nothing but fails the batch when the document is missing.
	WriteAssert
)

// BookmarkPatch lists bookmark fields to write. Nil fields are left untouched.
type BookmarkPatch struct {
	Type        *BookmarkType
	Title       *string
	URL         *string
	TextContent *string
	Notes       *string
	Thumbnail   *string
	IsFavorite  *bool
	IsTrashed   *bool

	// ToggleFavorite flips the stored isFavorite value.
	ToggleFavorite bool

	// SetFolder writes FolderID (nil clears it).
	SetFolder bool
	FolderID  *string

	// TrashedAt is written when non-nil; a zero time clears it.
	TrashedAt *time.Time

	// SetTags replaces the tag set with Tags before RemoveTags and AddTags apply.
	SetTags    bool
	Tags       []string
	RemoveTags []string
	AddTags    []string

	// RequireTrashed fails the batch with ErrNoOp when the stored isTrashed differs.
	RequireTrashed *bool

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// FolderPatch lists folder fields to write. Nil fields are left untouched.
type FolderPatch struct {
	Name *string

	// SetParent writes ParentID (nil promotes the folder to the root).
	SetParent bool
	ParentID  *string

	Order     *int
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// Write is a single document operation inside a Batch.
type Write struct {
	Kind       WriteKind
	Collection Collection
	ID         string
	Bookmark   *BookmarkPatch
	Folder     *FolderPatch
}

// Batch is an ordered list of writes committed atomically.
type Batch struct {
	Writes []Write

	// IfRevision, when set, makes the commit fail with ErrStaleRevision
	// unless the store is still at that revision.
	IfRevision *int64
}

// FenceRevision ties the batch to the snapshot revision it was planned on.
func (b *Batch) FenceRevision(rev int64) {
	b.IfRevision = &rev
}

// Len returns the number of writes.
func (b *Batch) Len() int { return len(b.Writes) }

// CreateBookmark queues the insertion of bk. bk.ID may be empty.
func (b *Batch) CreateBookmark(bk Bookmark) {
	p := FullBookmarkPatch(bk)
	b.Writes = append(b.Writes, Write{Kind: WriteCreate, Collection: CollectionBookmarks, ID: bk.ID, Bookmark: &p})
}

// UpdateBookmark queues a patch of an existing bookmark.
func (b *Batch) UpdateBookmark(id string, p BookmarkPatch) {
	b.Writes = append(b.Writes, Write{Kind: WriteUpdate, Collection: CollectionBookmarks, ID: id, Bookmark: &p})
}

// UpsertBookmark queues a merge of p into the bookmark id.
func (b *Batch) UpsertBookmark(id string, p BookmarkPatch) {
	b.Writes = append(b.Writes, Write{Kind: WriteUpsert, Collection: CollectionBookmarks, ID: id, Bookmark: &p})
}

// DeleteBookmark queues the removal of a bookmark.
func (b *Batch) DeleteBookmark(id string) {
	b.Writes = append(b.Writes, Write{Kind: WriteDelete, Collection: CollectionBookmarks, ID: id})
}

// CreateFolder queues the insertion of f. f.ID may be empty.
func (b *Batch) CreateFolder(f Folder) {
	p := FullFolderPatch(f)
	b.Writes = append(b.Writes, Write{Kind: WriteCreate, Collection: CollectionFolders, ID: f.ID, Folder: &p})
}

// UpdateFolder queues a patch of an existing folder.
func (b *Batch) UpdateFolder(id string, p FolderPatch) {
	b.Writes = append(b.Writes, Write{Kind: WriteUpdate, Collection: CollectionFolders, ID: id, Folder: &p})
}

// UpsertFolder queues a merge of p into the folder id.
func (b *Batch) UpsertFolder(id string, p FolderPatch) {
	b.Writes = append(b.Writes, Write{Kind: WriteUpsert, Collection: CollectionFolders, ID: id, Folder: &p})
}

// DeleteFolder queues the removal of a folder.
func (b *Batch) DeleteFolder(id string) {
	b.Writes = append(b.Writes, Write{Kind: WriteDelete, Collection: CollectionFolders, ID: id})
}

// AssertFolder makes the batch fail when the folder does not exist.
func (b *Batch) AssertFolder(id string) {
	b.Writes = append(b.Writes, Write{Kind: WriteAssert, Collection: CollectionFolders, ID: id})
}

// CommitResult reports the outcome of a committed batch.
type CommitResult struct {
	// Revision is the store revision after the commit.
	Revision int64
	// CreatedIDs holds the ids of created documents, in write order.
	CreatedIDs []string
}

// FullBookmarkPatch returns a patch writing every field of bk.
func FullBookmarkPatch(bk Bookmark) BookmarkPatch {
	p := BookmarkPatch{
		Type:        &bk.Type,
		Title:       &bk.Title,
		URL:         &bk.URL,
		TextContent: &bk.TextContent,
		Notes:       &bk.Notes,
		Thumbnail:   &bk.Thumbnail,
		IsFavorite:  &bk.IsFavorite,
		IsTrashed:   &bk.IsTrashed,
		SetFolder:   true,
		FolderID:    bk.FolderID,
		TrashedAt:   &bk.TrashedAt,
		SetTags:     true,
		Tags:        bk.Tags,
	}
	if !bk.CreatedAt.IsZero() {
		p.CreatedAt = &bk.CreatedAt
	}
	if !bk.UpdatedAt.IsZero() {
		p.UpdatedAt = &bk.UpdatedAt
	}
	return p
}

// FullFolderPatch returns a patch writing every field of f.
func FullFolderPatch(f Folder) FolderPatch {
	p := FolderPatch{
		Name:      &f.Name,
		SetParent: true,
		ParentID:  f.ParentID,
		Order:     &f.Order,
	}
	if !f.CreatedAt.IsZero() {
		p.CreatedAt = &f.CreatedAt
	}
	if !f.UpdatedAt.IsZero() {
		p.UpdatedAt = &f.UpdatedAt
	}
	return p
}

// TrashPatch moves a bookmark to the trash.
func TrashPatch(now time.Time) BookmarkPatch {
	yes := true
	return BookmarkPatch{IsTrashed: &yes, SetFolder: true, FolderID: nil, TrashedAt: &now}
}

// UnfilePatch clears both the folder and the trash flag.
func UnfilePatch() BookmarkPatch {
	no := false
	var zero time.Time
	return BookmarkPatch{IsTrashed: &no, SetFolder: true, FolderID: nil, TrashedAt: &zero}
}

// FilePatch files a bookmark into folderID, taking it out of the trash.
func FilePatch(folderID string) BookmarkPatch {
	no := false
	var zero time.Time
	return BookmarkPatch{IsTrashed: &no, SetFolder: true, FolderID: &folderID, TrashedAt: &zero}
}
