package domain

import "time"

// BookmarkType distinguishes link bookmarks from text snippets.
type BookmarkType string

const (
	TypeLink BookmarkType = "link"
	TypeText BookmarkType = "text"
)

// Valid reports whether t is a known bookmark type.
func (t BookmarkType) Valid() bool {
	return t == TypeLink || t == TypeText
}

// Bookmark is a saved link or text snippet owned by a single user.
type Bookmark struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is assigned by the remote store on creation.
	ID string `json:"id"`

	// Type is either link or text. URL is required for links,
	// TextContent for text snippets.
	Type BookmarkType `json:"type"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	TextContent string   `json:"textContent,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Tags        []string `json:"tags"`

	// ─────────────────────────────
	// Organization
	// ─────────────────────────────

	IsFavorite bool `json:"isFavorite"`

	// FolderID is a soft reference to a Folder. Nil means unfiled.
	FolderID *string `json:"folderId"`

	// IsTrashed excludes the bookmark from every view but Trash.
	// A trashed bookmark never has a FolderID.
	IsTrashed bool `json:"isTrashed"`

	// TrashedAt is set when the bookmark enters the trash.
	TrashedAt time.Time `json:"trashedAt,omitzero"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// InFolder reports whether the bookmark is filed under folderID.
func (b Bookmark) InFolder(folderID string) bool {
	return b.FolderID != nil && *b.FolderID == folderID
}

// HasTag reports whether the bookmark carries tag (exact match).
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Folder groups bookmarks. Folders nest through ParentID.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ParentID is nil for root-level folders. The parent graph is acyclic.
	ParentID *string `json:"parentId"`

	Order int `json:"order"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// IsRoot reports whether the folder sits at the root level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Snapshot is a complete, internally consistent copy of one user's data.
// Bookmarks are ordered by CreatedAt descending, folders by CreatedAt ascending.
type Snapshot struct {
	UserID    string     `json:"userId"`
	Revision  int64      `json:"revision"`
	Bookmarks []Bookmark `json:"bookmarks"`
	Folders   []Folder   `json:"folders"`
	TakenAt   time.Time  `json:"takenAt"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
