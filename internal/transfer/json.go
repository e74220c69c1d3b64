// Package transfer converts a user's collections to and from portable files:
// the JSON document format, a YAML outline and Netscape bookmark HTML.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// MaxImportBytes caps the size of an import file.
const MaxImportBytes = 16 << 20

// Document is the JSON export format.
type Document struct {
	Bookmarks  []domain.Bookmark `json:"bookmarks"`
	Folders    []domain.Folder   `json:"folders"`
	ExportedAt time.Time         `json:"exportedAt,omitzero"`
}

// Summary counts the records of an import.
type Summary struct {
	Folders   int `json:"folders"`
	Bookmarks int `json:"bookmarks"`
}

// NewDocument builds the export document of snap.
func NewDocument(snap *domain.Snapshot, now time.Time) Document {
	doc := Document{
		Bookmarks:  snap.Bookmarks,
		Folders:    snap.Folders,
		ExportedAt: now.UTC(),
	}
	if doc.Bookmarks == nil {
		doc.Bookmarks = []domain.Bookmark{}
	}
	if doc.Folders == nil {
		doc.Folders = []domain.Folder{}
	}
	return doc
}

// WriteJSON writes snap as an indented JSON document.
func WriteJSON(w io.Writer, snap *domain.Snapshot, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(snap, now)); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

type record map[string]json.RawMessage

// ReadJSON decodes an export document into an upsert batch: folders first,
// then bookmarks, each keyed by its id. Only fields present in a record are
// written, so fields it omits keep their stored value.
func ReadJSON(r io.Reader) (*domain.Batch, Summary, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, Summary{}, domain.Validationf("failed to read import: %v", err)
	}
	if len(data) > MaxImportBytes {
		return nil, Summary{}, domain.Validationf("import file exceeds %d bytes", MaxImportBytes)
	}

	var file struct {
		Bookmarks *[]record `json:"bookmarks"`
		Folders   *[]record `json:"folders"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&file); err != nil {
		return nil, Summary{}, domain.Validationf("invalid import file: %v", err)
	}
	if file.Bookmarks == nil || file.Folders == nil {
		return nil, Summary{}, domain.Validationf("import file must contain bookmarks and folders arrays")
	}

	var b domain.Batch
	for i, rec := range *file.Folders {
		id, p, err := folderPatch(rec)
		if err != nil {
			return nil, Summary{}, domain.Validationf("folder #%d: %v", i, err)
		}
		b.UpsertFolder(id, p)
	}
	for i, rec := range *file.Bookmarks {
		id, p, err := bookmarkPatch(rec)
		if err != nil {
			return nil, Summary{}, domain.Validationf("bookmark #%d: %v", i, err)
		}
		b.UpsertBookmark(id, p)
	}
	return &b, Summary{Folders: len(*file.Folders), Bookmarks: len(*file.Bookmarks)}, nil
}

func folderPatch(rec record) (string, domain.FolderPatch, error) {
	var p domain.FolderPatch
	id, err := requireID(rec)
	if err != nil {
		return "", p, err
	}
	if p.Name, err = rec.str("name"); err != nil {
		return "", p, err
	}
	if p.Name != nil && *p.Name == "" {
		return "", p, fmt.Errorf("name must not be empty")
	}
	if raw, ok := rec["parentId"]; ok {
		p.SetParent = true
		if p.ParentID, err = nullableString(raw); err != nil {
			return "", p, fmt.Errorf("parentId: %w", err)
		}
		if domain.Deref(p.ParentID) == id {
			return "", p, fmt.Errorf("folder cannot be its own parent")
		}
	}
	if raw, ok := rec["order"]; ok && !isNull(raw) {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", p, fmt.Errorf("order: %w", err)
		}
		v, err := n.Int64()
		if err != nil {
			return "", p, fmt.Errorf("order: %w", err)
		}
		order := int(v)
		p.Order = &order
	}
	if p.CreatedAt, err = rec.timestamp("createdAt"); err != nil {
		return "", p, err
	}
	return id, p, nil
}

func bookmarkPatch(rec record) (string, domain.BookmarkPatch, error) {
	var p domain.BookmarkPatch
	id, err := requireID(rec)
	if err != nil {
		return "", p, err
	}

	typ, err := rec.str("type")
	if err != nil {
		return "", p, err
	}
	if typ != nil {
		t := domain.BookmarkType(*typ)
		if !t.Valid() {
			return "", p, fmt.Errorf("unknown type %q", *typ)
		}
		p.Type = &t
	}
	for key, dst := range map[string]**string{
		"title":       &p.Title,
		"url":         &p.URL,
		"textContent": &p.TextContent,
		"notes":       &p.Notes,
		"thumbnail":   &p.Thumbnail,
	} {
		if *dst, err = rec.str(key); err != nil {
			return "", p, err
		}
	}
	if p.IsFavorite, err = rec.flag("isFavorite"); err != nil {
		return "", p, err
	}
	if p.IsTrashed, err = rec.flag("isTrashed"); err != nil {
		return "", p, err
	}
	if raw, ok := rec["folderId"]; ok {
		p.SetFolder = true
		if p.FolderID, err = nullableString(raw); err != nil {
			return "", p, fmt.Errorf("folderId: %w", err)
		}
	}
	if raw, ok := rec["tags"]; ok {
		var tags []string
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &tags); err != nil {
				return "", p, fmt.Errorf("tags: %w", err)
			}
		}
		p.SetTags = true
		p.Tags = domain.NormalizeTags(tags)
	}
	if p.TrashedAt, err = rec.timestamp("trashedAt"); err != nil {
		return "", p, err
	}
	if p.CreatedAt, err = rec.timestamp("createdAt"); err != nil {
		return "", p, err
	}
	switch {
	case p.IsTrashed != nil && *p.IsTrashed:
		// A trashed bookmark is never filed.
		p.SetFolder = true
		p.FolderID = nil
	case p.FolderID != nil && p.IsTrashed == nil:
		// Filing takes the bookmark out of the trash.
		filed := domain.FilePatch(*p.FolderID)
		p.IsTrashed = filed.IsTrashed
		p.TrashedAt = filed.TrashedAt
	}
	return id, p, nil
}

func requireID(rec record) (string, error) {
	id, err := rec.str("id")
	if err != nil {
		return "", err
	}
	if id == nil || *id == "" {
		return "", fmt.Errorf("id is required")
	}
	return *id, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// str returns the string field key: nil when absent, "" when null.
func (r record) str(key string) (*string, error) {
	raw, ok := r[key]
	if !ok {
		return nil, nil
	}
	v, err := nullableString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if v == nil {
		empty := ""
		return &empty, nil
	}
	return v, nil
}

func (r record) flag(key string) (*bool, error) {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &v, nil
}

func (r record) timestamp(key string) (*time.Time, error) {
	raw, ok := r[key]
	if !ok {
		return nil, nil
	}
	t, ok, err := parseTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func nullableString(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return domain.StringPtr(s), nil
}
