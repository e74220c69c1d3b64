package redis

import (
	"strconv"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// Hash fields of bookmark and folder documents.
const (
	fieldType        = "type"
	fieldTitle       = "title"
	fieldURL         = "url"
	fieldTextContent = "textContent"
	fieldNotes       = "notes"
	fieldThumbnail   = "thumbnail"
	fieldIsFavorite  = "isFavorite"
	fieldFolderID    = "folderId"
	fieldIsTrashed   = "isTrashed"
	fieldTrashedAt   = "trashedAt"

	fieldName     = "name"
	fieldParentID = "parentId"
	fieldOrder    = "order"

	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// Timestamps are stored as epoch milliseconds; 0 or a missing field means unset.
func encodeTime(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func decodeTime(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeBool(s string) bool {
	return s == "1" || s == "true"
}

// encodeBookmarkPatch returns the hash fields written by p.
func encodeBookmarkPatch(p *domain.BookmarkPatch) map[string]any {
	fields := make(map[string]any, 12)
	if p.Type != nil {
		fields[fieldType] = string(*p.Type)
	}
	if p.Title != nil {
		fields[fieldTitle] = *p.Title
	}
	if p.URL != nil {
		fields[fieldURL] = *p.URL
	}
	if p.TextContent != nil {
		fields[fieldTextContent] = *p.TextContent
	}
	if p.Notes != nil {
		fields[fieldNotes] = *p.Notes
	}
	if p.Thumbnail != nil {
		fields[fieldThumbnail] = *p.Thumbnail
	}
	if p.IsFavorite != nil {
		fields[fieldIsFavorite] = encodeBool(*p.IsFavorite)
	}
	if p.IsTrashed != nil {
		fields[fieldIsTrashed] = encodeBool(*p.IsTrashed)
	}
	if p.SetFolder {
		fields[fieldFolderID] = domain.Deref(p.FolderID)
	}
	if p.TrashedAt != nil {
		fields[fieldTrashedAt] = encodeTime(*p.TrashedAt)
	}
	if p.CreatedAt != nil {
		fields[fieldCreatedAt] = encodeTime(*p.CreatedAt)
	}
	if p.UpdatedAt != nil {
		fields[fieldUpdatedAt] = encodeTime(*p.UpdatedAt)
	}
	return fields
}

// encodeFolderPatch returns the hash fields written by p.
func encodeFolderPatch(p *domain.FolderPatch) map[string]any {
	fields := make(map[string]any, 5)
	if p.Name != nil {
		fields[fieldName] = *p.Name
	}
	if p.SetParent {
		fields[fieldParentID] = domain.Deref(p.ParentID)
	}
	if p.Order != nil {
		fields[fieldOrder] = strconv.Itoa(*p.Order)
	}
	if p.CreatedAt != nil {
		fields[fieldCreatedAt] = encodeTime(*p.CreatedAt)
	}
	if p.UpdatedAt != nil {
		fields[fieldUpdatedAt] = encodeTime(*p.UpdatedAt)
	}
	return fields
}

// decodeBookmark rebuilds a bookmark from its hash and tag set.
func decodeBookmark(id string, h map[string]string, tags []string) domain.Bookmark {
	t := domain.BookmarkType(h[fieldType])
	if !t.Valid() {
		t = domain.TypeLink
	}
	if tags == nil {
		tags = []string{}
	}
	return domain.Bookmark{
		ID:          id,
		Type:        t,
		Title:       h[fieldTitle],
		URL:         h[fieldURL],
		TextContent: h[fieldTextContent],
		Notes:       h[fieldNotes],
		Thumbnail:   h[fieldThumbnail],
		Tags:        tags,
		IsFavorite:  decodeBool(h[fieldIsFavorite]),
		FolderID:    domain.StringPtr(h[fieldFolderID]),
		IsTrashed:   decodeBool(h[fieldIsTrashed]),
		TrashedAt:   decodeTime(h[fieldTrashedAt]),
		CreatedAt:   decodeTime(h[fieldCreatedAt]),
		UpdatedAt:   decodeTime(h[fieldUpdatedAt]),
	}
}

// decodeFolder rebuilds a folder from its hash.
func decodeFolder(id string, h map[string]string) domain.Folder {
	order, _ := strconv.Atoi(h[fieldOrder])
	return domain.Folder{
		ID:        id,
		Name:      h[fieldName],
		ParentID:  domain.StringPtr(h[fieldParentID]),
		Order:     order,
		CreatedAt: decodeTime(h[fieldCreatedAt]),
		UpdatedAt: decodeTime(h[fieldUpdatedAt]),
	}
}
