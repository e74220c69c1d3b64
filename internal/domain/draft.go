package domain

import (
	"strings"
	"unicode/utf8"
)

// titleSnippetRunes is how much text content a derived title keeps.
const titleSnippetRunes = 50

// BookmarkDraft carries the user-editable fields of a bookmark.
// It is the input of both create and update.
type BookmarkDraft struct {
	Type        BookmarkType `json:"type"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	TextContent string       `json:"textContent"`
	Notes       string       `json:"notes"`
	Thumbnail   string       `json:"thumbnail"`
	Tags        []string     `json:"tags"`
	IsFavorite  bool         `json:"isFavorite"`
	FolderID    *string      `json:"folderId"`
}

// Normalize trims the draft, fills in the title fallback and validates
// the type-specific required field.
func (d BookmarkDraft) Normalize() (BookmarkDraft, error) {
	if d.Type == "" {
		d.Type = TypeLink
	}
	if !d.Type.Valid() {
		return d, Validationf("unknown bookmark type %q", d.Type)
	}

	d.Title = strings.TrimSpace(d.Title)
	d.URL = strings.TrimSpace(d.URL)
	d.Notes = strings.TrimSpace(d.Notes)
	d.Thumbnail = strings.TrimSpace(d.Thumbnail)
	d.Tags = NormalizeTags(d.Tags)
	if d.FolderID != nil && strings.TrimSpace(*d.FolderID) == "" {
		d.FolderID = nil
	}

	switch d.Type {
	case TypeLink:
		if d.URL == "" {
			return d, Validationf("url is required for link bookmarks")
		}
		d.TextContent = ""
	case TypeText:
		if strings.TrimSpace(d.TextContent) == "" {
			return d, Validationf("text content is required for text bookmarks")
		}
		d.URL = ""
	}

	if d.Title == "" {
		d.Title = FallbackTitle(d.Type, d.URL, d.TextContent)
	}
	return d, nil
}

// FallbackTitle derives a title for a bookmark saved without one:
// the URL for links, the first characters of the text for snippets.
func FallbackTitle(t BookmarkType, url, text string) string {
	if t == TypeLink {
		return strings.TrimSpace(url)
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= titleSnippetRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleSnippetRunes]) + "..."
}
