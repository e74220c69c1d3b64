package domain

import (
	"strings"
	"time"
)

// ViewQuery selects what a view shows.
type ViewQuery struct {
	Location Location
	Window   RecentWindow // only used by the Recent view
	Search   string
	Now      time.Time
}

// FilterBookmarks returns the bookmarks visible for q, keeping the input order.
// The input slice is never modified.
func FilterBookmarks(bookmarks []Bookmark, q ViewQuery) []Bookmark {
	base := basePredicate(q)
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]Bookmark, 0, len(bookmarks))
	for i := range bookmarks {
		b := &bookmarks[i]
		if !base(b) {
			continue
		}
		if term != "" && !matchesTerm(b, term) {
			continue
		}
		out = append(out, *b)
	}
	return out
}

func basePredicate(q ViewQuery) func(*Bookmark) bool {
	loc := q.Location
	switch loc.Kind {
	case LocationFolder:
		return func(b *Bookmark) bool { return !b.IsTrashed && b.InFolder(loc.Folder) }
	case LocationTag:
		return func(b *Bookmark) bool { return !b.IsTrashed && b.HasTag(loc.Tag) }
	}

	switch loc.View {
	case ViewAllBookmarks:
		return func(b *Bookmark) bool { return !b.IsTrashed }
	case ViewFavorites:
		return func(b *Bookmark) bool { return b.IsFavorite && !b.IsTrashed }
	case ViewRecent:
		window := q.Window
		if window == "" {
			window = DefaultWindow
		}
		now := q.Now
		if now.IsZero() {
			now = time.Now()
		}
		cutoff := window.Cutoff(now)
		return func(b *Bookmark) bool {
			return !b.IsTrashed && !b.CreatedAt.IsZero() && !b.CreatedAt.Before(cutoff)
		}
	case ViewTrash:
		return func(b *Bookmark) bool { return b.IsTrashed }
	default:
		// TagsRoot and unknown locations show nothing.
		return func(*Bookmark) bool { return false }
	}
}

// matchesTerm expects term already lowercased and trimmed.
func matchesTerm(b *Bookmark, term string) bool {
	for _, field := range [...]string{b.Title, b.URL, b.TextContent, b.Notes} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
