package domain

import (
	"reflect"
	"testing"
	"time"
)

func ids(bookmarks []Bookmark) []string {
	out := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, b.ID)
	}
	return out
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func fixtureBookmarks(t *testing.T) []Bookmark {
	now := mustTime(t, "2024-01-10T12:00:00Z")
	return []Bookmark{
		{ID: "b1", Title: "React docs", URL: "https://react.dev", Tags: []string{"React", "js"}, FolderID: StringPtr("f1"), CreatedAt: now.Add(-time.Hour)},
		{ID: "b2", Title: "Vue guide", URL: "https://vuejs.org", IsFavorite: true, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "b3", Type: TypeText, Title: "Hooks", TextContent: "snippet", Notes: "uses react hooks", CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{ID: "b4", Title: "Old favorite", IsFavorite: true, IsTrashed: true, Tags: []string{"js"}, CreatedAt: now.Add(-time.Minute)},
		{ID: "b5", Title: "No date", FolderID: StringPtr("f2")},
	}
}

func TestFilterBookmarksByLocation(t *testing.T) {
	bookmarks := fixtureBookmarks(t)
	now := mustTime(t, "2024-01-10T12:00:00Z")

	tests := []struct {
		name     string
		location Location
		window   RecentWindow
		want     []string
	}{
		{name: "all bookmarks", location: AllBookmarks, want: []string{"b1", "b2", "b3", "b5"}},
		{name: "favorites", location: Static(ViewFavorites), want: []string{"b2"}},
		{name: "recent 24h", location: Static(ViewRecent), window: Window24h, want: []string{"b1"}},
		{name: "recent 7d", location: Static(ViewRecent), window: Window7d, want: []string{"b1", "b2"}},
		{name: "recent 30d", location: Static(ViewRecent), window: Window30d, want: []string{"b1", "b2", "b3"}},
		{name: "recent default window", location: Static(ViewRecent), want: []string{"b1"}},
		{name: "trash", location: Static(ViewTrash), want: []string{"b4"}},
		{name: "folder", location: InFolder("f1"), want: []string{"b1"}},
		{name: "tag skips trashed", location: WithTag("js"), want: []string{"b1"}},
		{name: "tags root is empty", location: Static(ViewTagsRoot), want: []string{}},
		{name: "unknown view is empty", location: Static("archive"), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterBookmarks(bookmarks, ViewQuery{Location: tt.location, Window: tt.window, Now: now}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterBookmarks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterBookmarksRecentBoundary(t *testing.T) {
	now := mustTime(t, "2024-01-10T12:00:00Z")
	bookmarks := []Bookmark{
		{ID: "inside", CreatedAt: mustTime(t, "2024-01-09T13:00:00Z")},
		{ID: "boundary", CreatedAt: mustTime(t, "2024-01-09T12:00:00Z")},
		{ID: "outside", CreatedAt: mustTime(t, "2024-01-09T10:00:00Z")},
	}

	got := ids(FilterBookmarks(bookmarks, ViewQuery{Location: Static(ViewRecent), Window: Window24h, Now: now}))
	want := []string{"inside", "boundary"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recent 24h = %v, want %v", got, want)
	}
}

func TestFilterBookmarksSearch(t *testing.T) {
	bookmarks := fixtureBookmarks(t)

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "matches tag and notes case-insensitively", search: "react", want: []string{"b1", "b3"}},
		{name: "term is trimmed", search: "  VUE  ", want: []string{"b2"}},
		{name: "blank term keeps base set", search: "   ", want: []string{"b1", "b2", "b3", "b5"}},
		{name: "url match", search: "vuejs.org", want: []string{"b2"}},
		{name: "no match", search: "golang", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterBookmarks(bookmarks, ViewQuery{Location: AllBookmarks, Search: tt.search}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterBookmarks(%q) = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}

func TestFilterBookmarksIdempotent(t *testing.T) {
	bookmarks := fixtureBookmarks(t)
	q := ViewQuery{Location: AllBookmarks, Search: "js", Now: mustTime(t, "2024-01-10T12:00:00Z")}

	first := FilterBookmarks(bookmarks, q)
	second := FilterBookmarks(bookmarks, q)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("FilterBookmarks() not idempotent: %v vs %v", ids(first), ids(second))
	}
	if len(bookmarks) != 5 || bookmarks[0].ID != "b1" {
		t.Error("FilterBookmarks() modified its input")
	}
}
