package domain

import (
	"sort"
	"strings"
)

// NormalizeTags trims every tag, drops empty ones and removes duplicates,
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// UnionTags returns base with every tag of extra not already present appended.
func UnionTags(base, extra []string) []string {
	return NormalizeTags(append(append([]string(nil), base...), extra...))
}

// UniqueTags returns the sorted union of tags over all bookmarks,
// trashed ones included.
func UniqueTags(bookmarks []Bookmark) []string {
	seen := make(map[string]struct{})
	for i := range bookmarks {
		for _, t := range bookmarks[i].Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ContainsTag reports whether tags holds tag.
func ContainsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
