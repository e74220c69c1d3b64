package domain

import (
	"strings"
	"time"
)

// StaticView is one of the fixed, non user-created locations.
type StaticView string

const (
	ViewAllBookmarks StaticView = "all"
	ViewFavorites    StaticView = "favorites"
	ViewRecent       StaticView = "recent"
	ViewTrash        StaticView = "trash"
	ViewTagsRoot     StaticView = "tags"
)

// LocationKind tags the Location union.
type LocationKind int

const (
	LocationStatic LocationKind = iota
	LocationFolder
	LocationTag
)

const (
	folderPrefix = "folder:"
	tagPrefix    = "tag:"
)

// Location is a view location: a static view, a folder or a tag.
type Location struct {
	Kind   LocationKind
	View   StaticView // set when Kind == LocationStatic
	Folder string     // set when Kind == LocationFolder
	Tag    string     // set when Kind == LocationTag
}

// Static returns the location of a static view.
func Static(v StaticView) Location { return Location{Kind: LocationStatic, View: v} }

// InFolder returns the location of a folder.
func InFolder(id string) Location { return Location{Kind: LocationFolder, Folder: id} }

// WithTag returns the location of a tag.
func WithTag(tag string) Location { return Location{Kind: LocationTag, Tag: tag} }

// AllBookmarks is the default location.
var AllBookmarks = Static(ViewAllBookmarks)

// IsStatic reports whether l is the static view v.
func (l Location) IsStatic(v StaticView) bool {
	return l.Kind == LocationStatic && l.View == v
}

// String renders l in the text form accepted by ParseLocation.
func (l Location) String() string {
	switch l.Kind {
	case LocationFolder:
		return folderPrefix + l.Folder
	case LocationTag:
		return tagPrefix + l.Tag
	default:
		return string(l.View)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Location) UnmarshalText(b []byte) error {
	loc, err := ParseLocation(string(b))
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// ParseLocation parses "all", "favorites", "recent", "trash", "tags",
// "folder:<id>" and "tag:<name>". An empty string yields AllBookmarks.
// Unknown static names are kept as-is; the filter treats them as empty views.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return AllBookmarks, nil
	case strings.HasPrefix(s, folderPrefix):
		id := strings.TrimSpace(strings.TrimPrefix(s, folderPrefix))
		if id == "" {
			return Location{}, Validationf("folder location needs an id")
		}
		return InFolder(id), nil
	case strings.HasPrefix(s, tagPrefix):
		tag := strings.TrimSpace(strings.TrimPrefix(s, tagPrefix))
		if tag == "" {
			return Location{}, Validationf("tag location needs a name")
		}
		return WithTag(tag), nil
	default:
		return Static(StaticView(strings.ToLower(s))), nil
	}
}

// RecentWindow is the selectable timeframe of the Recent view.
type RecentWindow string

const (
	Window24h RecentWindow = "24h"
	Window7d  RecentWindow = "7d"
	Window30d RecentWindow = "30d"
)

// DefaultWindow is used when no window was selected.
const DefaultWindow = Window24h

// ParseWindow accepts "24h", "7d" and "30d". Empty yields DefaultWindow.
func ParseWindow(s string) (RecentWindow, error) {
	switch w := RecentWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return DefaultWindow, nil
	case Window24h, Window7d, Window30d:
		return w, nil
	default:
		return "", Validationf("unknown recent window %q", s)
	}
}

// Days returns the window length in calendar days.
func (w RecentWindow) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	default:
		return 1
	}
}

// Cutoff returns the earliest createdAt included by the window at now.
func (w RecentWindow) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -w.Days())
}
