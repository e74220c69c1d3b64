package transfer

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// Outline is a human-readable, nested rendition of a snapshot.
type Outline struct {
	ExportedAt time.Time       `yaml:"exported_at"`
	Folders    []OutlineFolder `yaml:"folders,omitempty"`
	Unfiled    []OutlineEntry  `yaml:"unfiled,omitempty"`
	Trash      []OutlineEntry  `yaml:"trash,omitempty"`
}

type OutlineFolder struct {
	Name      string          `yaml:"name"`
	Bookmarks []OutlineEntry  `yaml:"bookmarks,omitempty"`
	Folders   []OutlineFolder `yaml:"folders,omitempty"`
}

type OutlineEntry struct {
	Title    string   `yaml:"title"`
	URL      string   `yaml:"url,omitempty"`
	Text     string   `yaml:"text,omitempty"`
	Notes    string   `yaml:"notes,omitempty"`
	Tags     []string `yaml:"tags,flow,omitempty"`
	Favorite bool     `yaml:"favorite,omitempty"`
}

// NewOutline nests the bookmarks of snap under their folders.
// Bookmarks filed under a missing folder land in Unfiled.
func NewOutline(snap *domain.Snapshot, now time.Time) Outline {
	tree := domain.NewFolderTree(snap.Folders)
	out := Outline{ExportedAt: now.UTC()}

	byFolder := make(map[string][]OutlineEntry)
	for i := range snap.Bookmarks {
		bk := &snap.Bookmarks[i]
		entry := OutlineEntry{
			Title:    bk.Title,
			URL:      bk.URL,
			Text:     bk.TextContent,
			Notes:    bk.Notes,
			Tags:     bk.Tags,
			Favorite: bk.IsFavorite,
		}
		switch folder := domain.Deref(bk.FolderID); {
		case bk.IsTrashed:
			out.Trash = append(out.Trash, entry)
		case folder == "":
			out.Unfiled = append(out.Unfiled, entry)
		default:
			if _, ok := tree.Get(folder); !ok {
				out.Unfiled = append(out.Unfiled, entry)
				continue
			}
			byFolder[folder] = append(byFolder[folder], entry)
		}
	}

	var build func(nodes []domain.FolderNode) []OutlineFolder
	build = func(nodes []domain.FolderNode) []OutlineFolder {
		folders := make([]OutlineFolder, 0, len(nodes))
		for _, n := range nodes {
			folders = append(folders, OutlineFolder{
				Name:      n.Name,
				Bookmarks: byFolder[n.ID],
				Folders:   build(n.Children),
			})
		}
		return folders
	}
	out.Folders = build(tree.Nested())
	return out
}

// WriteYAML writes the outline of snap.
func WriteYAML(w io.Writer, snap *domain.Snapshot, now time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewOutline(snap, now)); err != nil {
		return fmt.Errorf("failed to encode outline: %w", err)
	}
	return enc.Close()
}
