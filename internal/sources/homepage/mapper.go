package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// SourceTag marks every bookmark imported from Homepage.
const SourceTag = "homepage"

// Mapper converts Homepage configs into upsert batches. Every group becomes
// a root folder and every entry a link bookmark inside it. IDs are derived
// from names and URLs so importing the same file twice updates in place.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map parses data of the given kind and maps it.
func (m *Mapper) Map(kind Kind, data []byte) (*domain.Batch, error) {
	switch kind {
	case KindServices:
		config, err := ParseServices(data)
		if err != nil {
			return nil, domain.Validationf("%v", err)
		}
		return m.MapServices(config)
	default:
		config, err := ParseBookmarks(data)
		if err != nil {
			return nil, domain.Validationf("%v", err)
		}
		return m.MapBookmarks(config)
	}
}

// MapBookmarks converts bookmarks.yaml categories to folders and bookmarks.
func (m *Mapper) MapBookmarks(config BookmarksConfig) (*domain.Batch, error) {
	var b batchBuilder
	for _, category := range config {
		for categoryName, bookmarkList := range category {
			for _, bookmarkMap := range bookmarkList {
				for bookmarkName, entryList := range bookmarkMap {
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]
					b.add(categoryName, bookmarkName, entry.Href, entry.Description)
				}
			}
		}
	}
	return b.finish("bookmarks")
}

// MapServices converts services.yaml groups to folders and bookmarks.
func (m *Mapper) MapServices(config ServicesConfig) (*domain.Batch, error) {
	var b batchBuilder
	for _, groupMap := range config {
		for groupName, servicesList := range groupMap {
			for _, serviceMap := range servicesList {
				for serviceName, props := range serviceMap {
					b.add(groupName, serviceName, props.Href, props.Description)
				}
			}
		}
	}
	return b.finish("services")
}

type batchBuilder struct {
	batch   domain.Batch
	folders map[string]string // group name -> folder id
	count   int
}

func (b *batchBuilder) add(group, name, href, description string) {
	href = strings.TrimSpace(href)
	if !validHref(href) {
		return
	}
	group = strings.TrimSpace(group)
	if group == "" {
		group = "Homepage"
	}

	if b.folders == nil {
		b.folders = make(map[string]string)
	}
	folderID, ok := b.folders[group]
	if !ok {
		folderID = generateID("folder", group)
		b.folders[group] = folderID
		name := group
		// Folders go first so bookmarks always reference an existing one.
		b.batch.Writes = append([]domain.Write{{
			Kind:       domain.WriteUpsert,
			Collection: domain.CollectionFolders,
			ID:         folderID,
			Folder:     &domain.FolderPatch{Name: &name, SetParent: true},
		}}, b.batch.Writes...)
	}

	title := strings.TrimSpace(name)
	if title == "" {
		title = domain.FallbackTitle(domain.TypeLink, href, "")
	}
	typ := domain.TypeLink
	notes := strings.TrimSpace(description)
	no := false
	b.batch.UpsertBookmark(generateID("bookmark", group, href), domain.BookmarkPatch{
		Type:      &typ,
		Title:     &title,
		URL:       &href,
		Notes:     &notes,
		IsTrashed: &no,
		SetFolder: true,
		FolderID:  &folderID,
		AddTags:   []string{SourceTag},
	})
	b.count++
}

func (b *batchBuilder) finish(kind string) (*domain.Batch, error) {
	if b.count == 0 {
		return nil, domain.Validationf("no valid %s found in homepage config", kind)
	}
	return &b.batch, nil
}

func validHref(href string) bool {
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Hostname() != ""
}

// generateID creates a stable ID from its parts using SHA-256.
// The same group and URL always produce the same ID.
func generateID(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	// 32 hex characters keep collisions out of reach for personal collections.
	return fmt.Sprintf("hp-%s", hex.EncodeToString(hash[:])[:32])
}
