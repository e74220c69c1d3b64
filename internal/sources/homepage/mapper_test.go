package homepage

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

func split(b *domain.Batch) (folders, bookmarks []domain.Write) {
	for _, w := range b.Writes {
		if w.Collection == domain.CollectionFolders {
			folders = append(folders, w)
		} else {
			bookmarks = append(bookmarks, w)
		}
	}
	return folders, bookmarks
}

func TestMapperMapServices(t *testing.T) {
	config := ServicesConfig{
		{
			"Infrastructure": []map[string]ServiceProps{
				{
					"AdGuard Home": {
						Icon:        "adguard-home.svg",
						Href:        "https://adguard.domain.ext",
						Description: "Network-wide ads blocking",
					},
				},
				{
					"Traefik": {
						Icon:        "traefik.svg",
						Href:        "https://traefik.domain.ext",
						Description: "Cloud Native Application Proxy",
					},
				},
			},
		},
	}

	batch, err := NewMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	folders, bookmarks := split(batch)
	if len(folders) != 1 || len(bookmarks) != 2 {
		t.Fatalf("got %d folders, %d bookmarks; want 1, 2", len(folders), len(bookmarks))
	}
	if batch.Writes[0].Collection != domain.CollectionFolders {
		t.Error("folders must be written before the bookmarks that reference them")
	}
	if got := *folders[0].Folder.Name; got != "Infrastructure" {
		t.Errorf("folder name = %q, want Infrastructure", got)
	}

	found := false
	for _, w := range bookmarks {
		p := w.Bookmark
		if w.Kind != domain.WriteUpsert {
			t.Errorf("bookmark write kind = %v, want upsert", w.Kind)
		}
		if domain.Deref(p.FolderID) != folders[0].ID {
			t.Errorf("bookmark %s not filed in the group folder", w.ID)
		}
		if *p.Title == "AdGuard Home" {
			found = true
			if *p.URL != "https://adguard.domain.ext" || *p.Notes != "Network-wide ads blocking" {
				t.Errorf("unexpected patch %+v", p)
			}
			if len(p.AddTags) != 1 || p.AddTags[0] != SourceTag {
				t.Errorf("tags = %v, want [%s]", p.AddTags, SourceTag)
			}
		}
	}
	if !found {
		t.Error("MapServices() did not map AdGuard Home")
	}
}

func TestMapperStableIDs(t *testing.T) {
	data := []byte(`
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
`)
	m := NewMapper()
	first, err := m.Map(KindBookmarks, data)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	second, err := m.Map(KindBookmarks, data)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	for i := range first.Writes {
		if first.Writes[i].ID != second.Writes[i].ID {
			t.Errorf("write %d id changed between imports: %s != %s", i, first.Writes[i].ID, second.Writes[i].ID)
		}
	}
}

func TestMapperMapServicesEmptyConfig(t *testing.T) {
	batch, err := NewMapper().MapServices(ServicesConfig{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("MapServices() with empty config error = %v, want validation", err)
	}
	if batch != nil {
		t.Errorf("MapServices() with empty config should return nil batch, got %d writes", batch.Len())
	}
}

func TestMapperMapServicesInvalidURL(t *testing.T) {
	config := ServicesConfig{
		{
			"Test": []map[string]ServiceProps{
				{
					"Invalid Service": {
						Icon:        "test.svg",
						Href:        "not-a-valid-url",
						Description: "Invalid URL",
					},
				},
			},
		},
	}

	if _, err := NewMapper().MapServices(config); err == nil {
		t.Error("MapServices() should return error when no valid services found")
	}
}

func TestMapperMapServicesMultipleGroups(t *testing.T) {
	config := ServicesConfig{
		{
			"Group1": []map[string]ServiceProps{
				{"Service1": {Href: "https://service1.example.com"}},
			},
		},
		{
			"Group2": []map[string]ServiceProps{
				{"Service2": {Href: "https://service2.example.com"}},
			},
		},
	}

	batch, err := NewMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}
	folders, bookmarks := split(batch)
	if len(folders) != 2 || len(bookmarks) != 2 {
		t.Errorf("got %d folders, %d bookmarks; want 2, 2", len(folders), len(bookmarks))
	}
}

func TestMapperMapInvalidYAML(t *testing.T) {
	_, err := NewMapper().Map(KindServices, []byte("- [unclosed"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Map() error = %v, want validation", err)
	}
}
