package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Kind selects which Homepage file format is read.
type Kind string

const (
	KindBookmarks Kind = "bookmarks"
	KindServices  Kind = "services"
)

// ParseKind accepts "bookmarks" (the default) and "services".
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindBookmarks:
		return KindBookmarks, nil
	case KindServices:
		return KindServices, nil
	default:
		return "", fmt.Errorf("unknown homepage file kind %q", s)
	}
}

// Loader reads a Homepage bookmarks.yaml or services.yaml from disk.
type Loader struct {
	filePath string
	kind     Kind
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string, kind Kind) *Loader {
	return &Loader{
		filePath: filePath,
		kind:     kind,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Kind returns the format of the file.
func (l *Loader) Kind() Kind { return l.kind }

// Read returns the raw file contents.
func (l *Loader) Read() ([]byte, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", l.kind, err)
	}
	return data, nil
}

// ParseBookmarks decodes a bookmarks.yaml document.
func ParseBookmarks(data []byte) (BookmarksConfig, error) {
	var config BookmarksConfig
	if err := yaml.Unmarshal(stripTemplateVariables(data), &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}
	return config, nil
}

// ParseServices decodes a services.yaml document.
func ParseServices(data []byte) (ServicesConfig, error) {
	var config ServicesConfig
	if err := yaml.Unmarshal(stripTemplateVariables(data), &config); err != nil {
		return nil, fmt.Errorf("failed to parse services yaml: %w", err)
	}
	return config, nil
}

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
