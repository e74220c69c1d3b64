package domain

import "strings"

// CascadePolicy is the disposition of bookmarks left in a deleted folder.
type CascadePolicy string

const (
	CascadeNone   CascadePolicy = ""
	CascadeTrash  CascadePolicy = "trash"
	CascadeRoot   CascadePolicy = "root"
	CascadeDelete CascadePolicy = "delete"
)

// ParseCascadePolicy accepts "trash", "root", "delete" or an empty string.
func ParseCascadePolicy(s string) (CascadePolicy, error) {
	switch p := CascadePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CascadeNone, CascadeTrash, CascadeRoot, CascadeDelete:
		return p, nil
	default:
		return "", Validationf("unknown cascade policy %q", s)
	}
}
