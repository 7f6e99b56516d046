package data

import "fmt"

// ItemType identifies the kind of node in a filesystem tree.
type ItemType int

const (
	ItemTypeFile         ItemType = iota // Regular file backed by a blob
	ItemTypeDirectory                    // Directory, metadata only
	ItemTypeExternalLink                 // Link to an external url, metadata only
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeFile:
		return "file"
	case ItemTypeDirectory:
		return "directory"
	case ItemTypeExternalLink:
		return "link"
	default:
		return "unknown"
	}
}

// ParseItemType is the inverse of ItemType.String.
func ParseItemType(s string) (ItemType, error) {
	switch s {
	case "file":
		return ItemTypeFile, nil
	case "directory":
		return ItemTypeDirectory, nil
	case "link":
		return ItemTypeExternalLink, nil
	}
	return 0, fmt.Errorf("unknown item type '%s'", s)
}
