package badger

import (
	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

// Key namespaces
//
//	fs:<fsID>                         filesystem (JSON)
//	i:<itemID>                        item (JSON)
//	p:<tenant>\x00<virtualPath>       item id, ordered path index for subtree scans
//	c:<parentID>:<itemID>             item id, children of a directory
//	r:<fsID>:<itemID>                 item id, parentless items of a filesystem
//	m:<fsID>:<itemID>                 item id, every item of a filesystem
const (
	prefixFileSystem = "fs:"
	prefixItem       = "i:"
	prefixPath       = "p:"
	prefixChild      = "c:"
	prefixRoot       = "r:"
	prefixMember     = "m:"
)

func keyFileSystem(id uuid.UUID) []byte {
	return []byte(prefixFileSystem + id.String())
}

func keyItem(id uuid.UUID) []byte {
	return []byte(prefixItem + id.String())
}

func keyPath(tenantID *int64, virtualPath string) []byte {
	return []byte(prefixPath + data.TenantString(tenantID) + "\x00" + virtualPath)
}

func keyChildPrefix(parentID uuid.UUID) []byte {
	return []byte(prefixChild + parentID.String() + ":")
}

func keyRootPrefix(fsID uuid.UUID) []byte {
	return []byte(prefixRoot + fsID.String() + ":")
}

func keyMemberPrefix(fsID uuid.UUID) []byte {
	return []byte(prefixMember + fsID.String() + ":")
}

// keyParentLink returns the children or root entry an item occupies.
func keyParentLink(item *data.Item) []byte {
	if item.ParentID == nil {
		return append(keyRootPrefix(item.FileSystemID), item.ID.String()...)
	}
	return append(keyChildPrefix(*item.ParentID), item.ID.String()...)
}

func keyMember(item *data.Item) []byte {
	return append(keyMemberPrefix(item.FileSystemID), item.ID.String()...)
}
