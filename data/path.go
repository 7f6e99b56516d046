package data

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Path is a parsed virtual path: "/<filesystem-id>/segment/...".
// Two paths address the same place iff their VirtualPath strings match.
type Path struct {
	FileSystemID uuid.UUID
	VirtualPath  string
	TenantID     *int64
}

// ParsePath normalizes raw and validates that its first segment is a filesystem id.
func ParsePath(raw string, tenantID *int64) (*Path, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	for strings.Contains(normalized, "//") {
		normalized = strings.ReplaceAll(normalized, "//", "/")
	}
	if len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}

	parts := strings.Split(normalized, "/")
	if len(parts) < 2 || parts[1] == "" {
		return nil, fmt.Errorf("%w: '%s' has no filesystem segment", ErrInvalidPath, raw)
	}

	fsID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' does not start with a filesystem id", ErrInvalidPath, raw)
	}
	for _, segment := range parts[2:] {
		if segment == "." || segment == ".." {
			return nil, fmt.Errorf("%w: '%s' contains a relative segment", ErrInvalidPath, raw)
		}
	}

	return &Path{
		FileSystemID: fsID,
		VirtualPath:  normalized,
		TenantID:     CloneTenant(tenantID),
	}, nil
}

// MustParsePath is ParsePath for static inputs, panicking on error.
func MustParsePath(raw string, tenantID *int64) *Path {
	p, err := ParsePath(raw, tenantID)
	if err != nil {
		panic(err)
	}
	return p
}

// RootPath returns the synthetic root of a filesystem.
func RootPath(fsID uuid.UUID, tenantID *int64) *Path {
	return &Path{
		FileSystemID: fsID,
		VirtualPath:  "/" + fsID.String(),
		TenantID:     CloneTenant(tenantID),
	}
}

// IsRoot is true when the path, stripped of slashes, is just the filesystem id.
func (p *Path) IsRoot() bool {
	return strings.ReplaceAll(p.VirtualPath, "/", "") == p.FileSystemID.String()
}

func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.VirtualPath == other.VirtualPath
}

func (p *Path) String() string {
	return p.VirtualPath
}

// Name returns the last segment, or an empty string for the root.
func (p *Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.VirtualPath[strings.LastIndex(p.VirtualPath, "/")+1:]
}

// Parent returns the enclosing path; the root has no parent.
func (p *Path) Parent() *Path {
	if p.IsRoot() {
		return nil
	}

	return &Path{
		FileSystemID: p.FileSystemID,
		VirtualPath:  p.VirtualPath[:strings.LastIndex(p.VirtualPath, "/")],
		TenantID:     CloneTenant(p.TenantID),
	}
}

// Join appends a single child segment.
func (p *Path) Join(name string) (*Path, error) {
	return ParsePath(p.VirtualPath+"/"+name, p.TenantID)
}

// Segments returns every segment below the filesystem id.
func (p *Path) Segments() []string {
	parts := strings.Split(p.VirtualPath, "/")
	if len(parts) <= 2 {
		return nil
	}
	return parts[2:]
}

// Relative returns the path without its leading "/<filesystem-id>/".
func (p *Path) Relative() string {
	return RelativePath(p.VirtualPath)
}

// RelativePath strips the first two segments ("" and the filesystem id) of a virtual path.
func RelativePath(virtualPath string) string {
	parts := strings.Split(virtualPath, "/")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[2:], "/")
}

// IsDescendantPath reports whether path lies strictly below prefix.
func IsDescendantPath(path, prefix string) bool {
	return strings.HasPrefix(path, prefix+"/")
}

// IsUnderPath reports whether path equals prefix or lies below it.
func IsUnderPath(path, prefix string) bool {
	return path == prefix || IsDescendantPath(path, prefix)
}

// RebasePath substitutes the leading oldPrefix of path with newPrefix.
func RebasePath(path, oldPrefix, newPrefix string) string {
	if !IsUnderPath(path, oldPrefix) {
		return path
	}
	return newPrefix + strings.TrimPrefix(path, oldPrefix)
}
