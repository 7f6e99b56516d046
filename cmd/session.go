package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

// Session is the state a shell keeps between commands.
type Session struct {
	TenantID *int64

	// FileSystemID resolves relative paths, uuid.Nil until a filesystem is selected
	FileSystemID uuid.UUID
}

// Resolve parses raw as a virtual path. Paths whose first segment is not a
// filesystem id are taken relative to the selected filesystem.
func (s *Session) Resolve(raw string) (*data.Path, error) {
	if path, err := data.ParsePath(raw, s.TenantID); err == nil {
		return path, nil
	}

	if s.FileSystemID == uuid.Nil {
		return nil, fmt.Errorf("%w: '%s' is relative and no filesystem is selected", data.ErrInvalidPath, raw)
	}
	return data.ParsePath("/"+s.FileSystemID.String()+"/"+strings.TrimPrefix(raw, "/"), s.TenantID)
}

// Root returns the root of the selected filesystem.
func (s *Session) Root() (*data.Path, error) {
	if s.FileSystemID == uuid.Nil {
		return nil, fmt.Errorf("%w: no filesystem is selected", data.ErrInvalidPath)
	}
	return data.RootPath(s.FileSystemID, s.TenantID), nil
}
