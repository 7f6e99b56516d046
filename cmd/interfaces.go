package cmd

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/data"
)

// API is a simplified version of the FileSystemService.
// It strips away all functions not required for command operations.
type API interface {
	Find(ctx context.Context, path *data.Path) (*data.Item, error)

	List(ctx context.Context, path *data.Path) ([]*data.Item, error)

	Filter(ctx context.Context, filter, prefix string, tenantID *int64) ([]*data.Item, error)

	CreateDirectory(ctx context.Context, path *data.Path) (*data.Item, error)

	Upload(ctx context.Context, path *data.Path, contentType string, r io.Reader) (*data.Item, error)

	CreateLink(ctx context.Context, path *data.Path, url string) (*data.Item, error)

	GetSize(ctx context.Context, path *data.Path) (int64, error)

	Move(ctx context.Context, source, destination *data.Path, override bool) (*data.Item, error)

	Delete(ctx context.Context, path *data.Path) (uuid.UUID, error)

	Download(ctx context.Context, item *data.Item, w io.Writer) (int64, error)

	CreateZip(ctx context.Context, ids []uuid.UUID) (*data.Item, error)

	ZipTo(ctx context.Context, w io.Writer, items ...*data.Item) error

	Unzip(ctx context.Context, id uuid.UUID) ([]*data.Item, error)

	CreateFileSystem(ctx context.Context, name string, tenantID *int64) (*data.FileSystem, error)

	GetFileSystem(ctx context.Context, id uuid.UUID) (*data.FileSystem, error)

	RenameFileSystem(ctx context.Context, id uuid.UUID, name string) (*data.FileSystem, error)

	DeleteFileSystem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	GetFileSystems(ctx context.Context, tenantID *int64) ([]*data.FileSystem, error)

	GetAllFileSystems(ctx context.Context) ([]*data.FileSystem, error)
}

// Command represents an executable command of the treefs shell.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls -l [path]")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, session *Session, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
