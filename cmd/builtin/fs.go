package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/cmd"
	"github.com/mwantia/treefs/data"
)

// FsCommand manages filesystems and selects the one relative paths resolve against.
type FsCommand struct{}

func (*FsCommand) Name() string {
	return "fs"
}

func (*FsCommand) Description() string {
	return "Manage filesystems: ls, create, rename, rm, use"
}

func (*FsCommand) Usage() string {
	return "fs ls [-a] | fs create <name> | fs rename <id> <name> | fs rm <id> | fs use <id>"
}

func (f *FsCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	switch args.Arg(0, "ls") {
	case "ls":
		var list []*data.FileSystem
		var err error
		if args.Bool("all") {
			list, err = api.GetAllFileSystems(ctx)
		} else {
			list, err = api.GetFileSystems(ctx, session.TenantID)
		}
		if err != nil {
			return 1, err
		}
		if err := cmd.WriteFileSystems(writer, list); err != nil {
			return 1, err
		}

	case "create":
		if len(args.Args) != 2 {
			return 2, fmt.Errorf("usage: fs create <name>")
		}
		fs, err := api.CreateFileSystem(ctx, args.Args[1], session.TenantID)
		if err != nil {
			return 1, err
		}
		if session.FileSystemID == uuid.Nil {
			session.FileSystemID = fs.ID
		}
		fmt.Fprintln(writer, fs.ID)

	case "rename":
		if len(args.Args) != 3 {
			return 2, fmt.Errorf("usage: fs rename <id> <name>")
		}
		id, err := data.ParseID(args.Args[1])
		if err != nil {
			return 1, err
		}
		if _, err := api.RenameFileSystem(ctx, id, args.Args[2]); err != nil {
			return 1, err
		}

	case "rm":
		if len(args.Args) != 2 {
			return 2, fmt.Errorf("usage: fs rm <id>")
		}
		id, err := data.ParseID(args.Args[1])
		if err != nil {
			return 1, err
		}
		if _, err := api.DeleteFileSystem(ctx, id); err != nil {
			return 1, err
		}
		if session.FileSystemID == id {
			session.FileSystemID = uuid.Nil
		}

	case "use":
		if len(args.Args) != 2 {
			return 2, fmt.Errorf("usage: fs use <id>")
		}
		id, err := data.ParseID(args.Args[1])
		if err != nil {
			return 1, err
		}
		if _, err := api.GetFileSystem(ctx, id); err != nil {
			return 1, err
		}
		session.FileSystemID = id

	default:
		return 2, fmt.Errorf("unknown subcommand '%s', usage: %s", args.Args[0], f.Usage())
	}

	return 0, nil
}

func (*FsCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "all", Short: "a", Type: "bool", Description: "List filesystems of every tenant"},
	)
}
