package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mwantia/treefs/cmd"
)

type GetCommand struct{}

func (*GetCommand) Name() string {
	return "get"
}

func (*GetCommand) Description() string {
	return "Download a file to a local path or the output"
}

func (*GetCommand) Usage() string {
	return "get <path> [local-file]"
}

func (*GetCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 1 {
		return 2, fmt.Errorf("usage: get <path> [local-file]")
	}

	path, err := session.Resolve(args.Args[0])
	if err != nil {
		return 1, err
	}

	item, err := api.Find(ctx, path)
	if err != nil {
		return 1, err
	}

	if len(args.Args) < 2 {
		if _, err := api.Download(ctx, item, writer); err != nil {
			return 1, err
		}
		return 0, nil
	}

	f, err := os.Create(args.Args[1])
	if err != nil {
		return 1, err
	}

	n, err := api.Download(ctx, item, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "%s -> %s (%s)\n", item.VirtualPath, args.Args[1], cmd.FormatSize(n, true))
	return 0, nil
}

func (*GetCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
