package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type UnzipCommand struct{}

func (*UnzipCommand) Name() string {
	return "unzip"
}

func (*UnzipCommand) Description() string {
	return "Extract a zip item into its filesystem"
}

func (*UnzipCommand) Usage() string {
	return "unzip <path>"
}

func (*UnzipCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return 2, fmt.Errorf("usage: unzip <path>")
	}

	path, err := session.Resolve(args.Args[0])
	if err != nil {
		return 1, err
	}

	archive, err := api.Find(ctx, path)
	if err != nil {
		return 1, err
	}

	items, err := api.Unzip(ctx, archive.ID)
	for _, item := range items {
		fmt.Fprintln(writer, item.VirtualPath)
	}
	if err != nil {
		return 1, err
	}

	return 0, nil
}

func (*UnzipCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
