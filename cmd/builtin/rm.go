package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
	"github.com/mwantia/treefs/data"
)

type RmCommand struct{}

func (*RmCommand) Name() string {
	return "rm"
}

func (*RmCommand) Description() string {
	return "Delete items; directories require -r"
}

func (*RmCommand) Usage() string {
	return "rm [-r] <path>..."
}

func (*RmCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 2, fmt.Errorf("usage: rm [-r] <path>...")
	}

	for _, raw := range args.Args {
		path, err := session.Resolve(raw)
		if err != nil {
			return 1, err
		}

		item, err := api.Find(ctx, path)
		if err != nil {
			return 1, err
		}
		if item.IsDirectory() && !args.Bool("recursive") {
			return 1, fmt.Errorf("%w: '%s' is a directory, use -r", data.ErrNotFile, path)
		}

		if _, err := api.Delete(ctx, path); err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func (*RmCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "recursive", Short: "r", Type: "bool", Description: "Delete directories with their contents"},
	)
}
