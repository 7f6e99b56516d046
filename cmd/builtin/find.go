package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type FindCommand struct{}

func (*FindCommand) Name() string {
	return "find"
}

func (*FindCommand) Description() string {
	return "Search items by name below a path"
}

func (*FindCommand) Usage() string {
	return "find [-l] <name> [path]"
}

func (*FindCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 1 {
		return 2, fmt.Errorf("usage: find [-l] <name> [path]")
	}

	prefix := ""
	if len(args.Args) > 1 {
		path, err := session.Resolve(args.Args[1])
		if err != nil {
			return 1, err
		}
		prefix = path.VirtualPath
	}

	items, err := api.Filter(ctx, args.Args[0], prefix, session.TenantID)
	if err != nil {
		return 1, err
	}

	if !args.Bool("long") {
		for _, item := range items {
			fmt.Fprintln(writer, item.VirtualPath)
		}
		return 0, nil
	}

	if err := cmd.WriteItems(writer, items, true, true); err != nil {
		return 1, err
	}
	return 0, nil
}

func (*FindCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "long", Short: "l", Type: "bool", Description: "Show details instead of paths"},
	)
}
