package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type MvCommand struct{}

func (*MvCommand) Name() string {
	return "mv"
}

func (*MvCommand) Description() string {
	return "Move or rename an item, replacing the destination with -f"
}

func (*MvCommand) Usage() string {
	return "mv [-f] <source> <destination>"
}

func (*MvCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return 2, fmt.Errorf("usage: mv [-f] <source> <destination>")
	}

	source, err := session.Resolve(args.Args[0])
	if err != nil {
		return 1, err
	}
	destination, err := session.Resolve(args.Args[1])
	if err != nil {
		return 1, err
	}

	item, err := api.Move(ctx, source, destination, args.Bool("force"))
	if err != nil {
		return 1, err
	}
	if item != nil {
		fmt.Fprintf(writer, "%s -> %s\n", source, item.VirtualPath)
	}

	return 0, nil
}

func (*MvCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "force", Short: "f", Type: "bool", Description: "Replace an existing destination"},
	)
}
