package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type LinkCommand struct{}

func (*LinkCommand) Name() string {
	return "link"
}

func (*LinkCommand) Description() string {
	return "Create an external link item"
}

func (*LinkCommand) Usage() string {
	return "link <path> <url>"
}

func (*LinkCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return 2, fmt.Errorf("usage: link <path> <url>")
	}

	path, err := session.Resolve(args.Args[0])
	if err != nil {
		return 1, err
	}

	item, err := api.CreateLink(ctx, path, args.Args[1])
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "%s %s -> %s\n", item.ID, item.VirtualPath, item.ExternalURL)
	return 0, nil
}

func (*LinkCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
