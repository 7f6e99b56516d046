package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type MkdirCommand struct{}

func (*MkdirCommand) Name() string {
	return "mkdir"
}

func (*MkdirCommand) Description() string {
	return "Create directories including missing parents"
}

func (*MkdirCommand) Usage() string {
	return "mkdir <path>..."
}

func (*MkdirCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 2, fmt.Errorf("usage: mkdir <path>...")
	}

	for _, raw := range args.Args {
		path, err := session.Resolve(raw)
		if err != nil {
			return 1, err
		}
		if _, err := api.CreateDirectory(ctx, path); err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func (*MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
