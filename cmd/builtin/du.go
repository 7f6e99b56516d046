package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type DuCommand struct{}

func (*DuCommand) Name() string {
	return "du"
}

func (*DuCommand) Description() string {
	return "Summarize the size of a path and everything below it"
}

func (*DuCommand) Usage() string {
	return "du [-h] [path]"
}

func (*DuCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	path, err := session.Resolve(args.Arg(0, "/"))
	if err != nil {
		return 1, err
	}

	size, err := api.GetSize(ctx, path)
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "%s\t%s\n", cmd.FormatSize(size, args.Bool("human")), path)
	return 0, nil
}

func (*DuCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "human", Short: "h", Type: "bool", Description: "Print sizes in IEC units"},
	)
}
