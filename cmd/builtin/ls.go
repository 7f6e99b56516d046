package builtin

import (
	"context"
	"io"

	"github.com/mwantia/treefs/cmd"
)

type LsCommand struct {
}

// Name returns the command identifier
func (ls *LsCommand) Name() string {
	return "ls"
}

// Description returns human-readable help text
func (ls *LsCommand) Description() string {
	return "List the children of a directory or filesystem root"
}

// Usage returns a usage string for help (e.g. "ls -al [path]")
func (ls *LsCommand) Usage() string {
	return "ls [-l] [-h] [path]"
}

// Execute runs the command with parsed arguments
// Returns exit code (0 = success) and error message
func (ls *LsCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	path, err := session.Resolve(args.Arg(0, "/"))
	if err != nil {
		return 1, err
	}

	items, err := api.List(ctx, path)
	if err != nil {
		return 1, err
	}

	if err := cmd.WriteItems(writer, items, args.Bool("long"), args.Bool("human")); err != nil {
		return 1, err
	}
	return 0, nil
}

// GetFlags returns the flag set for this command (this is optional)
func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "long", Short: "l", Type: "bool", Description: "Show type, size, time and content type"},
		&cmd.CommandFlag{Name: "human", Short: "h", Type: "bool", Description: "Print sizes in IEC units"},
	)
}
