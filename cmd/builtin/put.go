package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mwantia/treefs/cmd"
)

// PutCommand uploads a local file, or stdin when the source is "-".
type PutCommand struct {
	Stdin io.Reader
}

func (*PutCommand) Name() string {
	return "put"
}

func (*PutCommand) Description() string {
	return "Upload a local file"
}

func (*PutCommand) Usage() string {
	return "put [-t content-type] <local-file|-> <path>"
}

func (p *PutCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return 2, fmt.Errorf("usage: %s", p.Usage())
	}

	path, err := session.Resolve(args.Args[1])
	if err != nil {
		return 1, err
	}

	var source io.Reader
	if args.Args[0] == "-" {
		source = p.Stdin
		if source == nil {
			source = os.Stdin
		}
	} else {
		f, err := os.Open(args.Args[0])
		if err != nil {
			return 1, err
		}
		defer f.Close()
		source = f
	}

	item, err := api.Upload(ctx, path, args.String("type"), source)
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "%s %s (%s)\n", item.ID, item.VirtualPath, cmd.FormatSize(item.Size(), true))
	return 0, nil
}

func (*PutCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "type", Short: "t", Type: "string", Description: "Content type, inferred when empty"},
	)
}
