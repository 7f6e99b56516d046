package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mwantia/treefs/cmd"
	"github.com/mwantia/treefs/data"
)

type ZipCommand struct{}

func (*ZipCommand) Name() string {
	return "zip"
}

func (*ZipCommand) Description() string {
	return "Archive items next to the first one, or into a local file with -o"
}

func (*ZipCommand) Usage() string {
	return "zip [-o local-file] <path>..."
}

func (*ZipCommand) Execute(ctx context.Context, api cmd.API, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 2, fmt.Errorf("usage: zip [-o local-file] <path>...")
	}

	items := make([]*data.Item, 0, len(args.Args))
	for _, raw := range args.Args {
		path, err := session.Resolve(raw)
		if err != nil {
			return 1, err
		}
		item, err := api.Find(ctx, path)
		if err != nil {
			return 1, err
		}
		items = append(items, item)
	}

	if output := args.String("output"); output != "" {
		f, err := os.Create(output)
		if err != nil {
			return 1, err
		}

		err = api.ZipTo(ctx, f, items...)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return 1, err
		}

		fmt.Fprintf(writer, "%d items -> %s\n", len(items), output)
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	archive, err := api.CreateZip(ctx, ids)
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "%s %s (%s)\n", archive.ID, archive.VirtualPath, cmd.FormatSize(archive.Size(), true))
	return 0, nil
}

func (*ZipCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		&cmd.CommandFlag{Name: "output", Short: "o", Type: "string", Description: "Write the archive to a local file"},
	)
}
