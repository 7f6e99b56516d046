package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewShellCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			return a.shell(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// shell reads one command per line until EOF, "exit" or cancellation.
func (a *app) shell(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, a.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			a.help(out)
			continue
		}

		if code, err := a.manager.Execute(ctx, out, args...); err != nil {
			fmt.Fprintf(out, "error (%d): %v\n", code, err)
		}
	}
}

func (a *app) help(out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, command := range a.manager.List() {
		fmt.Fprintf(tw, "%s\t%s\n", command.Usage(), command.Description())
	}
	fmt.Fprintf(tw, "help\tShow this help\n")
	fmt.Fprintf(tw, "exit\tLeave the shell\n")
	tw.Flush()
}
