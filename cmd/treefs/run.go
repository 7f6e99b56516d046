package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func NewRunCommand(opts *rootOptions) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Execute a single shell command",
		Example: `  treefs run fs create documents
  treefs run -f <filesystem-id> put ./report.pdf reports/report.pdf
  treefs run -f <filesystem-id> ls -l reports`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			_, err = a.manager.Execute(ctx, cmd.OutOrStdout(), args...)
			return err
		},
	}

	// Everything after the command name belongs to the command
	runCmd.Flags().SetInterspersed(false)

	return runCmd
}
