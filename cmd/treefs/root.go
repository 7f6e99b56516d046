package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	tenant     int64
	filesystem string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "treefs",
		Short: "Multi-tenant virtual filesystem shell",
		Long: `treefs manages filesystems whose hierarchy lives in a metadata store
while file content lives in an object store.

Paths are either absolute ("/<filesystem-id>/docs/report.pdf") or relative
to the filesystem selected with --filesystem or "fs use".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().Int64VarP(&opts.tenant, "tenant", "t", -1, "Tenant id, negative for no tenant")
	rootCmd.PersistentFlags().StringVarP(&opts.filesystem, "filesystem", "f", "", "Filesystem id for relative paths")

	rootCmd.AddCommand(NewShellCommand(opts))
	rootCmd.AddCommand(NewRunCommand(opts))

	return rootCmd
}
