// Package cli defines the zuschusscheck-web command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "zuschusscheck-web",
		Short:         "ZuschussCheck web front end",
		Long:          "Serves the ZuschussCheck upload flow, result pages and checkout in front of the analysis backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format override (json|console)")

	serveCmd := NewServeCommand(opts)
	// Running the binary without a subcommand serves.
	cmd.RunE = serveCmd.RunE

	cmd.AddCommand(serveCmd)
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
