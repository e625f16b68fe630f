package main

import (
	"github.com/spf13/cobra"

	"github.com/fivecrowns/server/internal/config"
)

// newCmd builds the root command: a single "serve" subcommand that binds
// every server setting to a flag overridable by a FIVECROWNS_-prefixed
// environment variable.
func newCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "fivecrowns-server",
		Short:         "Authoritative multiplayer game server for Five Crowns.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/websocket server.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfg)
		},
	}
	finalize := config.BindFlags(serveCmd.Flags(), cfg)
	serveCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return finalize()
	}

	root.AddCommand(serveCmd)
	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}
