package main

import (
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docflowctl",
		Short: "Operator tools for the docflow service",
		Long: `docflowctl runs docflow building blocks outside the HTTP server:
laying out text into PDF or Word files, and sending a reminder batch once.

Configuration is read from the same environment variables (and .env file)
as the server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(), newRemindCmd())
	return root
}
