package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sessiond",
		Short: "Session tracking service",
		Long: `sessiond records client sessions and tracks their inactivity.

Configuration is read from the environment and an optional .env file.
SESSION_STORE selects the backend (mongo, postgres, redis, memory).

Commands:
  serve     Start the HTTP API
  purge     Delete every stored session
  version   Print version information`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newPurgeCmd(), newVersionCmd())
	return root
}
