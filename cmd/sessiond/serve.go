package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessiontrack/app/sessiond"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := sessiond.LoadConfig()
			if err != nil {
				return err
			}
			app, err := sessiond.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
}
