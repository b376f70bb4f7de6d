package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessiontrack/app/sessiond"
)

// ErrPurgeNotForced is returned when purge runs without --force.
var ErrPurgeNotForced = errors.New("purge deletes every session, rerun with --force")

func newPurgeCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every stored session",
		Long: `Delete every session record from the configured store.

This cannot be undone.

Examples:
  SESSION_STORE=postgres sessiond purge --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return ErrPurgeNotForced
			}
			cfg, err := sessiond.LoadConfig()
			if err != nil {
				return err
			}
			return purge(cmd, cfg)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion of every session")
	return cmd
}

func purge(cmd *cobra.Command, cfg sessiond.Config, opts ...sessiond.AppOption) (err error) {
	ctx := cmd.Context()
	app, err := sessiond.NewApp(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close(ctx))
	}()

	n, err := app.Registry().PurgeAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d sessions\n", n)
	return nil
}
