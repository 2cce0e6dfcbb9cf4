package main

import (
	"fmt"
	"time"

	"github.com/DanielPopoola/photobooth/internal/infrastructure/persistence/postgres"
	"github.com/spf13/cobra"
)

func sweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one storage sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			sweeper, err := a.sweepService(postgres.NewPhotoRepository(a.db))
			if err != nil {
				return err
			}

			report, err := sweeper.Run(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted=%d purged=%d failed=%d\n",
				report.Deleted, report.Purged, report.Failed)
			return nil
		},
	}
}
