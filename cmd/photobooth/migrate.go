package main

import (
	"fmt"

	"github.com/DanielPopoola/photobooth/db"
	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply the embedded schema migrations to the configured database.

Migrations are idempotent, so running them against an up-to-date schema
changes nothing. --down drops the schema and every record in it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			apply := db.Migrate
			if down {
				apply = db.Rollback
			}
			applied, err := apply(cmd.Context(), a.db.Pool)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll the schema back instead")
	return cmd
}
