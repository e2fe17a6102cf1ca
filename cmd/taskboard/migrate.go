package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Close()

			// opening the backend migrates tables and ensures document indexes
			src, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			src.Close()
			log.Infow("migration complete", "backend", cfg.StoreBackend)
			return nil
		},
	}
}
