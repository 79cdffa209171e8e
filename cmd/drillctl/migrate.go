package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vocabdrill/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, err := database.Open(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		applied, err := db.RunMigrations(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
		}
		return nil
	},
}
