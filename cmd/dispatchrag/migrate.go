package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/dispatchrag/internal/infra/sqlite"
)

func newMigrateCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply prediction history migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if dbPath == "" {
				dbPath = cfg.DatabasePath
			}
			if dbPath == "" {
				return usageError{errors.New("no database: set DATABASE_PATH or --db")}
			}

			db, err := sqlite.NewDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			applied, err := sqlite.MigrateUp(cmd.Context(), db)
			if err != nil {
				return err
			}
			for _, m := range applied {
				cmd.Printf("applied %s\n", m.Name)
			}
			v, err := sqlite.MigrationVersion(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			cmd.Printf("schema version %d (%d applied)\n", v, len(applied))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	return cmd
}
