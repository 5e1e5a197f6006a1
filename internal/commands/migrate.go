package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkorchagin/plume/internal/config"
	"github.com/dkorchagin/plume/internal/migrate"
	"github.com/dkorchagin/plume/internal/storage"
)

func openStorage() (*storage.DBStorage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return storage.Open(cfg.Database.Driver, cfg.Database.DSN)
}

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateStatusCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := migrate.NewMigrator(store.DB()).Up(); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the last applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := migrate.NewMigrator(store.DB()).Down(); err != nil {
				return fmt.Errorf("failed to roll back migration: %w", err)
			}
			fmt.Println("Rolled back last migration")
			return nil
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			migrator := migrate.NewMigrator(store.DB())
			applied, err := migrator.AppliedVersions()
			if err != nil {
				return fmt.Errorf("failed to get applied migrations: %w", err)
			}

			fmt.Printf("%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
			for _, m := range migrator.Migrations() {
				status := "Pending"
				if applied[m.Version] {
					status = "Applied"
				}
				fmt.Printf("%-16s  %-30s  %-8s\n", m.Version, m.Name, status)
			}
			return nil
		},
	}
}
