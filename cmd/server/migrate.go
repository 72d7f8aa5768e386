// cmd/server/migrate.go
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
)

func newMigrateCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ledger schema and seed ledger settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openLedgerDB(cfg())
			if err != nil {
				return err
			}
			defer database.Close(db)

			logrus.Info("Migrations completed")
			return nil
		},
	}
}

// openLedgerDB connects, migrates and seeds the singleton settings row.
func openLedgerDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	feeBp, err := cfg.Payment.PlatformFeeBp()
	if err != nil {
		database.Close(db)
		return nil, err
	}
	if err := database.SeedLedgerState(db, feeBp, cfg.Payment.FeeCollector); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to seed ledger state: %w", err)
	}
	return db, nil
}
