package cli

import (
	"github.com/spf13/cobra"

	"github.com/landgauge/landgauge/internal/infrastructure/database/postgres"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

func newMigrateCommand() *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sales corpus schema",
	}
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := getCLIContext(cmd)
			if err := postgres.RunMigrations(cc.Config.Database.MigrateURL(), migrationsPath); err != nil {
				return err
			}
			cc.Logger.Info("migrations applied", logging.String("path", migrationsPath))
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := getCLIContext(cmd)
			if err := postgres.RollbackMigrations(cc.Config.Database.MigrateURL(), migrationsPath, steps); err != nil {
				return err
			}
			cc.Logger.Info("migrations rolled back",
				logging.String("path", migrationsPath),
				logging.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
