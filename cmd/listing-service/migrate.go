package main

import (
	"fmt"

	root "go-marketplace"
	"go-marketplace/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// migrateCommand constructs the 'migrate' subcommand that applies or rolls
// back the embedded goose migrations.
func migrateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Migrates the database, to the latest version by default",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			d, cleanup, err := data.NewData(rt.bc.GetData(), rt.logger)
			if err != nil {
				return err
			}
			defer cleanup()
			db := data.ProvideSQLDB(d)

			goose.SetBaseFS(root.Migrations)
			goose.SetLogger(goose.NopLogger())
			if err := goose.SetDialect("postgres"); err != nil {
				return fmt.Errorf("could not set goose dialect to postgres: %w", err)
			}

			switch direction {
			case "down":
				err = goose.Down(db, "migrations")
			case "status":
				err = goose.Status(db, "migrations")
			default:
				err = goose.Up(db, "migrations")
			}
			if err != nil {
				return fmt.Errorf("could not migrate %s: %w", direction, err)
			}

			version, err := goose.GetDBVersion(db)
			if err != nil {
				return fmt.Errorf("could not read migration version: %w", err)
			}
			log.NewHelper(rt.logger).Infof("database at migration version %d", version)
			return nil
		},
	}

	return cmd
}
