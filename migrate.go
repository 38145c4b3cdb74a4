package main

import (
	"fmt"

	"github.com/example/todofrog/config"
	"github.com/example/todofrog/database"
	"github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/domain/user"
	"github.com/spf13/cobra"
)

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DBURL, cfg.DBDebug)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := task.NewRepository(db).Migrate(); err != nil {
				return err
			}
			if err := user.NewRepository(db).Migrate(); err != nil {
				return err
			}

			fmt.Printf("Migrated %s database %s\n", database.Driver(cfg.DBURL), cfg.DBURL)
			return nil
		},
	}
}
