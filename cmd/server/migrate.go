package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/fastshift/internal/config"
	"github.com/iliyamo/fastshift/internal/repository"
	"github.com/iliyamo/fastshift/internal/repository/mongostore"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the SQL schema or the MongoDB indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if cfg.StoreDriver == config.DriverMongo {
				client, err := mongostore.Connect(ctx, cfg.MongoURI)
				if err != nil {
					return err
				}
				defer func() { _ = client.Disconnect(ctx) }()
				if err := mongostore.EnsureIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
					return fmt.Errorf("ensure indexes: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexes ready on %s\n", cfg.MongoDB)
				return nil
			}

			db, dialect, err := openSQL(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			if err := repository.Migrate(ctx, db, dialect); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", dialect)
			return nil
		},
	}
}
