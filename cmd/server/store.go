package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/fastshift/internal/config"
	"github.com/iliyamo/fastshift/internal/database"
	"github.com/iliyamo/fastshift/internal/repository"
	"github.com/iliyamo/fastshift/internal/repository/mongostore"
	"github.com/iliyamo/fastshift/internal/store"
)

// openSQL opens the SQL database selected by cfg with its DDL dialect.
func openSQL(cfg config.Config) (*sql.DB, repository.Dialect, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return db, repository.MySQL, err
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		return db, repository.SQLite, err
	}
	return nil, "", fmt.Errorf("store driver %q is not SQL", cfg.StoreDriver)
}

// openStore builds the storage context for cfg.StoreDriver. The embedded
// SQLite store creates its schema on open.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if cfg.StoreDriver == config.DriverMongo {
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return mongostore.NewStore(client, cfg.MongoDB), nil
	}

	db, dialect, err := openSQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.StoreDriver, err)
	}
	if dialect == repository.SQLite {
		if err := repository.Migrate(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return repository.NewStore(db), nil
}
