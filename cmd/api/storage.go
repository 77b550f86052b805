// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/epiclogue/internal/api"
	"github.com/taibuivan/epiclogue/internal/platform/config"
	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/migration"
	mongostore "github.com/taibuivan/epiclogue/internal/platform/mongo"
	pgstore "github.com/taibuivan/epiclogue/internal/platform/postgres"
	"github.com/taibuivan/epiclogue/internal/users/auth"
)

// storage is the opened account store with its readiness probes and cleanup.
type storage struct {
	accounts auth.AccountStore
	checks   []api.DependencyCheck
	close    func()
}

// openStorage connects the backend selected by STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			accounts: auth.NewPostgresAccountStore(pool),
			checks: []api.DependencyCheck{{
				Name: "postgres",
				Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
			}},
			close: func() {
				log.Info("closing_postgres_pool")
				pool.Close()
			},
		}, nil

	case config.StorageMongo:
		client, database, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, constants.AppName, log)
		if err != nil {
			return nil, err
		}
		store := auth.NewMongoAccountStore(database)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &storage{
			accounts: store,
			checks: []api.DependencyCheck{{
				Name: "mongo",
				Ping: func(ctx context.Context) error { return mongostore.Ping(ctx, client) },
			}},
			close: func() {
				log.Info("closing_mongo_client")
				if err := client.Disconnect(context.Background()); err != nil {
					log.Error("mongo_disconnect_failed", slog.Any("error", err))
				}
			},
		}, nil

	case config.StorageMemory:
		log.Warn("memory_storage_enabled", slog.String("note", "accounts are lost on restart"))
		return &storage{accounts: auth.NewMemoryAccountStore(), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
