package database

import (
	"context"
	"fmt"
	"log"

	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/kv"
)

// OpenStore connects the key-value backend named by cfg.Driver. The returned
// close func releases the underlying connection.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (kv.Store, func() error, error) {
	log.Printf("[Database] OpenStore - driver: %s", cfg.Driver)

	switch cfg.Driver {
	case "memory":
		return kv.NewMemoryStore(), func() error { return nil }, nil

	case "redis":
		client, err := InitRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewRedisStore(client), client.Close, nil

	case "postgres":
		db, err := InitDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store, err := kv.NewSQLStore(db, kv.Postgres)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	case "sqlite", "":
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := kv.NewSQLStore(db, kv.SQLite)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
