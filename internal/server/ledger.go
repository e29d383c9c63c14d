package server

import (
	"context"
	"fmt"
	"log"

	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/database"
	"github.com/savingsjars/backend/internal/services"
)

// OpenLedger connects the configured storage backend and builds a ledger on it.
func OpenLedger(ctx context.Context, cfg *config.Config) (*services.LedgerStore, func() error, error) {
	store, closeStore, err := database.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[Server] OpenLedger - driver: %s, prefix: %s", cfg.Storage.Driver, cfg.Storage.KeyPrefix)
	return services.NewLedgerStore(store, cfg.Storage.KeyPrefix, cfg.Ledger), closeStore, nil
}

// Start opens the ledger and serves HTTP until ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config) error {
	if cfg.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key must be set (env JWT_SECRET_KEY) before serving the API")
	}

	ledger, closeStore, err := OpenLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}()

	return Run(ctx, New(cfg, ledger))
}
