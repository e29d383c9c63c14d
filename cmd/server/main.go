package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/server"
)

func main() {
	config.ReadFile(os.Getenv("CONFIG_FILE"))
	config.BindEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
