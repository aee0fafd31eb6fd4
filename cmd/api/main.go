package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/server"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := server.Run(context.Background(), cfg, logger); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
