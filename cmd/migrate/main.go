package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/carlosf02/acg-propack/internal/config"
	"github.com/carlosf02/acg-propack/internal/db"
	"github.com/carlosf02/acg-propack/internal/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("PROPACK_CONFIG"), "path to a YAML config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall migration timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("postgres.dsn (or DATABASE_URL) is required")
	}

	zl, err := logger.New(logger.Config{IsDevelopment: true, Encoding: "console", Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Migrate(ctx, cfg.Postgres.DSN, zl); err != nil {
		if errors.Is(err, db.ErrMigrationLocked) {
			zl.Fatal("migration skipped", zap.Error(err))
		}
		zl.Fatal("migration failed", zap.Error(err))
	}
	zl.Info("all migrations processed")
}
