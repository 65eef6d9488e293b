package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	webAdapter "github.com/carlosf02/acg-propack/internal/adapters/web"
	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/config"
	"github.com/carlosf02/acg-propack/internal/db"
	"github.com/carlosf02/acg-propack/internal/idgen"
	"github.com/carlosf02/acg-propack/internal/logger"
	"github.com/carlosf02/acg-propack/internal/metrics"
	"github.com/carlosf02/acg-propack/internal/store/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("PROPACK_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Config{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.Log.Encoding,
		Level:         cfg.Log.Level,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(ctx, cfg.Postgres.DSN, zl.Named("migrate")); err != nil {
			zl.Fatal("migrations failed", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	numbers, err := idgen.New(cfg.IDGen.Node, cfg.IDGen.WRPrefix, cfg.IDGen.ShipmentPrefix)
	if err != nil {
		zl.Fatal("id generator", zap.Error(err))
	}

	var rec *metrics.Recorder
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		rec = metrics.New(prometheus.DefaultRegisterer)
		metricsHandler = promhttp.Handler()
	}

	svc := app.NewAppService(postgres.New(pool), numbers, rec, zl)
	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Logger:         zl.Named("http"),
		Metrics:        metricsHandler,
	})

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}
	go func() {
		zl.Info("server starting", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
