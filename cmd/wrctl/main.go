// Command wrctl runs one inventory operation from the command line.
//
//	wrctl [--config FILE] [--memory] [--user-id N] [--username NAME] <command> [args]
//	wrctl token                 print a bearer token for the configured user
//	wrctl [--memory] shell      run commands interactively against one store
//	wrctl --memory demo         run a receive/move/consolidate/ship walkthrough
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/carlosf02/acg-propack/internal/adapters/cli"
	"github.com/carlosf02/acg-propack/internal/adapters/repl"
	webAdapter "github.com/carlosf02/acg-propack/internal/adapters/web"
	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/config"
	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/db"
	"github.com/carlosf02/acg-propack/internal/idgen"
	"github.com/carlosf02/acg-propack/internal/logger"
	"github.com/carlosf02/acg-propack/internal/store/postgres"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	fs := pflag.NewFlagSet("wrctl", pflag.ExitOnError)
	fs.SetInterspersed(false)
	configPath := fs.String("config", os.Getenv("PROPACK_CONFIG"), "path to a YAML config file")
	useMemory := fs.Bool("memory", false, "use a seeded in-memory store instead of PostgreSQL")
	userID := fs.Int64("user-id", 1, "acting user id")
	username := fs.String("username", os.Getenv("USER"), "acting user name")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wrctl [flags] <command> [args]")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr, cli.Usage())
	}
	_ = fs.Parse(os.Args[1:])
	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	actor := &core.Actor{ID: *userID, Username: *username}

	if args[0] == "token" {
		tok, err := webAdapter.IssueToken(cfg.Auth.JWTSecret, *actor, cfg.Auth.TokenTTL)
		if err != nil {
			log.Fatalf("token: %v", err)
		}
		fmt.Println(tok)
		return
	}

	zl, err := logger.New(logger.Config{IsDevelopment: true, Encoding: "console", Level: "warn"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	numbers, err := idgen.New(cfg.IDGen.Node, cfg.IDGen.WRPrefix, cfg.IDGen.ShipmentPrefix)
	if err != nil {
		log.Fatalf("id generator: %v", err)
	}

	var store core.Store
	var seed demoSeed
	if *useMemory {
		store, seed = seededMemoryStore()
	} else {
		pool, err := db.NewPool(ctx, cfg.Postgres.DSN, 2)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}
	svc := app.NewAppService(store, numbers, nil, zl)

	if args[0] == "shell" {
		if err := repl.Run(context.Background(), svc, actor, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("shell: %v", err)
		}
		return
	}

	if args[0] == "demo" {
		if !*useMemory {
			log.Fatal("demo writes sample data; run it with --memory")
		}
		if err := runDemo(ctx, svc, seed, actor, os.Stdout); err != nil {
			log.Fatalf("demo: %v", err)
		}
		return
	}

	if err := cli.Run(ctx, svc, actor, args, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		zl.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
