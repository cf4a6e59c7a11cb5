package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/artem13815/meetups/migrations"
	"github.com/artem13815/meetups/pkg/logging"
	"github.com/artem13815/meetups/pkg/storage/postgres"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	logger := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fatalf("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.Connect(ctx, dbURL)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		fatalf("migration init failed: %v", err)
	}
	defer func() { _ = m.Close() }()

	switch args[0] {
	case "up":
		if err := m.Up(ctx); err != nil {
			fatalf("up failed: %v", err)
		}
		slog.Info("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Down(ctx, steps); err != nil {
			fatalf("down failed: %v", err)
		}
		slog.Info("migrations: down completed", "steps", steps)

	case "version":
		v, err := m.Version(ctx)
		if err != nil {
			fatalf("version failed: %v", err)
		}
		fmt.Printf("version: %d\n", v)

	case "status":
		states, err := m.Status(ctx)
		if err != nil {
			fatalf("status failed: %v", err)
		}
		for _, s := range states {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%05d  %-8s %s\n", s.Version, state, s.Path)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current schema version
  status       List migrations and whether they are applied

Environment:
  DATABASE_URL  Required. Postgres DSN.
  LOG_LEVEL     debug, info, warn or error (default: info)`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
