package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samirrijal/campusnav/internal/adapters/postgres"
	"github.com/samirrijal/campusnav/internal/pkg/config"
	"github.com/samirrijal/campusnav/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down> [migrations-dir]")
	}

	cfg, err := config.Load("campusnav-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.FromEnv()

	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		run(ctx, db, migrationFiles(dir, ".up.sql", false))
	case "down":
		run(ctx, db, migrationFiles(dir, ".down.sql", true))
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// migrationFiles lists dir's files with the given suffix in version order, or reversed for down.
func migrationFiles(dir, suffix string, reverse bool) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	sort.Strings(matches)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	}
	if len(matches) == 0 {
		log.Fatalf("no %s migrations in %s", strings.TrimPrefix(suffix, "."), dir)
	}
	return matches
}

func run(ctx context.Context, db *postgres.DB, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if err := db.ExecScript(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		slog.Info("migration applied", "file", f)
	}
	slog.Info("all migrations applied", "count", len(files))
}
