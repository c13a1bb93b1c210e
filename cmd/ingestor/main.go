package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/campusnav/internal/adapters/campusfile"
	"github.com/samirrijal/campusnav/internal/adapters/postgres"
	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/pkg/config"
	"github.com/samirrijal/campusnav/internal/pkg/logging"
)

// The ingestor loads a campus JSON/YAML file into Postgres.
// Locations are upserted and the link table is replaced as a whole.
func main() {
	cfg, err := config.Load("campusnav-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.FromEnv()

	path := "configs/campus.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	locations, adjacency, err := campusfile.NewSource(path).LoadCampus(ctx)
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}

	// Refuse to write a graph the API could not load.
	g, err := domain.NewGraph(locations, adjacency)
	if err != nil {
		log.Fatalf("validate %s: %v", path, err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLocationRepo(db)
	if err := repo.UpsertBatch(ctx, locations); err != nil {
		log.Fatalf("upsert locations: %v", err)
	}
	if err := repo.ReplaceLinks(ctx, adjacency); err != nil {
		log.Fatalf("replace links: %v", err)
	}

	slog.Info("campus ingested", "file", path, "locations", g.Len(), "links", g.EdgeCount())
}
