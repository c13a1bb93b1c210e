package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/campusnav/internal/adapters/campusfile"
	"github.com/samirrijal/campusnav/internal/adapters/http"
	natsadapter "github.com/samirrijal/campusnav/internal/adapters/nats"
	"github.com/samirrijal/campusnav/internal/adapters/postgres"
	"github.com/samirrijal/campusnav/internal/adapters/valkey"
	"github.com/samirrijal/campusnav/internal/core/ports"
	"github.com/samirrijal/campusnav/internal/core/usecases"
	"github.com/samirrijal/campusnav/internal/pkg/config"
	"github.com/samirrijal/campusnav/internal/pkg/logging"
	"github.com/samirrijal/campusnav/internal/pkg/metrics"
	"github.com/samirrijal/campusnav/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("campusnav-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Campus graph source
	var (
		db     *postgres.DB
		source ports.GraphSource
	)
	switch cfg.Campus.Source {
	case "file":
		source = campusfile.NewSource(cfg.Campus.File)
	default:
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		source = postgres.NewLocationRepo(db)
	}

	graph, err := usecases.LoadGraph(ctx, source, cfg.Campus.Bidirectional)
	if err != nil {
		log.Fatalf("campus graph: %v", err)
	}

	// Cache and session store; both optional
	var (
		cache    ports.CacheService
		sessions ports.SessionStore
	)
	valkeyClient, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, routes are not cached and sessions live in memory only", "error", err)
	} else {
		defer valkeyClient.Close()
		cache = valkeyClient
		sessions = valkey.NewSessionStore(valkeyClient)
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, session events are not published", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Use cases
	locationSvc := usecases.NewLocationService(graph)
	routeSvc := usecases.NewRouteService(graph, cache, cfg.Navigation.RouteCacheTTL)
	navSvc := usecases.NewNavigationService(graph, sessions, publisher, usecases.NavigationOptions{
		SessionTTL:      time.Duration(cfg.Navigation.SessionTTL) * time.Second,
		WrongWaySamples: cfg.Navigation.WrongWaySamples,
	})

	// Queued commands (marker scans, simulated walk ticks)
	var commands ports.CommandSubscriber
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats command consumer unavailable", "error", err)
	} else {
		defer sub.Close()
		commands = sub
	}
	if commands != nil {
		if err := commands.SubscribeCommands(ctx, navSvc.HandleCommand); err != nil {
			slog.Error("subscribe to session commands failed", "error", err)
		}
	}

	go housekeeping(ctx, navSvc, db)

	deps := &http.Dependencies{
		Locations:  locationSvc,
		Routes:     routeSvc,
		Navigation: navSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      valkeyClient,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Campus Navigation API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "locations", graph.Len(), "links", graph.EdgeCount())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// housekeeping drops idle in-memory sessions and refreshes pool gauges once a minute.
func housekeeping(ctx context.Context, nav *usecases.NavigationService, db *postgres.DB) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := nav.Sweep(); n > 0 {
				slog.Info("idle sessions evicted", "count", n, "active", nav.Active())
			}
			if db != nil {
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}
}
