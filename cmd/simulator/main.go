package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/campusnav/internal/adapters/nats"
	"github.com/samirrijal/campusnav/internal/adapters/valkey"
	"github.com/samirrijal/campusnav/internal/pkg/config"
	"github.com/samirrijal/campusnav/internal/pkg/logging"
	"github.com/samirrijal/campusnav/internal/workflows"
)

// The simulator runs the Temporal worker for simulated walks.
//
//	simulator                         run the worker
//	simulator start [-reroute] <id>   start a simulated walk for a session
func main() {
	cfg, err := config.Load("campusnav-simulator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.FromEnv()

	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
		Logger:   slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if len(os.Args) > 1 && os.Args[1] == "start" {
		startWalk(c, cfg, os.Args[2:])
		return
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.SimulatedWalkWorkflow)
	w.RegisterActivity(&workflows.WalkActivities{
		Commands: pub,
		Sessions: valkey.NewSessionStore(cache),
	})

	slog.Info("simulator worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startWalk(c client.Client, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	reroute := fs.Bool("reroute", false, "replan from the current location before every step")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: simulator start [-reroute] <session-id>")
		os.Exit(2)
	}
	sessionID := fs.Arg(0)

	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        workflows.WorkflowID(sessionID),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.SimulatedWalkWorkflow, workflows.WalkInput{
		SessionID: sessionID,
		Interval:  time.Duration(cfg.Temporal.StepInterval) * time.Second,
		MaxSteps:  cfg.Temporal.MaxSteps,
		Reroute:   *reroute,
	})
	if err != nil {
		log.Fatalf("start walk: %v", err)
	}
	slog.Info("simulated walk started", "session_id", sessionID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
}
