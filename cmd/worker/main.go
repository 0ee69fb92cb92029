package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/seismeta/internal/adapters/nats"
	"github.com/samirrijal/seismeta/internal/adapters/postgres"
	"github.com/samirrijal/seismeta/internal/adapters/valkey"
	"github.com/samirrijal/seismeta/internal/core/domain"
	"github.com/samirrijal/seismeta/internal/core/ports"
	"github.com/samirrijal/seismeta/internal/core/usecases"
	"github.com/samirrijal/seismeta/internal/pkg/config"
	"github.com/samirrijal/seismeta/internal/pkg/logging"
	"github.com/samirrijal/seismeta/internal/pkg/telemetry"
	"github.com/samirrijal/seismeta/internal/workflows"
)

func main() {
	cfg, err := config.Load("seismeta-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr, "seismeta"); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer c.Close()
		cache = c
	}

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	binGrids := usecases.NewBinGridService(postgres.NewSurveyRepo(db), cache, publisher).WithCacheTTL(cfg.Cache.BinGridTTL)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.BinGridRefreshWorkflow)
	w.RegisterActivity(&workflows.BinGridActivities{BinGrids: binGrids})

	// Every registered survey gets its bin grid recomputed.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "bingrid-refresher")
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeSurveyRegistered(ctx, func(ctx context.Context, s *domain.Survey) error {
		opts := client.StartWorkflowOptions{
			ID:        "bingrid-refresh-" + s.ID,
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		run, err := c.ExecuteWorkflow(ctx, opts, workflows.BinGridRefreshWorkflow, workflows.BinGridRefreshInput{SDPaths: []string{s.SDPath}})
		if err != nil {
			slog.Error("start refresh workflow", "sdpath", s.SDPath, "error", err)
			return err
		}
		slog.Info("refresh workflow started", "sdpath", s.SDPath, "workflow_id", run.GetID(), "run_id", run.GetRunID())
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("bin grid worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
