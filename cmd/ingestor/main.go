package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/seismeta/internal/adapters/nats"
	"github.com/samirrijal/seismeta/internal/adapters/postgres"
	"github.com/samirrijal/seismeta/internal/adapters/valkey"
	"github.com/samirrijal/seismeta/internal/core/domain"
	"github.com/samirrijal/seismeta/internal/core/ports"
	"github.com/samirrijal/seismeta/internal/core/usecases"
	"github.com/samirrijal/seismeta/internal/pkg/config"
	"github.com/samirrijal/seismeta/internal/pkg/logging"
)

// usage: ingestor [manifest.json] [sdpath,sdpath,...]
func main() {
	cfg, err := config.Load("seismeta-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr, "seismeta"); err != nil {
		slog.Warn("valkey unavailable, cached bin grids will expire on their own", "error", err)
	} else {
		defer c.Close()
		cache = c
	}

	var publisher ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, no refresh events will be sent", "error", err)
	} else {
		defer p.Close()
		publisher = p
	}

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	manifest, err := readManifest(manifestPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	filter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			filter[strings.TrimSpace(s)] = true
		}
	}

	slog.Info("seismeta ingestor", "surveys", len(manifest.Surveys), "source", manifest.Source)

	client := &http.Client{Timeout: 60 * time.Second}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		surveys []domain.Survey
	)
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, entry := range manifest.Surveys {
		if len(filter) > 0 && !filter[entry.SDPath] {
			continue
		}

		wg.Add(1)
		go func(e SurveyEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s, err := loadSurvey(ctx, client, e)
			if err != nil {
				slog.Error("load survey", "sdpath", e.SDPath, "error", err)
				return
			}
			mu.Lock()
			surveys = append(surveys, s)
			mu.Unlock()
		}(entry)
	}
	wg.Wait()

	svc := usecases.NewSurveyService(postgres.NewSurveyRepo(db), cache, publisher)
	rejected, err := svc.RegisterBatch(ctx, surveys)
	if err != nil {
		log.Fatalf("register: %v", err)
	}
	for sdpath, reason := range rejected {
		slog.Warn("survey rejected", "sdpath", sdpath, "error", reason)
	}

	slog.Info("ingestion complete", "registered", len(surveys)-len(rejected), "rejected", len(rejected))
}
