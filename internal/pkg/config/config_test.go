package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/seismeta/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("seismeta-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Cache.BinGridTTL != 600 {
		t.Errorf("expected bingrid ttl 600, got %d", cfg.Cache.BinGridTTL)
	}
	if cfg.Telemetry.ServiceName != "seismeta-test" {
		t.Errorf("expected service name seismeta-test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SEISMETA_DATABASE_HOST", "db.internal")
	t.Setenv("SEISMETA_TEMPORAL_TASK_QUEUE", "bingrid-test")

	cfg, err := config.Load("seismeta-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Temporal.TaskQueue != "bingrid-test" {
		t.Errorf("expected bingrid-test, got %s", cfg.Temporal.TaskQueue)
	}
	if !strings.Contains(cfg.Database.DSN(), "@db.internal:5432/seismeta") {
		t.Errorf("unexpected dsn %s", cfg.Database.DSN())
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "nats.url", "cache.bingrid_ttl"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestLoad_DurationOverride(t *testing.T) {
	t.Setenv("SEISMETA_SERVER_READ_TIMEOUT", "2m")

	cfg, err := config.Load("seismeta-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ReadTimeout != 2*time.Minute {
		t.Errorf("expected 2m read timeout, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("expected 10s write timeout, got %s", cfg.Server.WriteTimeout)
	}
}
