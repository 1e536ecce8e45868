package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thad75/questday/internal/catalog"
	"github.com/thad75/questday/internal/clock"
	"github.com/thad75/questday/internal/config"
	"github.com/thad75/questday/internal/database"
	"github.com/thad75/questday/internal/database/memory"
	"github.com/thad75/questday/internal/database/postgres"
	"github.com/thad75/questday/internal/event"
	"github.com/thad75/questday/internal/metrics"
	"github.com/thad75/questday/internal/quest"
	"github.com/thad75/questday/internal/repository"
	"github.com/thad75/questday/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)

	cat, err := catalog.NewLoader().Load(cfg.TemplatePoolPath)
	if err != nil {
		log.Fatalf("Failed to load quest template pool: %v", err)
	}
	slog.Default().Info("Template pool loaded",
		"path", cfg.TemplatePoolPath,
		"templates", cat.Len())

	bus := event.NewMemoryBus()
	collector := metrics.NewEventMetricsCollector()
	if err := collector.Register(bus); err != nil {
		log.Fatalf("Failed to register metrics collector: %v", err)
	}
	publisher := event.NewResilientPublisher(bus, event.DefaultResilientConfig())

	var (
		states   repository.StateRepository
		progress repository.ProgressRepository
		dbPool   database.Pool
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		connStr := cfg.GetDBConnString()
		if err := database.Migrate(connStr); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		pool, err := database.NewPool(connStr, cfg.DBMaxConns, cfg.DBMaxIdle, cfg.DBMaxLife)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		dbPool = pool
		states = postgres.NewStateRepository(pool)
		progress = postgres.NewProgressRepository(pool)
	default:
		store := memory.NewStore()
		states = store
		progress = store
	}
	slog.Default().Info("Store backend ready", "backend", string(cfg.StoreBackend))

	engine := quest.NewEngine(cat, clock.Real{}, publisher)
	questService := quest.NewService(engine, states, progress, cfg.GenerationConfig())

	srv := server.NewServer(cfg.Port, cfg.APIKey, dbPool, questService)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed to start: %v", err)
	case sig := <-stop:
		slog.Default().Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		slog.Default().Error("Graceful shutdown failed", "error", err)
	}
}
