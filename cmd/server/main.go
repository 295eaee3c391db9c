package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/ride-dispatch/internal/auth"
	"github.com/example/ride-dispatch/internal/config"
	"github.com/example/ride-dispatch/internal/dispatch"
	httpapi "github.com/example/ride-dispatch/internal/http"
	"github.com/example/ride-dispatch/internal/ingest"
	"github.com/example/ride-dispatch/internal/logging"
	"github.com/example/ride-dispatch/internal/room"
	"github.com/example/ride-dispatch/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("config load failed", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	store, err := storage.Open(cfg.SQLitePath)
	if err != nil {
		log.Error("store open failed", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}

	var journal dispatch.Journal
	if len(cfg.KafkaBrokers) > 0 {
		j := ingest.NewJournal(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer j.Close()
		journal = j
		log.Info("event journal enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	engine := dispatch.NewEngine(cfg.Dispatch, room.NewRegistry(), store, journal, logging.Component(log, "dispatch"))
	if err := engine.Hydrate(); err != nil {
		log.Error("hydration failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := dispatch.NewSweeper(engine, cfg.Dispatch.SweepInterval, logging.Component(log, "sweeper"))
	go sweeper.Run(ctx)

	authSvc := auth.NewService(store, cfg.Session.TTL)
	api := httpapi.NewServer(engine, authSvc, cfg.Stream, logging.Component(log, "http"))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
}
