package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/binding"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/config"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/dedup"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/logging"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/messaging"
	natsclient "github.com/UStAEnts/uems-event-micro-dionysus/internal/messaging/nats"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/messenger"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/schema"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/server"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(slog.String("service", "event-micro-dionysus"))
	logging.SetDefault(logger)

	slog.Info("Starting event micro dionysus",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if *addr != "" {
		listenAddr = *addr
	}

	// Connect the document store
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	var db store.Database
	if cfg.Database.InMemory {
		slog.Warn("Using in-memory store; data will not survive a restart")
		db = store.NewMemoryDatabase()
	} else {
		mongoDB, err := store.ConnectMongo(startupCtx, store.MongoConfig{
			URI:            cfg.Database.URI,
			Database:       cfg.Database.Name,
			ConnectTimeout: cfg.Database.ConnectTimeout(),
		})
		if err != nil {
			slog.Error("Failed to connect to document store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		db = mongoDB
		slog.Info("Connected to document store", slog.String("database", cfg.Database.Name))
	}

	// Construct the per-resource databases
	events, err := database.NewEventDatabase(startupCtx, resourceCollections(db, cfg.Resources.Events), logger)
	if err != nil {
		log.Fatalf("event database: %v", err)
	}
	signups, err := database.NewSignupDatabase(startupCtx, resourceCollections(db, cfg.Resources.Signups), logger)
	if err != nil {
		log.Fatalf("signup database: %v", err)
	}
	entStates, err := database.NewEntStateDatabase(startupCtx, resourceCollections(db, cfg.Resources.EntStates), logger)
	if err != nil {
		log.Fatalf("ent state database: %v", err)
	}
	comments, err := database.NewCommentDatabase(startupCtx, resourceCollections(db, cfg.Resources.Comments), logger)
	if err != nil {
		log.Fatalf("comment database: %v", err)
	}

	// Route each topic family to its binding
	dispatcher := messenger.NewDispatcher()
	dispatcher.Register("events.details", binding.NewEventBinding(events, logger))
	dispatcher.Register("events.signups", binding.NewSignupBinding(signups, logger))
	dispatcher.Register("events.comment", binding.NewCommentBinding(comments, logger))
	dispatcher.Register("ents.details", binding.NewEntStateBinding(entStates, logger))

	validator, err := schema.NewComposite()
	if err != nil {
		log.Fatalf("compile schemas: %v", err)
	}

	guard, err := dedup.NewRedisGuard(cfg.Dedup.RedisURL, cfg.Dedup.TTL(), !cfg.Dedup.Enabled)
	if err != nil {
		slog.Error("Failed to connect duplicate guard", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer guard.Close()

	connect := func(ctx context.Context) (messaging.Client, error) {
		return natsclient.NewClient(natsclient.Config{
			URL:           cfg.Broker.URL,
			Name:          "event-micro-dionysus",
			MaxReconnects: cfg.Broker.MaxReconnects,
			ReconnectWait: cfg.Broker.ReconnectWait(),
			Timeout:       5 * time.Second,
			Username:      cfg.Broker.Username,
			Password:      cfg.Broker.Password,
		}, logger)
	}

	retry := messenger.RetryPolicy{
		Interval:    cfg.Broker.RetryInterval(),
		MaxAttempts: cfg.Broker.RetryMaxAttempts,
	}

	msgr := messenger.New(messenger.Config{
		InboundPatterns: cfg.Broker.InboundPatterns,
		Queue:           cfg.Broker.Queue,
		OutboundSubject: cfg.Broker.OutboundSubject,
	}, connect, retry, validator, dispatcher, guard, logger)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := msgr.Start(shutdownCtx); err != nil {
		slog.Error("Failed to start messenger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler := server.NewDebugHandler(db, events, msgr)
	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	go func() {
		log.Printf("event micro dionysus listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCtx.Done()
	log.Println("shutdown signal received")

	if err := msgr.Stop(); err != nil {
		log.Printf("messenger shutdown error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if err := db.Close(ctx); err != nil {
		log.Printf("store shutdown error: %v", err)
	}
}

func resourceCollections(db store.Database, cfg config.CollectionsConfig) database.Collections {
	return database.Collections{
		Details:   db.Collection(cfg.Details),
		Changelog: db.Collection(cfg.Changelog),
	}
}
