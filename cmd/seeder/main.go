// Command seeder publishes synthetic event creation requests to a running
// broker, for local development and load testing.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/logging"
	natsclient "github.com/UStAEnts/uems-event-micro-dionysus/internal/messaging/nats"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/seeder"
)

func main() {
	var (
		url      = flag.String("url", "nats://localhost:4222", "broker URL")
		subject  = flag.String("subject", "events.details.create", "routing key to publish on")
		count    = flag.Int("count", 100, "number of events to publish")
		interval = flag.Duration("interval", 0, "pause between publishes")
		spread   = flag.Duration("spread", 7*24*time.Hour, "window event start times are spread across")
		venues   = flag.String("venues", "", "comma-separated venue id pool")
	)
	flag.Parse()

	logger := logging.New(logging.ParseLevel("info"), "text")

	cfg := natsclient.DefaultConfig()
	cfg.URL = *url
	cfg.Name = "dionysus-seeder"

	client, err := natsclient.NewClient(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	var venuePool []string
	if *venues != "" {
		venuePool = strings.Split(*venues, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := seeder.New(seeder.Config{
		Subject:    *subject,
		Count:      *count,
		Interval:   *interval,
		TimeSpread: *spread,
		Venues:     venuePool,
	}, client, logger)

	if _, err := s.Run(ctx); err != nil {
		logger.Error("seeding aborted", "error", err)
		os.Exit(1)
	}
}
