// Package seeder publishes synthetic event traffic against a running
// instance, for local development and load testing.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/messaging"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// Config controls how much traffic the seeder generates and where it lands.
type Config struct {
	// Subject is the routing key creation requests are published on.
	Subject string

	// Count is the number of events to publish.
	Count int

	// Interval is the pause between publishes. Zero publishes flat out.
	Interval time.Duration

	// TimeSpread places event start times across the window ending now.
	// Zero starts every event in the near future instead.
	TimeSpread time.Duration

	// Venues is the pool fake events draw their venue ids from.
	Venues []string
}

// Seeder generates and publishes fake event creation requests.
type Seeder struct {
	cfg       Config
	publisher messaging.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New builds a seeder publishing through the given publisher.
func New(cfg Config, publisher messaging.Publisher, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Subject == "" {
		cfg.Subject = "events.details.create"
	}
	if len(cfg.Venues) == 0 {
		cfg.Venues = []string{"venue-601", "venue-emma", "venue-stage"}
	}
	return &Seeder{
		cfg:       cfg,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "seeder")),
		now:       time.Now,
	}
}

// Run publishes cfg.Count creation requests and returns how many succeeded.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	gofakeit.Seed(time.Now().UnixNano())

	s.logger.Info("starting seeder",
		slog.String("subject", s.cfg.Subject),
		slog.Int("count", s.cfg.Count),
		slog.Duration("interval", s.cfg.Interval),
		slog.Duration("time_spread", s.cfg.TimeSpread))

	sent := 0
	for i := 0; i < s.cfg.Count; i++ {
		request := s.generate(i)
		data, err := json.Marshal(request)
		if err != nil {
			return sent, fmt.Errorf("serializing event %d: %w", i, err)
		}

		if err := s.publisher.Publish(ctx, s.cfg.Subject, data); err != nil {
			s.logger.Warn("publish failed",
				slog.Int64("msg_id", request.MsgID),
				slog.String("error", err.Error()))
		} else {
			sent++
		}

		if s.cfg.Interval > 0 && i < s.cfg.Count-1 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-time.After(s.cfg.Interval):
			}
		}
	}

	s.logger.Info("seeding complete", slog.Int("sent", sent), slog.Int("failed", s.cfg.Count-sent))
	return sent, nil
}

// generate builds one fake creation request. Start times are jittered across
// the configured window, walking backwards from now.
func (s *Seeder) generate(index int) *models.CreateEventRequest {
	start := s.startTime(index)
	duration := time.Duration(1+rand.Intn(5)) * time.Hour

	venues := []string{s.cfg.Venues[rand.Intn(len(s.cfg.Venues))]}
	if rand.Float64() < 0.2 && len(s.cfg.Venues) > 1 {
		venues = append(venues, s.cfg.Venues[rand.Intn(len(s.cfg.Venues))])
	}

	return &models.CreateEventRequest{
		Envelope: models.Envelope{
			MsgID:     int64(index) + 1,
			Intention: models.IntentionCreate,
			UserID:    gofakeit.Username(),
			RequestID: gofakeit.UUID(),
		},
		Name:       fmt.Sprintf("%s %s", gofakeit.HipsterWord(), gofakeit.NounAbstract()),
		Start:      start.Unix(),
		End:        start.Add(duration).Unix(),
		VenueIDs:   venues,
		Attendance: int64(10 + rand.Intn(490)),
	}
}

func (s *Seeder) startTime(index int) time.Time {
	now := s.now()
	if s.cfg.TimeSpread <= 0 {
		return now.Add(time.Duration(1+index) * time.Hour)
	}

	// Jittered distribution across the window, same shape every run size.
	baseInterval := float64(s.cfg.TimeSpread) / float64(s.cfg.Count)
	offset := time.Duration(float64(index)*baseInterval) +
		time.Duration((rand.Float64()*2.0-1.0)*baseInterval*0.4)
	if offset < 0 {
		offset = 0
	}
	if offset > s.cfg.TimeSpread {
		offset = s.cfg.TimeSpread
	}
	return now.Add(-(s.cfg.TimeSpread - offset))
}
