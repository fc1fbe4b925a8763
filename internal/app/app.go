// Package app assembles the backend, engine and services from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotmarket/internal/backend"
	"slotmarket/internal/config"
	"slotmarket/internal/database"
	"slotmarket/internal/domain"
	"slotmarket/internal/engine"
	"slotmarket/internal/events"
	"slotmarket/internal/logging"
	"slotmarket/internal/metrics"
	"slotmarket/internal/repository"
	"slotmarket/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type App struct {
	Backend domain.Backend
	// DB is set only for the database source.
	DB     *database.DB
	Engine *engine.Engine
	Events *events.EventBus
	Clock  domain.Clock

	Dashboards *service.DashboardService
	Bookings   *service.BookingService
	Reviews    *service.ReviewService
	Viewers    *service.RoleResolver

	closers []func() error
}

func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	loc, err := cfg.Engine.Location()
	if err != nil {
		return nil, fmt.Errorf("engine timezone: %w", err)
	}

	eng, err := newEngine(cfg.Engine, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Engine: eng,
		Events: events.NewEventBus(),
		Clock:  service.NewClock(loc),
	}

	if err := a.initBackend(cfg, logger); err != nil {
		_ = a.Close()
		return nil, err
	}
	subscribeLogging(a.Events, logging.Component(logger, "events"))

	svcLogger := logging.Component(logger, "service")
	resolver := service.NewResolver(a.Backend, cfg.Lookup, svcLogger)
	a.Dashboards = service.NewDashboardService(a.Backend, resolver, eng, a.Clock, a.Events, svcLogger)
	a.Bookings = service.NewBookingService(a.Backend, eng, a.Clock, a.Events, svcLogger)
	a.Reviews = service.NewReviewService(a.Backend, eng, a.Clock, a.Events, svcLogger)
	a.Viewers = service.NewRoleResolver(a.Backend)
	return a, nil
}

func newEngine(cfg config.EngineConfig, logger *zerolog.Logger) (*engine.Engine, error) {
	ratings, err := engine.ParseRatingSource(cfg.RatingSource)
	if err != nil {
		return nil, err
	}
	fallback, err := engine.ParseTemporalFallback(cfg.TemporalFallback)
	if err != nil {
		return nil, err
	}
	return engine.New(
		engine.WithLogger(logger),
		engine.WithRatingSource(ratings),
		engine.WithTemporalFallback(fallback),
		engine.WithFallbackObserver(metrics.IncTemporalFallback),
	), nil
}

func (a *App) initBackend(cfg *config.Config, logger *zerolog.Logger) error {
	switch cfg.Source {
	case config.SourceDatabase:
		db, err := database.Open(cfg.Database, logging.Component(logger, "database"))
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		a.DB = db
		a.Backend = db
		a.closers = append(a.closers, db.Close)
		return nil

	case config.SourceHTTP, "":
		client := backend.NewClient(cfg.Backend, logging.Component(logger, "backend"))
		client.UseCache(a.initCache(cfg.Redis, logger), cfg.Redis.CacheTTL())
		a.Backend = client
		return nil

	default:
		return fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// initCache prefers Redis with an in-memory fallback. Without a reachable
// Redis the memory cache is used alone.
func (a *App) initCache(cfg config.RedisConfig, logger *zerolog.Logger) domain.Cache {
	memory := repository.NewMemoryCache()
	if cfg.Address == "" {
		return memory
	}

	client := repository.NewRedisClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with memory cache")
		_ = repository.Close(client)
		return memory
	}

	logger.Info().Str("addr", cfg.Address).Msg("redis connected")
	a.closers = append(a.closers, func() error { return repository.Close(client) })
	return repository.NewFailoverCache(repository.NewRedisCache(client), memory, logging.Component(logger, "cache"))
}

func subscribeLogging(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventSlotClaimed,
		events.EventReviewSubmitted,
		events.EventReviewRejected,
		events.EventDashboardComputed,
	} {
		bus.Subscribe(eventType, func(e *events.Event) error {
			logger.Debug().Str("event", e.Type).RawJSON("payload", e.Payload).Msg("event published")
			return nil
		})
	}

	bus.Subscribe(events.EventReviewRejected, func(e *events.Event) error {
		var p events.ReviewPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		logger.Info().
			Str("client_id", p.ClientID).
			Str("professional_id", p.ProfessionalID).
			Str("decision", p.Decision).
			Msg("review rejected")
		return nil
	})
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
