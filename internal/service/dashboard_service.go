package service

import (
	"context"
	"time"

	"slotmarket/internal/domain"
	"slotmarket/internal/engine"
	"slotmarket/internal/events"
	"slotmarket/internal/metrics"
	"slotmarket/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ClientDashboard struct {
	ClientID string               `json:"clientId"`
	Stats    models.ClientStats   `json:"stats"`
	Upcoming []models.BookingView `json:"upcoming"`
	History  []models.BookingView `json:"history"`
}

type ProfessionalDashboard struct {
	Professional models.ProfessionalRecord `json:"professional"`
	Stats        models.ProfessionalStats  `json:"stats"`
	Upcoming     []models.BookingView      `json:"upcoming"`
	History      []models.BookingView      `json:"history"`
	Availability []models.DaySlots         `json:"availability"`
}

// DashboardService computes the per-role dashboards. Each call fetches a
// fresh snapshot; nothing is written back.
type DashboardService struct {
	backend  domain.Backend
	resolver *Resolver
	engine   *engine.Engine
	clock    domain.Clock
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewDashboardService(
	backend domain.Backend,
	resolver *Resolver,
	eng *engine.Engine,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		backend:  backend,
		resolver: resolver,
		engine:   eng,
		clock:    clock,
		eventBus: eventBus,
		logger:   nopLogger(logger),
	}
}

func (s *DashboardService) Client(ctx context.Context, clientID string) (*ClientDashboard, error) {
	started := time.Now()

	records, err := s.backend.AppointmentsByClient(ctx, clientID)
	if err != nil {
		return nil, backendError(ctx, "appointments_by_client", err)
	}

	proIDs := make([]string, 0, len(records))
	for _, rec := range records {
		proIDs = append(proIDs, rec.ProfessionalID)
	}
	professionals, err := s.resolver.Professionals(ctx, proIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	lookups := engine.Lookups{
		Professionals: professionals,
		ServiceTypes:  serviceTypes(professionals),
	}
	views := s.engine.NormalizeForClient(records, lookups, now)
	upcoming, history := engine.SplitUpcomingHistory(views, now.Location())

	dash := &ClientDashboard{
		ClientID: clientID,
		Stats:    s.engine.ClientStatistics(records, now),
		Upcoming: upcoming,
		History:  history,
	}
	s.computed(models.RoleClient, clientID, len(upcoming), len(history), started)
	return dash, nil
}

func (s *DashboardService) Professional(ctx context.Context, professionalID string) (*ProfessionalDashboard, error) {
	started := time.Now()

	var (
		pro     *models.ProfessionalRecord
		records []models.AppointmentRecord
		reviews []models.ReviewRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pro, err = s.backend.Professional(gctx, professionalID)
		if err != nil {
			return backendError(ctx, "professional", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.backend.AppointmentsByProfessional(gctx, professionalID)
		if err != nil {
			return backendError(ctx, "appointments_by_professional", err)
		}
		return nil
	})
	if s.engine.RatingSource() == engine.RatingSourceReviews {
		g.Go(func() error {
			var err error
			reviews, err = s.backend.ReviewsByProfessional(gctx, professionalID)
			if err != nil {
				return backendError(ctx, "reviews_by_professional", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if pro == nil {
		return nil, backendError(ctx, "professional", domain.ErrNotFound)
	}

	clientIDs := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.IsClaimed() {
			clientIDs = append(clientIDs, rec.ClientID)
		}
	}
	identities, err := s.resolver.Identities(ctx, clientIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	lookups := engine.Lookups{
		Identities:   identities,
		ServiceTypes: serviceTypes(map[string]models.ProfessionalRecord{pro.ID: *pro}),
	}
	views := s.engine.NormalizeForProfessional(records, pro, lookups, now)
	upcoming, history := engine.SplitUpcomingHistory(views, now.Location())

	dash := &ProfessionalDashboard{
		Professional: *pro,
		Stats:        s.engine.ProfessionalStatistics(records, pro.HourlyPrice, reviews, now),
		Upcoming:     upcoming,
		History:      history,
		Availability: s.engine.BuildAvailability(records, now),
	}
	s.computed(models.RoleProfessional, professionalID, len(upcoming), len(history), started)
	return dash, nil
}

func (s *DashboardService) computed(role models.Role, subjectID string, upcoming, history int, started time.Time) {
	took := time.Since(started)
	metrics.ObserveDashboard(string(role), took)

	s.logger.Debug().
		Str("role", string(role)).
		Str("subject_id", subjectID).
		Int("upcoming", upcoming).
		Int("history", history).
		Dur("took", took).
		Msg("dashboard computed")

	publish(s.eventBus, s.logger, events.EventDashboardComputed, events.DashboardPayload{
		Role:       string(role),
		SubjectID:  subjectID,
		Upcoming:   upcoming,
		History:    history,
		DurationMs: took.Milliseconds(),
	})
}

// serviceTypes collects service names from the resolved professionals'
// offering lists.
func serviceTypes(professionals map[string]models.ProfessionalRecord) map[string]string {
	types := make(map[string]string)
	for _, p := range professionals {
		for _, svc := range p.Services {
			if svc.ID == "" || svc.Name == "" {
				continue
			}
			if _, ok := types[svc.ID]; !ok {
				types[svc.ID] = svc.Name
			}
		}
	}
	return types
}
