package service

import (
	"context"
	"errors"
	"strings"

	"slotmarket/internal/domain"
	"slotmarket/internal/engine"
	"slotmarket/internal/events"
	"slotmarket/internal/metrics"
	"slotmarket/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ReviewService struct {
	backend  domain.Backend
	engine   *engine.Engine
	clock    domain.Clock
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReviewService(
	backend domain.Backend,
	eng *engine.Engine,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		backend:  backend,
		engine:   eng,
		clock:    clock,
		eventBus: eventBus,
		logger:   nopLogger(logger),
	}
}

// Eligibility decides whether viewer may review professionalID. Non-client
// viewers are rejected without touching the backend.
func (s *ReviewService) Eligibility(ctx context.Context, viewer models.Viewer, professionalID string) (models.EligibilityDecision, error) {
	if viewer.Role != models.RoleClient || strings.TrimSpace(viewer.UserID) == "" {
		metrics.IncEligibility(string(models.NotAClient))
		return models.NotAClient, nil
	}

	var (
		appointments []models.AppointmentRecord
		reviews      []models.ReviewRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appointments, err = s.backend.AppointmentsByClient(gctx, viewer.UserID)
		if err != nil {
			return backendError(ctx, "appointments_by_client", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = s.backend.ReviewsByProfessional(gctx, professionalID)
		if err != nil {
			return backendError(ctx, "reviews_by_professional", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	index := engine.NewReviewIndex(reviews)
	decision := s.engine.EvaluateEligibility(viewer, professionalID, appointments, index, s.clock.Now())
	metrics.IncEligibility(string(decision))

	s.logger.Debug().
		Str("client_id", viewer.UserID).
		Str("professional_id", professionalID).
		Int("appointments", len(appointments)).
		Int("reviewed_pairs", index.Len()).
		Str("decision", string(decision)).
		Msg("eligibility evaluated")
	return decision, nil
}

// Submit re-checks eligibility and stores the review. Rejections come back
// as *engine.EligibilityError; malformed drafts as engine validation errors.
func (s *ReviewService) Submit(ctx context.Context, viewer models.Viewer, draft models.ReviewDraft) (*models.ReviewRecord, error) {
	draft.ClientID = viewer.UserID
	draft.ProfessionalID = strings.TrimSpace(draft.ProfessionalID)

	decision, err := s.Eligibility(ctx, viewer, draft.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if decision != models.Eligible {
		s.rejected(draft, decision)
		return nil, &engine.EligibilityError{Decision: decision}
	}

	if strings.TrimSpace(draft.ID) == "" {
		draft.ID = uuid.NewString()
	}
	review, err := engine.PrepareReview(draft, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.backend.CreateReview(ctx, &review); err != nil {
		if errors.Is(err, domain.ErrDuplicateReview) {
			s.rejected(draft, models.AlreadyReviewed)
			return nil, &engine.EligibilityError{Decision: models.AlreadyReviewed}
		}
		if errors.Is(err, domain.ErrReviewIDTaken) {
			return nil, err
		}
		return nil, backendError(ctx, "create_review", err)
	}

	s.logger.Info().
		Str("review_id", review.ID).
		Str("professional_id", review.ProfessionalID).
		Str("client_id", review.ClientID).
		Int("rating", review.Rating).
		Msg("review submitted")
	publish(s.eventBus, s.logger, events.EventReviewSubmitted, events.ReviewPayload{
		ReviewID:       review.ID,
		ProfessionalID: review.ProfessionalID,
		ClientID:       review.ClientID,
		Rating:         review.Rating,
		Decision:       string(models.Eligible),
	})
	return &review, nil
}

func (s *ReviewService) rejected(draft models.ReviewDraft, decision models.EligibilityDecision) {
	s.logger.Info().
		Str("professional_id", draft.ProfessionalID).
		Str("client_id", draft.ClientID).
		Str("decision", string(decision)).
		Msg("review rejected")
	publish(s.eventBus, s.logger, events.EventReviewRejected, events.ReviewPayload{
		ProfessionalID: draft.ProfessionalID,
		ClientID:       draft.ClientID,
		Decision:       string(decision),
	})
}
