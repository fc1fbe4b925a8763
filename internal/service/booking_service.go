package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slotmarket/internal/domain"
	"slotmarket/internal/engine"
	"slotmarket/internal/events"
	"slotmarket/internal/models"

	"github.com/rs/zerolog"
)

var ErrInvalidClaim = errors.New("appointment and client are required")

type BookingService struct {
	backend  domain.Backend
	engine   *engine.Engine
	clock    domain.Clock
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(
	backend domain.Backend,
	eng *engine.Engine,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		backend:  backend,
		engine:   eng,
		clock:    clock,
		eventBus: eventBus,
		logger:   nopLogger(logger),
	}
}

// Availability lists a professional's bookable slots grouped by date.
func (s *BookingService) Availability(ctx context.Context, professionalID string) ([]models.DaySlots, error) {
	records, err := s.backend.AppointmentsByProfessional(ctx, professionalID)
	if err != nil {
		return nil, backendError(ctx, "appointments_by_professional", err)
	}
	return s.engine.BuildAvailability(records, s.clock.Now()), nil
}

// Claim attaches clientID to an open slot. Arbitration between concurrent
// claimers is left to the backend's conditional update.
func (s *BookingService) Claim(ctx context.Context, appointmentID, clientID string) error {
	appointmentID = strings.TrimSpace(appointmentID)
	clientID = strings.TrimSpace(clientID)
	if appointmentID == "" || clientID == "" {
		return ErrInvalidClaim
	}

	if err := s.backend.ClaimSlot(ctx, appointmentID, clientID); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			s.logger.Info().
				Str("appointment_id", appointmentID).
				Str("client_id", clientID).
				Msg("slot already claimed")
			return fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrSlotTaken)
		}
		return backendError(ctx, "claim_slot", err)
	}

	s.logger.Info().
		Str("appointment_id", appointmentID).
		Str("client_id", clientID).
		Msg("slot claimed")
	publish(s.eventBus, s.logger, events.EventSlotClaimed, events.SlotClaimedPayload{
		AppointmentID: appointmentID,
		ClientID:      clientID,
		ClaimedAt:     s.clock.Now(),
	})
	return nil
}
