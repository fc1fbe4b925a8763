package domain

import (
	"context"
	"errors"
	"time"

	"slotmarket/internal/models"
)

var (
	// ErrNotFound is returned by a Backend when the requested record does not exist.
	ErrNotFound        = errors.New("record not found")
	// ErrSlotTaken is returned by ClaimSlot when the slot already has a client.
	ErrSlotTaken       = errors.New("slot already claimed")
	// ErrDuplicateReview is returned by CreateReview when the pair already has a review.
	ErrDuplicateReview = errors.New("review already exists")
	// ErrReviewIDTaken is returned by CreateReview when the review id is already in use.
	ErrReviewIDTaken   = errors.New("review id already in use")
)

// Backend is the marketplace data source. Reads feed the engine; the two
// mutations are delegated unchanged.
type Backend interface {
	AppointmentsByProfessional(ctx context.Context, professionalID string) ([]models.AppointmentRecord, error)
	AppointmentsByClient(ctx context.Context, clientID string) ([]models.AppointmentRecord, error)
	Professional(ctx context.Context, id string) (*models.ProfessionalRecord, error)
	ProfessionalByUser(ctx context.Context, userID string) (*models.ProfessionalRecord, error)
	Identity(ctx context.Context, id string) (*models.IdentityRecord, error)
	ReviewsByProfessional(ctx context.Context, professionalID string) ([]models.ReviewRecord, error)
	CreateReview(ctx context.Context, review *models.ReviewRecord) error
	// ClaimSlot attaches clientID to an open appointment. It must succeed for
	// at most one caller per appointment.
	ClaimSlot(ctx context.Context, appointmentID, clientID string) error
}

// Cache stores serialized lookup results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type Clock interface {
	Now() time.Time
}
