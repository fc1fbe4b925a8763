package service

import (
	"context"
	"time"

	"slotmarket/internal/models"

	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) AppointmentsByProfessional(ctx context.Context, id string) ([]models.AppointmentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AppointmentRecord), args.Error(1)
}

func (m *mockBackend) AppointmentsByClient(ctx context.Context, id string) ([]models.AppointmentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AppointmentRecord), args.Error(1)
}

func (m *mockBackend) Professional(ctx context.Context, id string) (*models.ProfessionalRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfessionalRecord), args.Error(1)
}

func (m *mockBackend) ProfessionalByUser(ctx context.Context, userID string) (*models.ProfessionalRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfessionalRecord), args.Error(1)
}

func (m *mockBackend) Identity(ctx context.Context, id string) (*models.IdentityRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IdentityRecord), args.Error(1)
}

func (m *mockBackend) ReviewsByProfessional(ctx context.Context, id string) ([]models.ReviewRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewRecord), args.Error(1)
}

func (m *mockBackend) CreateReview(ctx context.Context, review *models.ReviewRecord) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockBackend) ClaimSlot(ctx context.Context, appointmentID, clientID string) error {
	return m.Called(ctx, appointmentID, clientID).Error(0)
}
