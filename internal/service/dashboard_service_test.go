package service

import (
	"context"
	"errors"
	"testing"

	"slotmarket/internal/config"
	"slotmarket/internal/domain"
	"slotmarket/internal/engine"
	"slotmarket/internal/events"
	"slotmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDashboardService(backend domain.Backend, bus *events.EventBus, opts ...engine.Option) *DashboardService {
	resolver := NewResolver(backend, config.LookupConfig{TimeoutMs: 200, MaxConcurrent: 4}, nil)
	return NewDashboardService(backend, resolver, engine.New(opts...), fixedClock{now: testNow}, bus, nil)
}

func TestDashboardClient(t *testing.T) {
	backend := new(mockBackend)
	backend.On("AppointmentsByClient", mock.Anything, "c1").Return([]models.AppointmentRecord{
		{ID: "a1", ProfessionalID: "p1", ClientID: "c1", Date: "2025-03-01", Time: "09:00"},
		{ID: "a2", ProfessionalID: "p1", ClientID: "c1", Date: "2025-03-12", Time: "10:00", ServiceTypeID: strPtr("svc-1")},
		{ID: "a3", ProfessionalID: "p2", ClientID: "c1", Date: "2025-03-11", Time: "10:00"},
	}, nil)
	backend.On("Professional", mock.Anything, "p1").Return(&models.ProfessionalRecord{
		ID: "p1", FirstName: "Ana", LastName: "Silva", City: "Lisbon", HourlyPrice: 40,
		Services: []models.ServiceOffering{{ID: "svc-1", Name: "Haircut"}},
	}, nil).Once()
	backend.On("Professional", mock.Anything, "p2").Return(nil, errors.New("timeout")).Once()

	bus := events.NewEventBus()
	var published []events.DashboardPayload
	bus.Subscribe(events.EventDashboardComputed, func(e *events.Event) error {
		var p events.DashboardPayload
		require.NoError(t, e.Decode(&p))
		published = append(published, p)
		return nil
	})

	dash, err := newDashboardService(backend, bus).Client(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, models.ClientStats{Upcoming: 2, Completed: 1}, dash.Stats)
	require.Len(t, dash.Upcoming, 2)
	assert.Equal(t, "a3", dash.Upcoming[0].ID)
	assert.Equal(t, models.PlaceholderProfessional, dash.Upcoming[0].CounterpartyName)
	assert.Equal(t, models.PlaceholderLocation, dash.Upcoming[0].CounterpartyLocation)
	assert.Equal(t, "a2", dash.Upcoming[1].ID)
	assert.Equal(t, "Ana Silva", dash.Upcoming[1].CounterpartyName)
	assert.Equal(t, "Haircut", dash.Upcoming[1].ServiceLabel)
	assert.Equal(t, 40.0, dash.Upcoming[1].CounterpartyPrice)

	require.Len(t, dash.History, 1)
	assert.Equal(t, models.StateCompleted, dash.History[0].State)

	require.Len(t, published, 1)
	assert.Equal(t, "client", published[0].Role)
	assert.Equal(t, 2, published[0].Upcoming)
	backend.AssertNumberOfCalls(t, "Professional", 2)
}

func TestDashboardClient_BackendFailure(t *testing.T) {
	backend := new(mockBackend)
	backend.On("AppointmentsByClient", mock.Anything, "c1").Return(nil, errors.New("502 bad gateway"))

	bus := events.NewEventBus()
	calls := 0
	bus.Subscribe(events.EventDashboardComputed, func(*events.Event) error {
		calls++
		return nil
	})

	_, err := newDashboardService(backend, bus).Client(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Zero(t, calls)
}

func TestDashboardClient_Cancelled(t *testing.T) {
	backend := new(mockBackend)
	ctx, cancel := context.WithCancel(context.Background())
	backend.On("AppointmentsByClient", mock.Anything, "c1").
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	_, err := newDashboardService(backend, nil).Client(ctx, "c1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestDashboardProfessional(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Professional", mock.Anything, "p1").Return(&models.ProfessionalRecord{
		ID: "p1", FirstName: "Ana", HourlyPrice: 30,
	}, nil)
	backend.On("AppointmentsByProfessional", mock.Anything, "p1").Return([]models.AppointmentRecord{
		{ID: "a1", ProfessionalID: "p1", ClientID: "c1", Date: "2025-03-01", Time: "09:00", RatingValue: "4"},
		{ID: "a2", ProfessionalID: "p1", ClientID: "c2", Date: "2025-03-10", Time: "08:00", RatingValue: "5"},
		{ID: "a3", ProfessionalID: "p1", ClientID: "c1", Date: "2025-03-12", Time: "09:00"},
		{ID: "a4", ProfessionalID: "p1", Date: "2025-03-11", Time: "10:00"},
		{ID: "a5", ProfessionalID: "p1", Date: "2025-03-11", Time: "09:00"},
		{ID: "a6", ProfessionalID: "p1", Date: "2025-03-01", Time: "09:00"},
	}, nil)
	backend.On("Identity", mock.Anything, "c1").Return(&models.IdentityRecord{ID: "c1", FirstName: "Rui", City: "Porto"}, nil).Once()
	backend.On("Identity", mock.Anything, "c2").Return(nil, domain.ErrNotFound).Once()

	dash, err := newDashboardService(backend, nil).Professional(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", dash.Professional.ID)
	assert.Equal(t, models.ProfessionalStats{
		TotalBookings:      3,
		MonthlyEarnings:    60,
		AverageRating:      4.5,
		TotalReviews:       2,
		PendingCount:       1,
		CompletedThisMonth: 2,
	}, dash.Stats)

	require.Len(t, dash.Availability, 1)
	assert.Equal(t, "2025-03-11", dash.Availability[0].Date)
	require.Len(t, dash.Availability[0].Slots, 2)
	assert.Equal(t, "09:00", dash.Availability[0].Slots[0].Time)

	require.Len(t, dash.History, 2)
	assert.Equal(t, "a2", dash.History[0].ID)
	assert.Equal(t, models.PlaceholderClient, dash.History[0].CounterpartyName)
	assert.Equal(t, "Rui", dash.History[1].CounterpartyName)

	// open past slot a6 is hidden
	require.Len(t, dash.Upcoming, 3)
	for _, v := range dash.Upcoming {
		assert.NotEqual(t, "a6", v.ID)
	}
	backend.AssertNotCalled(t, "ReviewsByProfessional", mock.Anything, mock.Anything)
}

func TestDashboardProfessional_RatingsFromReviews(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Professional", mock.Anything, "p1").Return(&models.ProfessionalRecord{ID: "p1"}, nil)
	backend.On("AppointmentsByProfessional", mock.Anything, "p1").Return([]models.AppointmentRecord{}, nil)
	backend.On("ReviewsByProfessional", mock.Anything, "p1").Return([]models.ReviewRecord{{Rating: 5}, {Rating: 3}}, nil)

	dash, err := newDashboardService(backend, nil, engine.WithRatingSource(engine.RatingSourceReviews)).
		Professional(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, 4.0, dash.Stats.AverageRating)
	assert.Equal(t, 2, dash.Stats.TotalReviews)
}

func TestDashboardProfessional_NotFound(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Professional", mock.Anything, "p9").Return(nil, domain.ErrNotFound)
	backend.On("AppointmentsByProfessional", mock.Anything, "p9").Return([]models.AppointmentRecord{}, nil).Maybe()

	_, err := newDashboardService(backend, nil).Professional(context.Background(), "p9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestServiceTypes(t *testing.T) {
	types := serviceTypes(map[string]models.ProfessionalRecord{
		"p1": {Services: []models.ServiceOffering{{ID: "s1", Name: "Cut"}, {ID: "s2"}}},
	})
	assert.Equal(t, map[string]string{"s1": "Cut"}, types)
}

func strPtr(s string) *string { return &s }
