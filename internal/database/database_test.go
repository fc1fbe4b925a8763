package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestAppointmentsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAppointment(ctx, &models.AppointmentRecord{
		ID: "a2", ProfessionalID: "p1", ClientID: "c1", Date: "2025-03-12", Time: "10:00",
		RatingValue: "4", ServiceTypeID: strPtr("svc-1"),
	}))
	require.NoError(t, db.CreateAppointment(ctx, &models.AppointmentRecord{
		ID: "a1", ProfessionalID: "p1", Date: "2025-03-11", Time: "09:00",
	}))
	require.NoError(t, db.CreateAppointment(ctx, &models.AppointmentRecord{
		ID: "a3", ProfessionalID: "p2", ClientID: "c1", Date: "2025-03-13", Time: "09:00",
	}))

	byPro, err := db.AppointmentsByProfessional(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, byPro, 2)
	assert.Equal(t, "a1", byPro[0].ID)
	assert.Nil(t, byPro[0].ServiceTypeID)
	assert.False(t, byPro[0].IsClaimed())
	require.NotNil(t, byPro[1].ServiceTypeID)
	assert.Equal(t, "svc-1", *byPro[1].ServiceTypeID)
	assert.Equal(t, "4", byPro[1].RatingValue)

	byClient, err := db.AppointmentsByClient(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	none, err := db.AppointmentsByClient(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClaimSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAppointment(ctx, &models.AppointmentRecord{
		ID: "a1", ProfessionalID: "p1", Date: "2025-03-11", Time: "09:00",
	}))

	require.NoError(t, db.ClaimSlot(ctx, "a1", "c1"))

	err := db.ClaimSlot(ctx, "a1", "c2")
	assert.ErrorIs(t, err, domain.ErrSlotTaken)

	err = db.ClaimSlot(ctx, "missing", "c2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	recs, err := db.AppointmentsByClient(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a1", recs[0].ID)
}

func TestProfessionalLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateProfessional(ctx, &models.ProfessionalRecord{
		ID: "p1", UserID: "u1", FirstName: "Ana", LastName: "Silva",
		City: "Lisbon", Country: "PT", HourlyPrice: 40,
		Services: []models.ServiceOffering{{ID: "svc-1", Name: "Haircut", Price: 25}},
	}))

	p, err := db.Professional(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", p.FullName())
	assert.Equal(t, 40.0, p.HourlyPrice)
	name, ok := p.ServiceName("svc-1")
	assert.True(t, ok)
	assert.Equal(t, "Haircut", name)

	byUser, err := db.ProfessionalByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p1", byUser.ID)

	_, err = db.Professional(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = db.ProfessionalByUser(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIdentityLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateIdentity(ctx, &models.IdentityRecord{
		ID: "c1", FirstName: "Rui", LastName: "Costa", City: "Porto",
	}))

	i, err := db.Identity(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Rui Costa", i.FullName())
	assert.Equal(t, "Porto", i.Location())

	_, err = db.Identity(ctx, "c2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateReviewRejectsDuplicatePair(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateReview(ctx, &models.ReviewRecord{
		ID: "r1", ProfessionalID: "p1", ClientID: "c1", Rating: 5, Comment: "great", CreatedAt: created,
	}))

	err := db.CreateReview(ctx, &models.ReviewRecord{
		ID: "r2", ProfessionalID: "p1", ClientID: "c1", Rating: 3, Comment: "again",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)

	require.NoError(t, db.CreateReview(ctx, &models.ReviewRecord{
		ID: "r3", ProfessionalID: "p1", ClientID: "c2", Rating: 4, Comment: "fine",
	}))

	reviews, err := db.ReviewsByProfessional(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	ids := []string{reviews[0].ID, reviews[1].ID}
	assert.ElementsMatch(t, []string{"r1", "r3"}, ids)
}

func TestCreateReviewReusedIDIsNotDuplicatePair(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateReview(ctx, &models.ReviewRecord{
		ID: "R1", ProfessionalID: "P", ClientID: "C2", Rating: 4, Comment: "fine",
	}))

	err := db.CreateReview(ctx, &models.ReviewRecord{
		ID: "R1", ProfessionalID: "P", ClientID: "C1", Rating: 5, Comment: "first review",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReviewIDTaken)
	assert.NotErrorIs(t, err, domain.ErrDuplicateReview)

	require.NoError(t, db.CreateReview(ctx, &models.ReviewRecord{
		ID: "R2", ProfessionalID: "P", ClientID: "C1", Rating: 5, Comment: "first review",
	}))
}

func TestStatementBuilderPlaceholders(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: "sqlite3", want: "SELECT id FROM reviews WHERE client_id = ?"},
		{driver: "postgres", want: "SELECT id FROM reviews WHERE client_id = $1"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			query, args, err := statementBuilder(tt.driver).
				Select("id").From("reviews").Where(squirrel.Eq{"client_id": "C1"}).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []interface{}{"C1"}, args)
		})
	}
}

func TestSeedFromFixture(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"professionals": [{"_id": "p1", "userId": "u1", "firstName": "Ana", "hourlyPrice": "35"}],
		"identities": [{"id": "c1", "firstName": "Rui"}],
		"appointments": [
			{"id": "a1", "professionalId": "p1", "clientId": "c1", "date": "2025-03-01", "time": "10:00", "ratingValue": 5},
			{"id": "a2", "professionalId": "p1", "clientId": null, "date": "2025-03-20", "time": "10:00", "serviceTypeId": null}
		],
		"reviews": [{"id": "r1", "professionalId": "p1", "clientId": "c1", "rating": 4.6, "comment": "ok"}]
	}`), 0o600))

	fixture, err := LoadFixture(path)
	require.NoError(t, err)
	require.NoError(t, db.Seed(ctx, fixture))

	p, err := db.Professional(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 35.0, p.HourlyPrice)

	recs, err := db.AppointmentsByProfessional(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "5", recs[0].RatingValue)
	assert.False(t, recs[1].IsClaimed())

	reviews, err := db.ReviewsByProfessional(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestLoadFixtureMissingFile(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSeedShippedFixture(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	fixture, err := LoadFixture(filepath.Join("..", "..", "configs", "fixture.json"))
	require.NoError(t, err)
	require.NoError(t, db.Seed(ctx, fixture))

	p, err := db.ProfessionalByUser(ctx, "u-p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Len(t, p.Services, 2)

	recs, err := db.AppointmentsByProfessional(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, recs, len(fixture.Appointments))

	_, err = db.Identity(ctx, "c2")
	assert.NoError(t, err)
}
