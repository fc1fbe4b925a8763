package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"slotmarket/internal/models"
)

// Fixture is a snapshot of marketplace data, in the same loose JSON shape
// the backend serves.
type Fixture struct {
	Professionals []models.ProfessionalRecord `json:"professionals"`
	Identities    []models.IdentityRecord     `json:"identities"`
	Appointments  []models.AppointmentRecord  `json:"appointments"`
	Reviews       []models.ReviewRecord       `json:"reviews"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Seed inserts every record of the fixture. It stops at the first failure.
func (db *DB) Seed(ctx context.Context, f *Fixture) error {
	for i := range f.Identities {
		if err := db.CreateIdentity(ctx, &f.Identities[i]); err != nil {
			return err
		}
	}
	for i := range f.Professionals {
		if err := db.CreateProfessional(ctx, &f.Professionals[i]); err != nil {
			return err
		}
	}
	for i := range f.Appointments {
		if err := db.CreateAppointment(ctx, &f.Appointments[i]); err != nil {
			return err
		}
	}
	for i := range f.Reviews {
		if err := db.CreateReview(ctx, &f.Reviews[i]); err != nil {
			return err
		}
	}

	db.logger.Info().
		Int("professionals", len(f.Professionals)).
		Int("identities", len(f.Identities)).
		Int("appointments", len(f.Appointments)).
		Int("reviews", len(f.Reviews)).
		Msg("fixture loaded")
	return nil
}
