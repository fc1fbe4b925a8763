package engine

import (
	"time"

	"slotmarket/internal/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func appt(id, clientID, date, clock string) models.AppointmentRecord {
	return models.AppointmentRecord{
		ID:             id,
		ProfessionalID: "P",
		ClientID:       clientID,
		Date:           date,
		Time:           clock,
	}
}

func withProfessional(rec models.AppointmentRecord, professionalID string) models.AppointmentRecord {
	rec.ProfessionalID = professionalID
	return rec
}

func strPtr(s string) *string { return &s }
