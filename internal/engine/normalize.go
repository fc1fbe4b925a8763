package engine

import (
	"strings"
	"time"

	"slotmarket/internal/models"
)

// Lookups holds the related records resolved for a batch of appointments.
// A key absent from a map means the lookup failed or was never made.
type Lookups struct {
	Professionals map[string]models.ProfessionalRecord
	Identities    map[string]models.IdentityRecord
	ServiceTypes  map[string]string
}

// NormalizeForClient builds client-facing views; the counterparty is the
// professional of each appointment.
func (e *Engine) NormalizeForClient(records []models.AppointmentRecord, lookups Lookups, now time.Time) []models.BookingView {
	views := make([]models.BookingView, 0, len(records))
	for _, rec := range records {
		if !e.Visible(rec, now) {
			continue
		}

		view := baseView(rec)
		view.State = e.ClassifyForClient(rec, now)
		view.CounterpartyName = models.PlaceholderProfessional
		view.CounterpartyLocation = models.PlaceholderLocation

		var pro *models.ProfessionalRecord
		if found, ok := lookups.Professionals[rec.ProfessionalID]; ok {
			pro = &found
			if name := found.FullName(); name != "" {
				view.CounterpartyName = name
			}
			if loc := found.Location(); loc != "" {
				view.CounterpartyLocation = loc
			}
			view.CounterpartyPrice = found.HourlyPrice
		}
		view.ServiceLabel = serviceLabel(rec, pro, lookups.ServiceTypes)
		views = append(views, view)
	}
	return views
}

// NormalizeForProfessional builds views of a professional's own schedule;
// the counterparty is the client attached to each appointment. Open slots
// carry no counterparty.
func (e *Engine) NormalizeForProfessional(
	records []models.AppointmentRecord,
	professional *models.ProfessionalRecord,
	lookups Lookups,
	now time.Time,
) []models.BookingView {
	views := make([]models.BookingView, 0, len(records))
	for _, rec := range records {
		if !e.Visible(rec, now) {
			continue
		}

		view := baseView(rec)
		view.State = e.Classify(rec, now)
		if professional != nil {
			view.CounterpartyPrice = professional.HourlyPrice
		}

		if rec.IsClaimed() {
			view.CounterpartyName = models.PlaceholderClient
			view.CounterpartyLocation = models.PlaceholderLocation
			if client, ok := lookups.Identities[strings.TrimSpace(rec.ClientID)]; ok {
				if name := client.FullName(); name != "" {
					view.CounterpartyName = name
				}
				if loc := client.Location(); loc != "" {
					view.CounterpartyLocation = loc
				}
			}
		}

		view.ServiceLabel = serviceLabel(rec, professional, lookups.ServiceTypes)
		views = append(views, view)
	}
	return views
}

func baseView(rec models.AppointmentRecord) models.BookingView {
	return models.BookingView{
		ID:   rec.ID,
		Date: strings.TrimSpace(rec.Date),
		Time: strings.TrimSpace(rec.Time),
	}
}

func serviceLabel(rec models.AppointmentRecord, pro *models.ProfessionalRecord, types map[string]string) string {
	if rec.ServiceTypeID == nil {
		return models.GenericServiceLabel
	}
	id := strings.TrimSpace(*rec.ServiceTypeID)
	if id == "" {
		return models.GenericServiceLabel
	}
	if name := strings.TrimSpace(types[id]); name != "" {
		return name
	}
	if pro != nil {
		if name, ok := pro.ServiceName(id); ok {
			return name
		}
		if p := strings.TrimSpace(pro.Profession); p != "" {
			return p
		}
	}
	return models.GenericServiceLabel
}
