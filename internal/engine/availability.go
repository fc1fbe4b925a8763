package engine

import (
	"sort"
	"strings"
	"time"

	"slotmarket/internal/models"
)

// BuildAvailability groups a professional's open future slots by date.
// Parseable times are normalized to HH:MM and deduplicated per date keeping
// the first occurrence, then sorted; dates are sorted ascending with
// unparseable dates last.
func (e *Engine) BuildAvailability(records []models.AppointmentRecord, now time.Time) []models.DaySlots {
	days := make(map[string]*models.DaySlots)
	seen := make(map[string]map[string]struct{})
	order := make([]string, 0)

	for _, rec := range records {
		if rec.IsClaimed() {
			continue
		}
		if e.expired(componentAvailability, rec, now) {
			continue
		}

		date := strings.TrimSpace(rec.Date)
		clock := strings.TrimSpace(rec.Time)
		if m := e.moment(rec, now); m.Valid {
			clock = m.At.Format(models.TimeFormat)
		}

		day, ok := days[date]
		if !ok {
			day = &models.DaySlots{Date: date}
			days[date] = day
			seen[date] = make(map[string]struct{})
			order = append(order, date)
		}
		if _, dup := seen[date][clock]; dup {
			continue
		}
		seen[date][clock] = struct{}{}
		day.Slots = append(day.Slots, models.SlotView{AppointmentID: rec.ID, Time: clock})
	}

	result := make([]models.DaySlots, 0, len(order))
	for _, date := range order {
		day := days[date]
		sort.SliceStable(day.Slots, func(i, j int) bool {
			return day.Slots[i].Time < day.Slots[j].Time
		})
		result = append(result, *day)
	}

	loc := now.Location()
	sort.SliceStable(result, func(i, j int) bool {
		di := ParseMoment(result[i].Date, "", loc)
		dj := ParseMoment(result[j].Date, "", loc)
		if di.DayKnown != dj.DayKnown {
			return di.DayKnown
		}
		if di.DayKnown && !di.Day.Equal(dj.Day) {
			return di.Day.Before(dj.Day)
		}
		return result[i].Date < result[j].Date
	})

	return result
}
