package engine

import (
	"testing"
	"time"

	"slotmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAvailability_DuplicateTimeCollapses(t *testing.T) {
	now := time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC)
	records := []models.AppointmentRecord{
		appt("a1", "", "2025-03-01", "09:00"),
		appt("a2", "", "2025-03-01", "09:00"),
	}

	days := New().BuildAvailability(records, now)

	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-01", days[0].Date)
	assert.Equal(t, []models.SlotView{{AppointmentID: "a1", Time: "09:00"}}, days[0].Slots)
}

func TestBuildAvailability_EquivalentClockFormatsCollapse(t *testing.T) {
	now := time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC)
	records := []models.AppointmentRecord{
		appt("a1", "", "2025-03-01", "9:00"),
		appt("a2", "", "2025-03-01", "09:00:00"),
		appt("a3", "", "2025-03-01", "09:00"),
		appt("a4", "", "2025-03-01", "10:30"),
	}

	days := New().BuildAvailability(records, now)

	require.Len(t, days, 1)
	assert.Equal(t, []models.SlotView{
		{AppointmentID: "a1", Time: "09:00"},
		{AppointmentID: "a4", Time: "10:30"},
	}, days[0].Slots)
}

func TestBuildAvailability_FiltersAndSorts(t *testing.T) {
	records := []models.AppointmentRecord{
		appt("a1", "", "2025-03-12", "14:00"),
		appt("a2", "", "2025-03-11", "10:00"),
		appt("a3", "C1", "2025-03-11", "11:00"),
		appt("a4", "", "2025-03-12", "09:30"),
		appt("a5", "", "2025-03-10", "08:00"),
		appt("a6", "", "2025-03-10", "12:00"),
		appt("a7", "", "2025-03-10", "18:00"),
		appt("a8", "", "2025-03-01", "09:00"),
	}

	days := New().BuildAvailability(records, testNow)

	require.Len(t, days, 3)
	assert.Equal(t, "2025-03-10", days[0].Date)
	assert.Equal(t, []models.SlotView{{AppointmentID: "a6", Time: "12:00"}, {AppointmentID: "a7", Time: "18:00"}}, days[0].Slots)
	assert.Equal(t, "2025-03-11", days[1].Date)
	assert.Equal(t, []models.SlotView{{AppointmentID: "a2", Time: "10:00"}}, days[1].Slots)
	assert.Equal(t, "2025-03-12", days[2].Date)
	assert.Equal(t, []models.SlotView{{AppointmentID: "a4", Time: "09:30"}, {AppointmentID: "a1", Time: "14:00"}}, days[2].Slots)
}

func TestBuildAvailability_UnparseableFailsOpen(t *testing.T) {
	records := []models.AppointmentRecord{
		appt("a1", "", "not-a-date", "09:00"),
		appt("a2", "", "2025-03-11", "10:00"),
	}

	days := New().BuildAvailability(records, testNow)

	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-11", days[0].Date)
	assert.Equal(t, "not-a-date", days[1].Date)
}

func TestBuildAvailability_UnparseableFailsClosed(t *testing.T) {
	records := []models.AppointmentRecord{appt("a1", "", "not-a-date", "09:00")}

	days := New(WithTemporalFallback(FallbackPast)).BuildAvailability(records, testNow)

	assert.Empty(t, days)
}

func TestBuildAvailability_Empty(t *testing.T) {
	days := New().BuildAvailability(nil, testNow)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestBuildAvailability_NoClaimedOrPastSlots(t *testing.T) {
	var records []models.AppointmentRecord
	for d := 5; d <= 15; d++ {
		date := time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC).Format(models.DateFormat)
		records = append(records,
			appt(date+"-open", "", date, "11:00"),
			appt(date+"-taken", "C9", date, "13:00"),
		)
	}

	for _, day := range New().BuildAvailability(records, testNow) {
		for _, slot := range day.Slots {
			m := ParseMoment(day.Date, slot.Time, time.UTC)
			assert.False(t, m.At.Before(testNow), "past slot %s %s", day.Date, slot.Time)
			assert.NotEqual(t, "13:00", slot.Time)
		}
	}
}
