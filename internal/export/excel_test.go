package export

import (
	"testing"
	"time"

	"slotmarket/internal/models"
	"slotmarket/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestExportClientDashboard(t *testing.T) {
	dir := t.TempDir()
	dash := &service.ClientDashboard{
		ClientID: "c1",
		Stats:    models.ClientStats{Upcoming: 1, Completed: 1},
		Upcoming: []models.BookingView{
			{ID: "a2", Date: "2025-03-12", Time: "10:00", CounterpartyName: "Ana Silva", State: models.StateConfirmed},
		},
		History: []models.BookingView{
			{ID: "a1", Date: "2025-03-01", Time: "09:00", CounterpartyName: "Professional", State: models.StateCompleted},
		},
	}

	path, err := NewExporter(dir, nil).ClientDashboard(dash, exportNow)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Upcoming", "History"}, f.GetSheetList())

	value, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "c1", value)

	rows, err := f.GetRows("Upcoming")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "a2", rows[1][0])
	assert.Equal(t, "confirmed", rows[1][7])
}

func TestExportProfessionalDashboard(t *testing.T) {
	dir := t.TempDir()
	dash := &service.ProfessionalDashboard{
		Professional: models.ProfessionalRecord{ID: "p1", FirstName: "Ana"},
		Stats:        models.ProfessionalStats{TotalBookings: 3, MonthlyEarnings: 60},
		Availability: []models.DaySlots{
			{Date: "2025-03-11", Slots: []models.SlotView{{AppointmentID: "a4", Time: "09:00"}, {AppointmentID: "a5", Time: "10:00"}}},
		},
	}

	path, err := NewExporter(dir, nil).ProfessionalDashboard(dash, exportNow)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Availability")

	rows, err := f.GetRows("Availability")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2025-03-11", "10:00", "a5"}, rows[2])

	earnings, err := f.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "60", earnings)
}
