// Package export writes computed dashboards to Excel workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slotmarket/internal/models"
	"slotmarket/internal/service"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary      = "Summary"
	sheetUpcoming     = "Upcoming"
	sheetHistory      = "History"
	sheetAvailability = "Availability"
)

var bookingHeaders = []string{"ID", "Date", "Time", "Counterparty", "Location", "Price", "Service", "State"}

// stateFill is the row fill per lifecycle state.
var stateFill = map[models.LifecycleState]string{
	models.StateOpen:      "#DDEBF7",
	models.StateConfirmed: "#C6EFCE",
	models.StatePending:   "#FFEB9C",
	models.StateCompleted: "#FFFFFF",
}

type Exporter struct {
	dir    string
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Exporter{dir: dir, logger: logger}
}

// ClientDashboard writes a client dashboard and returns the file path.
func (e *Exporter) ClientDashboard(dash *service.ClientDashboard, now time.Time) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := [][2]interface{}{
		{"Client", dash.ClientID},
		{"Generated", now.Format("2006-01-02 15:04")},
		{"Upcoming", dash.Stats.Upcoming},
		{"Completed", dash.Stats.Completed},
		{"Cancelled", dash.Stats.Cancelled},
	}
	if err := e.writeSummary(f, summary); err != nil {
		return "", err
	}
	if err := e.writeBookings(f, sheetUpcoming, dash.Upcoming); err != nil {
		return "", err
	}
	if err := e.writeBookings(f, sheetHistory, dash.History); err != nil {
		return "", err
	}

	name := fmt.Sprintf("client_%s_%s.xlsx", dash.ClientID, now.Format("2006-01-02_15-04-05"))
	return e.save(f, name)
}

// ProfessionalDashboard writes a professional dashboard and returns the file path.
func (e *Exporter) ProfessionalDashboard(dash *service.ProfessionalDashboard, now time.Time) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	stats := dash.Stats
	summary := [][2]interface{}{
		{"Professional", dash.Professional.FullName()},
		{"Generated", now.Format("2006-01-02 15:04")},
		{"Total bookings", stats.TotalBookings},
		{"Pending", stats.PendingCount},
		{"Completed this month", stats.CompletedThisMonth},
		{"Monthly earnings", stats.MonthlyEarnings},
		{"Average rating", stats.AverageRating},
		{"Reviews", stats.TotalReviews},
	}
	if err := e.writeSummary(f, summary); err != nil {
		return "", err
	}
	if err := e.writeBookings(f, sheetUpcoming, dash.Upcoming); err != nil {
		return "", err
	}
	if err := e.writeBookings(f, sheetHistory, dash.History); err != nil {
		return "", err
	}
	if err := e.writeAvailability(f, dash.Availability); err != nil {
		return "", err
	}

	name := fmt.Sprintf("professional_%s_%s.xlsx", dash.Professional.ID, now.Format("2006-01-02_15-04-05"))
	return e.save(f, name)
}

func (e *Exporter) writeSummary(f *excelize.File, rows [][2]interface{}) error {
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	for i, row := range rows {
		label, _ := excelize.CoordinatesToCellName(1, i+1)
		value, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheetSummary, label, row[0])
		_ = f.SetCellValue(sheetSummary, value, row[1])
		_ = f.SetCellStyle(sheetSummary, label, label, bold)
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 24)
	_ = f.SetColWidth(sheetSummary, "B", "B", 30)
	return nil
}

func (e *Exporter) writeBookings(f *excelize.File, sheet string, views []models.BookingView) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeHeader(f, sheet, bookingHeaders); err != nil {
		return err
	}

	styles := make(map[models.LifecycleState]int, len(stateFill))
	for state, color := range stateFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[state] = style
	}

	for i, v := range views {
		row := i + 2
		values := []interface{}{
			v.ID, v.Date, v.Time, v.CounterpartyName, v.CounterpartyLocation,
			v.CounterpartyPrice, v.ServiceLabel, string(v.State),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
		if style, ok := styles[v.State]; ok {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			_ = f.SetCellStyle(sheet, first, last, style)
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 14)
	_ = f.SetColWidth(sheet, "D", "G", 24)
	_ = f.SetColWidth(sheet, "H", "H", 12)
	return nil
}

func (e *Exporter) writeAvailability(f *excelize.File, days []models.DaySlots) error {
	if _, err := f.NewSheet(sheetAvailability); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeHeader(f, sheetAvailability, []string{"Date", "Time", "Appointment"}); err != nil {
		return err
	}

	row := 2
	for _, day := range days {
		for _, slot := range day.Slots {
			_ = f.SetCellValue(sheetAvailability, fmt.Sprintf("A%d", row), day.Date)
			_ = f.SetCellValue(sheetAvailability, fmt.Sprintf("B%d", row), slot.Time)
			_ = f.SetCellValue(sheetAvailability, fmt.Sprintf("C%d", row), slot.AppointmentID)
			row++
		}
	}
	_ = f.SetColWidth(sheetAvailability, "A", "C", 16)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}

func (e *Exporter) save(f *excelize.File, name string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", path).Msg("dashboard exported")
	return path, nil
}
