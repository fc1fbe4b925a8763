package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"slotmarket/internal/models"
)

// RatingSource selects which records professional ratings are averaged from.
type RatingSource int

const (
	// RatingSourceAppointments averages the ratingValue stored on appointments.
	RatingSourceAppointments RatingSource = iota
	// RatingSourceReviews averages the review table.
	RatingSourceReviews
)

func (r RatingSource) String() string {
	switch r {
	case RatingSourceAppointments:
		return "appointments"
	case RatingSourceReviews:
		return "reviews"
	default:
		return fmt.Sprintf("RatingSource(%d)", int(r))
	}
}

func ParseRatingSource(value string) (RatingSource, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "appointments":
		return RatingSourceAppointments, nil
	case "reviews":
		return RatingSourceReviews, nil
	default:
		return RatingSourceAppointments, fmt.Errorf("unknown rating source %q", value)
	}
}

// ClientStatistics summarizes a client's own appointments.
func (e *Engine) ClientStatistics(records []models.AppointmentRecord, now time.Time) models.ClientStats {
	var stats models.ClientStats
	for _, rec := range records {
		switch e.ClassifyForClient(rec, now) {
		case models.StateCompleted:
			stats.Completed++
		default:
			stats.Upcoming++
		}
	}
	return stats
}

// ProfessionalStatistics summarizes a professional's appointment set.
// reviews is only read when the rating source is RatingSourceReviews.
func (e *Engine) ProfessionalStatistics(
	records []models.AppointmentRecord,
	hourlyPrice float64,
	reviews []models.ReviewRecord,
	now time.Time,
) models.ProfessionalStats {
	var stats models.ProfessionalStats
	for _, rec := range records {
		if !rec.IsClaimed() {
			continue
		}
		stats.TotalBookings++

		switch e.Classify(rec, now) {
		case models.StateCompleted:
			if sameMonth(e.moment(rec, now), now) {
				stats.CompletedThisMonth++
			}
		case models.StateConfirmed, models.StatePending:
			stats.PendingCount++
		}
	}

	stats.MonthlyEarnings = float64(stats.CompletedThisMonth) * hourlyPrice
	stats.AverageRating, stats.TotalReviews = e.averageRating(records, reviews)
	return stats
}

func (e *Engine) averageRating(records []models.AppointmentRecord, reviews []models.ReviewRecord) (float64, int) {
	var sum float64
	var count int

	switch e.ratings {
	case RatingSourceReviews:
		for _, r := range reviews {
			sum += float64(ClampRating(r.Rating))
			count++
		}
	default:
		for _, rec := range records {
			if v, ok := models.ParseFinite(rec.RatingValue); ok {
				sum += v
				count++
			}
		}
	}

	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// SplitUpcomingHistory partitions views into not-yet-completed and completed,
// sorted ascending and descending respectively.
func SplitUpcomingHistory(views []models.BookingView, loc *time.Location) (upcoming, history []models.BookingView) {
	upcoming = make([]models.BookingView, 0, len(views))
	history = make([]models.BookingView, 0, len(views))
	for _, v := range views {
		if v.State == models.StateCompleted {
			history = append(history, v)
		} else {
			upcoming = append(upcoming, v)
		}
	}
	SortUpcoming(upcoming, loc)
	SortHistory(history, loc)
	return upcoming, history
}

// SortUpcoming orders views by date and time ascending. Views with an
// unparseable moment go last.
func SortUpcoming(views []models.BookingView, loc *time.Location) {
	sortViews(views, loc, false)
}

// SortHistory orders views by date and time descending. Views with an
// unparseable moment go last.
func SortHistory(views []models.BookingView, loc *time.Location) {
	sortViews(views, loc, true)
}

func sortViews(views []models.BookingView, loc *time.Location, desc bool) {
	moments := make(map[string]Moment, len(views))
	key := func(v models.BookingView) string { return v.Date + "\x00" + v.Time }
	for _, v := range views {
		moments[key(v)] = ParseMoment(v.Date, v.Time, loc)
	}

	sort.SliceStable(views, func(i, j int) bool {
		mi, mj := moments[key(views[i])], moments[key(views[j])]
		if mi.Valid != mj.Valid {
			return mi.Valid
		}
		if !mi.Valid || mi.At.Equal(mj.At) {
			return false
		}
		if desc {
			return mi.At.After(mj.At)
		}
		return mi.At.Before(mj.At)
	})
}
