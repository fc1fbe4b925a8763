package engine

import (
	"fmt"
	"strings"
	"time"

	"slotmarket/internal/models"
)

// TemporalFallback decides how a record with an unparseable date or time is
// placed relative to now.
type TemporalFallback int

const (
	// FallbackFuture treats unparseable records as not yet happened (fail-open).
	FallbackFuture TemporalFallback = iota
	// FallbackPast treats unparseable records as already elapsed.
	FallbackPast
)

func (f TemporalFallback) String() string {
	switch f {
	case FallbackFuture:
		return "future"
	case FallbackPast:
		return "past"
	default:
		return fmt.Sprintf("TemporalFallback(%d)", int(f))
	}
}

// ParseTemporalFallback maps a config value to a policy. Empty means future.
func ParseTemporalFallback(value string) (TemporalFallback, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "future":
		return FallbackFuture, nil
	case "past":
		return FallbackPast, nil
	default:
		return FallbackFuture, fmt.Errorf("unknown temporal fallback %q", value)
	}
}

var clockLayouts = []string{models.TimeFormat, "15:04:05"}

// Moment is a parsed appointment date and time in a naive local zone.
type Moment struct {
	At       time.Time
	Day      time.Time
	DayKnown bool
	Valid    bool
}

// ParseMoment parses date (YYYY-MM-DD) and clock (HH:MM) in loc without any
// zone conversion. A nil loc means time.Local.
func ParseMoment(date, clock string, loc *time.Location) Moment {
	if loc == nil {
		loc = time.Local
	}

	var m Moment
	day, err := time.ParseInLocation(models.DateFormat, strings.TrimSpace(date), loc)
	if err != nil {
		return m
	}
	m.Day = day
	m.DayKnown = true

	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		m.At = time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc)
		m.Valid = true
		break
	}
	return m
}

func (e *Engine) moment(rec models.AppointmentRecord, now time.Time) Moment {
	return ParseMoment(rec.Date, rec.Time, now.Location())
}

// elapsed reports whether the record is at or before now.
func (e *Engine) elapsed(component string, rec models.AppointmentRecord, now time.Time) bool {
	m := e.moment(rec, now)
	if !m.Valid {
		return e.applyFallback(component, rec)
	}
	return !m.At.After(now)
}

// expired reports whether the record is strictly before now.
func (e *Engine) expired(component string, rec models.AppointmentRecord, now time.Time) bool {
	m := e.moment(rec, now)
	if !m.Valid {
		return e.applyFallback(component, rec)
	}
	return m.At.Before(now)
}

func (e *Engine) applyFallback(component string, rec models.AppointmentRecord) bool {
	e.logger.Warn().
		Str("stage", component).
		Str("appointment_id", rec.ID).
		Str("date", rec.Date).
		Str("time", rec.Time).
		Str("policy", e.fallback.String()).
		Msg("unparseable appointment date/time, applying fallback")
	if e.observe != nil {
		e.observe(component)
	}
	return e.fallback == FallbackPast
}

func sameDay(m Moment, now time.Time) bool {
	if !m.DayKnown {
		return false
	}
	y1, m1, d1 := m.Day.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sameMonth(m Moment, now time.Time) bool {
	if !m.DayKnown {
		return false
	}
	return m.Day.Year() == now.Year() && m.Day.Month() == now.Month()
}
