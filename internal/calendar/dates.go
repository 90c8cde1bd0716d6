package calendar

import (
	"time"

	"github.com/mklatt/careport/internal/model"
)

const (
	dayKeyLayout = "2006-01-02"
	clockLayout  = "15:04"
)

// Timestamps arrive either as full RFC3339 or as zoneless ISO strings,
// depending on which client wrote the row.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// DayKey returns the calendar-day bucket key for a time, in its own location.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// appointmentDayKey derives the day bucket for an appointment, preferring the
// structured timestamp over the legacy date field. Rows with no parseable date
// report ok=false and are excluded from every day.
func appointmentDayKey(a model.Appointment) (string, bool) {
	if a.StartTime != "" {
		t, ok := parseTimestamp(a.StartTime)
		if !ok {
			return "", false
		}
		return DayKey(t), true
	}
	if a.Date != "" {
		if _, err := time.Parse(dayKeyLayout, a.Date); err == nil {
			return a.Date, true
		}
	}
	return "", false
}

// appointmentClock derives the HH:mm display time for an appointment.
func appointmentClock(a model.Appointment) string {
	if a.StartTime != "" {
		if t, ok := parseTimestamp(a.StartTime); ok {
			return t.Format(clockLayout)
		}
	}
	return normalizeClock(a.TimeOfDay)
}

// medicationDayKey derives the day bucket for a medication log, preferring the
// scheduled timestamp over the legacy date-taken field.
func medicationDayKey(l model.MedicationLog) (string, bool) {
	if l.ScheduledTime != "" {
		t, ok := parseTimestamp(l.ScheduledTime)
		if !ok {
			return "", false
		}
		return DayKey(t), true
	}
	if l.DateTaken != "" {
		if _, err := time.Parse(dayKeyLayout, l.DateTaken); err == nil {
			return l.DateTaken, true
		}
	}
	return "", false
}

func medicationClock(l model.MedicationLog) string {
	if l.ScheduledTime != "" {
		if t, ok := parseTimestamp(l.ScheduledTime); ok {
			return t.Format(clockLayout)
		}
	}
	return normalizeClock(l.TimeTaken)
}

// normalizeClock reduces "14:30" or "14:30:00" to HH:mm; anything else is
// passed through untouched.
func normalizeClock(s string) string {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format(clockLayout)
	}
	if _, err := time.Parse(clockLayout, s); err == nil {
		return s
	}
	return s
}

// TimeOfDayComponent returns the HH:mm:ss component an appointment should keep
// when moved to another day, falling back to 09:00:00 when the appointment
// never had a time.
func TimeOfDayComponent(a model.Appointment) string {
	if a.StartTime != "" {
		if t, ok := parseTimestamp(a.StartTime); ok {
			return t.Format("15:04:05")
		}
	}
	if a.TimeOfDay != "" {
		if t, err := time.Parse("15:04:05", a.TimeOfDay); err == nil {
			return t.Format("15:04:05")
		}
		if t, err := time.Parse(clockLayout, a.TimeOfDay); err == nil {
			return t.Format("15:04:05")
		}
	}
	return "09:00:00"
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func weekStart(t time.Time) time.Time {
	wd := t.Weekday()
	offset := int(wd) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}
