package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/mklatt/careport/internal/model"
)

const defaultAppointmentDuration = time.Hour

// ExportICS renders appointments as an iCalendar document for subscription by
// external calendar apps. Appointments without a parseable date are skipped,
// matching collector semantics.
func ExportICS(appointments []model.Appointment, recipients []model.CareRecipient) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//careport//calendar//EN")

	now := time.Now().UTC()

	for _, a := range appointments {
		start, ok := AppointmentStart(a)
		if !ok {
			continue
		}

		ev := cal.AddEvent(fmt.Sprintf("appointment-%d@careport", a.ID))
		ev.SetDtStampTime(now)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(defaultAppointmentDuration))
		ev.SetSummary(a.Title)
		if a.Location != "" {
			ev.SetLocation(a.Location)
		}
		ev.SetDescription(RecipientName(recipients, a.CareRecipientID))
	}

	return cal.Serialize()
}

// AppointmentStart resolves the concrete start time, preferring the structured
// timestamp and falling back to the legacy date/time pair. The reminder
// scheduler uses this to decide when a lead window opens.
func AppointmentStart(a model.Appointment) (time.Time, bool) {
	if a.StartTime != "" {
		if t, ok := parseTimestamp(a.StartTime); ok {
			return t, true
		}
		return time.Time{}, false
	}
	if a.Date == "" {
		return time.Time{}, false
	}
	day, err := time.Parse(dayKeyLayout, a.Date)
	if err != nil {
		return time.Time{}, false
	}
	if tod, err := time.Parse("15:04:05", a.TimeOfDay); err == nil {
		return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), true
	}
	if tod, err := time.Parse(clockLayout, a.TimeOfDay); err == nil {
		return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), true
	}
	return day, true
}
