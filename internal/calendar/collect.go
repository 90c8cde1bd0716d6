package calendar

import (
	"time"

	"github.com/mklatt/careport/internal/model"
)

type EventType string

const (
	TypeAppointment EventType = "appointment"
	TypeTask        EventType = "task"
	TypeMedication  EventType = "medication"
)

// FilterAll matches every event type. An empty filter behaves the same way.
const FilterAll = "all"

// Event is a single calendar entry projected for one day. Events are derived
// fresh on every query and never persisted; Data always points at exactly one
// source entity.
type Event struct {
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Time      string    `json:"time,omitempty"`
	Color     string    `json:"color"`
	Draggable bool      `json:"draggable"`
	Data      any       `json:"data"`
}

// Inputs carries the entity collections and active filters for one collection
// pass. Any collection may be nil (still loading, or empty); the collector
// treats that as an empty list.
type Inputs struct {
	Appointments    []model.Appointment
	Tasks           []model.Task
	MedicationLogs  []model.MedicationLog
	FilterRecipient *int64
	FilterType      string
	ColorFor        func(recipientID int64) string
}

// EventsForDate merges appointments, tasks, and medication logs into the
// ordered event list for a single day. Output order is fixed: appointments,
// then tasks, then medications, each preserving source-list order. Rows with
// absent or unparseable dates are silently excluded.
func EventsForDate(date time.Time, in Inputs) []Event {
	key := DayKey(date)
	colorFor := in.ColorFor
	if colorFor == nil {
		colorFor = func(int64) string { return ColorNeutral }
	}

	var events []Event

	if typeAllowed(in.FilterType, TypeAppointment) {
		for i := range in.Appointments {
			a := &in.Appointments[i]
			k, ok := appointmentDayKey(*a)
			if !ok || k != key {
				continue
			}
			if in.FilterRecipient != nil && a.CareRecipientID != *in.FilterRecipient {
				continue
			}
			events = append(events, Event{
				Type:      TypeAppointment,
				Title:     a.Title,
				Time:      appointmentClock(*a),
				Color:     colorFor(a.CareRecipientID),
				Draggable: true,
				Data:      a,
			})
		}
	}

	if typeAllowed(in.FilterType, TypeTask) {
		for i := range in.Tasks {
			t := &in.Tasks[i]
			if t.DueDate != key {
				continue
			}
			// Closed items do not occupy a calendar slot.
			if t.Status == model.TaskCompleted {
				continue
			}
			if in.FilterRecipient != nil && (t.CareRecipientID == nil || *t.CareRecipientID != *in.FilterRecipient) {
				continue
			}
			events = append(events, Event{
				Type:  TypeTask,
				Title: t.Title,
				Color: taskColor(t.Priority),
				Data:  t,
			})
		}
	}

	if typeAllowed(in.FilterType, TypeMedication) {
		for i := range in.MedicationLogs {
			l := &in.MedicationLogs[i]
			k, ok := medicationDayKey(*l)
			if !ok || k != key {
				continue
			}
			if in.FilterRecipient != nil && l.CareRecipientID != *in.FilterRecipient {
				continue
			}
			title := l.MedicationName
			if title == "" {
				title = "Medication"
			}
			events = append(events, Event{
				Type:  TypeMedication,
				Title: title,
				Time:  medicationClock(*l),
				Color: medicationColor(l.Status),
				Data:  l,
			})
		}
	}

	return events
}

func typeAllowed(filter string, t EventType) bool {
	return filter == "" || filter == FilterAll || filter == string(t)
}
