package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/mklatt/careport/internal/model"
)

// Rescheduler applies a new calendar day to an appointment. The time-of-day
// component is passed alongside so the write preserves the original time.
type Rescheduler interface {
	Reschedule(ctx context.Context, id int64, date, timeOfDay string) error
}

// Notifier receives fire-and-forget user-facing outcome messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// Drag is the reschedule gesture state machine: Idle, then Dragging once a
// draggable event is picked up, then Idle again after a drop. Only one event
// can be dragged at a time; a second Start while dragging is rejected.
type Drag struct {
	store  Rescheduler
	notify Notifier

	state        dragState
	event        *Event
	originalDate string
}

func NewDrag(store Rescheduler, notify Notifier) *Drag {
	return &Drag{store: store, notify: notify}
}

// Start picks up an event for dragging. Non-draggable events are a no-op and
// leave the machine idle.
func (d *Drag) Start(ev Event) bool {
	if d.state != dragIdle || !ev.Draggable {
		return false
	}
	date := ""
	if a, ok := ev.Data.(*model.Appointment); ok {
		if k, ok := appointmentDayKey(*a); ok {
			date = k
		}
	}
	d.state = dragActive
	d.event = &ev
	d.originalDate = date
	return true
}

// Dragging reports whether an event is currently held.
func (d *Drag) Dragging() bool {
	return d.state == dragActive
}

// Cancel releases the held event without a mutation, for drops outside any
// valid target.
func (d *Drag) Cancel() {
	d.reset()
}

// Drop releases the held event onto a target day. Appointments are written
// through the store with their time-of-day preserved (09:00:00 when none
// existed); anything else returns to idle without a mutation. Failures are
// reported once through the notifier and leave the stored date unchanged.
func (d *Drag) Drop(ctx context.Context, target time.Time) error {
	if d.state != dragActive {
		return nil
	}
	ev := d.event
	origin := d.originalDate
	d.reset()

	if ev.Type != TypeAppointment {
		return nil
	}
	appt, ok := ev.Data.(*model.Appointment)
	if !ok {
		return nil
	}

	date := DayKey(target)
	if err := d.store.Reschedule(ctx, appt.ID, date, TimeOfDayComponent(*appt)); err != nil {
		if origin != "" {
			d.notify.Error(fmt.Sprintf("Could not move %q, still on %s", appt.Title, origin))
		} else {
			d.notify.Error(fmt.Sprintf("Could not move %q", appt.Title))
		}
		return fmt.Errorf("reschedule appointment %d: %w", appt.ID, err)
	}

	d.notify.Success(fmt.Sprintf("Moved %q to %s", appt.Title, date))
	return nil
}

func (d *Drag) reset() {
	d.state = dragIdle
	d.event = nil
	d.originalDate = ""
}
