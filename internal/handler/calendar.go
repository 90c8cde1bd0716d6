package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mklatt/careport/internal/calendar"
	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/store"
)

type CalendarHandler struct {
	appointments *store.AppointmentStore
	tasks        *store.TaskStore
	medications  *store.MedicationStore
	recipients   *store.CareRecipientStore
	logger       *slog.Logger
}

func NewCalendarHandler(as *store.AppointmentStore, ts *store.TaskStore, ms *store.MedicationStore, rs *store.CareRecipientStore, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		appointments: as,
		tasks:        ts,
		medications:  ms,
		recipients:   rs,
		logger:       logger.With("component", "calendar_handler"),
	}
}

// loadInputs gathers the entity collections and builds the recipient color
// lookup for one collection pass.
func (h *CalendarHandler) loadInputs(r *http.Request) (calendar.Inputs, error) {
	appointments, err := h.appointments.List()
	if err != nil {
		return calendar.Inputs{}, err
	}
	tasks, err := h.tasks.List()
	if err != nil {
		return calendar.Inputs{}, err
	}
	logs, err := h.medications.ListLogs()
	if err != nil {
		return calendar.Inputs{}, err
	}
	recipients, err := h.recipients.List()
	if err != nil {
		return calendar.Inputs{}, err
	}

	in := calendar.Inputs{
		Appointments:   appointments,
		Tasks:          tasks,
		MedicationLogs: logs,
		FilterType:     r.URL.Query().Get("type"),
		ColorFor: func(id int64) string {
			return calendar.ColorForRecipient(recipients, id)
		},
	}

	if s := r.URL.Query().Get("recipient"); s != "" && s != "all" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return calendar.Inputs{}, errBadRecipient
		}
		in.FilterRecipient = &id
	}

	return in, nil
}

var errBadRecipient = &badParamError{"recipient must be an id or \"all\""}
var errBadType = &badParamError{"type must be all, appointment, task, or medication"}

type badParamError struct{ msg string }

func (e *badParamError) Error() string { return e.msg }

func validFilterType(s string) bool {
	switch s {
	case "", calendar.FilterAll,
		string(calendar.TypeAppointment), string(calendar.TypeTask), string(calendar.TypeMedication):
		return true
	}
	return false
}

// Day returns the merged, ordered event list for a single date.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	date, err := parseDayParam(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}
	if !validFilterType(r.URL.Query().Get("type")) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errBadType.msg})
		return
	}

	in, err := h.loadInputs(r)
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	events := calendar.EventsForDate(date, in)
	if events == nil {
		events = []calendar.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":   r.URL.Query().Get("date"),
		"events": events,
	})
}

// Range returns the visible days for a view mode and the events on each.
// With a direction parameter it first navigates one step from the given date.
func (h *CalendarHandler) Range(w http.ResponseWriter, r *http.Request) {
	date, err := parseDayParam(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	mode := calendar.ViewMode(r.URL.Query().Get("view"))
	switch mode {
	case "", calendar.ViewDay, calendar.ViewWeek, calendar.ViewMonth:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "view must be day, week, or month"})
		return
	}
	if mode == "" {
		mode = calendar.ViewDay
	}
	if !validFilterType(r.URL.Query().Get("type")) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errBadType.msg})
		return
	}

	if dir := r.URL.Query().Get("direction"); dir != "" {
		if dir != calendar.DirPrev && dir != calendar.DirNext {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be prev or next"})
			return
		}
		date = calendar.Navigate(date, mode, dir)
	}

	in, err := h.loadInputs(r)
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	type dayEvents struct {
		Date   string           `json:"date"`
		Events []calendar.Event `json:"events"`
	}

	visible := calendar.VisibleDays(date, mode)
	days := make([]dayEvents, 0, len(visible))
	for _, d := range visible {
		events := calendar.EventsForDate(d, in)
		if events == nil {
			events = []calendar.Event{}
		}
		days = append(days, dayEvents{Date: calendar.DayKey(d), Events: events})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date": calendar.DayKey(date),
		"view": mode,
		"days": days,
	})
}

// ExportICS serves the appointment calendar as an iCalendar feed.
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointments.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list appointments"})
		return
	}
	recipients, err := h.recipients.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list care recipients"})
		return
	}

	// Cancelled appointments do not belong on a subscribed calendar.
	active := make([]model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.Status != model.AppointmentCancelled {
			active = append(active, a)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="careport.ics"`)
	w.Write([]byte(calendar.ExportICS(active, recipients)))
}

func (h *CalendarHandler) respondLoadError(w http.ResponseWriter, err error) {
	if bad, ok := err.(*badParamError); ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": bad.msg})
		return
	}
	h.logger.Error("load calendar inputs", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load calendar"})
}
