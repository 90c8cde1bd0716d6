package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklatt/careport/internal/calendar"
	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/schedule"
	"github.com/mklatt/careport/internal/store"
)

// Scheduler periodically checks for appointment reminders and due doses.
type Scheduler struct {
	mu           sync.RWMutex
	service      *Service
	push         *store.PushStore
	appointments *store.AppointmentStore
	medications  *store.MedicationStore
	recipients   *store.CareRecipientStore
	logger       *slog.Logger
	interval     time.Duration
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewScheduler creates a notification scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, apptStore *store.AppointmentStore, medStore *store.MedicationStore, recipientStore *store.CareRecipientStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:      svc,
		push:         pushStore,
		appointments: apptStore,
		medications:  medStore,
		recipients:   recipientStore,
		logger:       logger.With("component", "push_scheduler"),
		interval:     60 * time.Second,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	s.checkAppointmentReminders(now)
	s.checkDosesDue(now)
}

// checkAppointmentReminders fires once per appointment when the lead window
// opens: reminder_minutes before start, until start.
func (s *Scheduler) checkAppointmentReminders(now time.Time) {
	appointments, err := s.appointments.ListScheduledWithReminders()
	if err != nil {
		s.logger.Error("list appointments with reminders", "error", err)
		return
	}

	for _, a := range appointments {
		if a.ReminderMinutes == nil {
			continue
		}
		start, ok := calendar.AppointmentStart(a)
		if !ok {
			continue
		}
		lead := *a.ReminderMinutes
		remindAt := start.Add(-time.Duration(lead) * time.Minute)
		if now.Before(remindAt) || !now.Before(start) {
			continue
		}

		refID := fmt.Sprintf("appointment-%d", a.ID)
		sent, err := s.push.WasSent(model.NotifTypeAppointmentReminder, refID, lead)
		if err != nil {
			s.logger.Error("check sent notification", "error", err)
			continue
		}
		if sent {
			continue
		}

		body := fmt.Sprintf("%s starts in %d minutes", a.Title, lead)
		if a.Location != "" {
			body = fmt.Sprintf("%s starts in %d minutes at %s", a.Title, lead, a.Location)
		}
		s.broadcast(model.NotifTypeAppointmentReminder, Payload{
			Title: "Appointment Reminder",
			Body:  body,
			URL:   "/calendar",
			Tag:   refID,
		})

		if err := s.push.RecordSent(model.NotifTypeAppointmentReminder, refID, lead); err != nil {
			s.logger.Error("record sent notification", "error", err)
		}
	}
}

// checkDosesDue expands active medication schedules over the current tick
// window and notifies for each dose falling inside it.
func (s *Scheduler) checkDosesDue(now time.Time) {
	meds, err := s.medications.ListActive()
	if err != nil {
		s.logger.Error("list active medications", "error", err)
		return
	}
	if len(meds) == 0 {
		return
	}

	recipients, err := s.recipients.List()
	if err != nil {
		s.logger.Error("list care recipients", "error", err)
		return
	}

	windowStart := now.Add(-s.interval)
	for _, dose := range schedule.ExpandAll(meds, windowStart, now) {
		refID := fmt.Sprintf("dose-%d-%s", dose.Medication.ID, dose.Time.Format(time.RFC3339))
		sent, err := s.push.WasSent(model.NotifTypeDoseDue, refID, 0)
		if err != nil {
			s.logger.Error("check sent notification", "error", err)
			continue
		}
		if sent {
			continue
		}

		who := calendar.RecipientName(recipients, dose.Medication.CareRecipientID)
		body := fmt.Sprintf("%s is due for %s", who, dose.Medication.Name)
		if dose.Medication.Dosage != "" {
			body = fmt.Sprintf("%s is due for %s (%s)", who, dose.Medication.Name, dose.Medication.Dosage)
		}
		s.broadcast(model.NotifTypeDoseDue, Payload{
			Title: "Medication Due",
			Body:  body,
			URL:   "/medications",
			Tag:   refID,
		})

		if err := s.push.RecordSent(model.NotifTypeDoseDue, refID, 0); err != nil {
			s.logger.Error("record sent notification", "error", err)
		}
	}
}

// SendMessageNotification notifies other caregivers that a message was posted.
// Called from the message handler, not from the scheduler loop.
func (s *Scheduler) SendMessageNotification(authorID *int64, authorName, body string) {
	payload := Payload{
		Title: "New Message",
		Body:  fmt.Sprintf("%s: %s", authorName, body),
		URL:   "/messages",
		Tag:   "message-posted",
	}

	subs, err := s.push.ListSubscriptions()
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		if authorID != nil && sub.CaregiverID != nil && *sub.CaregiverID == *authorID {
			continue
		}
		if !s.preferenceEnabled(sub, model.NotifTypeMessagePosted) {
			continue
		}
		s.send(sub, payload)
	}
}

// broadcast sends a payload to every subscription whose caregiver has the
// notification type enabled. Subscriptions without a caregiver get everything.
func (s *Scheduler) broadcast(notifType string, payload Payload) {
	subs, err := s.push.ListSubscriptions()
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		if !s.preferenceEnabled(sub, notifType) {
			continue
		}
		s.send(sub, payload)
	}
}

func (s *Scheduler) preferenceEnabled(sub *model.PushSubscription, notifType string) bool {
	if sub.CaregiverID == nil {
		return true
	}
	prefs, err := s.push.GetPreferences(*sub.CaregiverID)
	if err != nil {
		s.logger.Error("get notification preferences", "error", err)
		return true
	}
	return prefs[notifType]
}

func (s *Scheduler) send(sub *model.PushSubscription, payload Payload) {
	if err := s.service.Send(sub, payload); err != nil {
		if errors.Is(err, ErrExpired) {
			if err := s.push.DeleteByEndpoint(sub.Endpoint); err != nil {
				s.logger.Error("delete expired subscription", "error", err)
			}
			return
		}
		s.logger.Error("send push notification", "error", err)
	}
}
