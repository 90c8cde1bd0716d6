package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mklatt/careport/internal/backup"
	"github.com/mklatt/careport/internal/handler"
	"github.com/mklatt/careport/internal/middleware"
	"github.com/mklatt/careport/internal/push"
	"github.com/mklatt/careport/internal/store"
	ws "github.com/mklatt/careport/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	recipientH   *handler.CareRecipientHandler
	caregiverH   *handler.CaregiverHandler
	appointmentH *handler.AppointmentHandler
	taskH        *handler.TaskHandler
	medicationH  *handler.MedicationHandler
	noteH        *handler.NoteHandler
	messageH     *handler.MessageHandler
	calendarH    *handler.CalendarHandler
	settingsH    *handler.SettingsHandler
	pushH        *handler.PushHandler
	backupH      *handler.BackupHandler

	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	recipientStore := store.NewCareRecipientStore(db)
	caregiverStore := store.NewCaregiverStore(db)
	appointmentStore := store.NewAppointmentStore(db)
	taskStore := store.NewTaskStore(db)
	medicationStore := store.NewMedicationStore(db)
	noteStore := store.NewNoteStore(db)
	messageStore := store.NewMessageStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(backupCfg, db, backupStore, settingsStore, logger.With("component", "backup"), func(st backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(st.State),
			Extra: map[string]any{
				"in_progress": st.InProgress,
				"error":       st.Error,
			},
		})
	})

	// Push notification service + scheduler
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, appointmentStore, medicationStore, recipientStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushSvc, pushStore, caregiverStore, logger)
	}

	return &Server{
		db:           db,
		hub:          hub,
		recipientH:   handler.NewCareRecipientHandler(recipientStore, hub, logger),
		caregiverH:   handler.NewCaregiverHandler(caregiverStore, hub, logger),
		appointmentH: handler.NewAppointmentHandler(appointmentStore, recipientStore, hub, logger),
		taskH:        handler.NewTaskHandler(taskStore, recipientStore, caregiverStore, hub, logger),
		medicationH:  handler.NewMedicationHandler(medicationStore, recipientStore, hub, logger),
		noteH:        handler.NewNoteHandler(noteStore, hub, logger),
		messageH:     handler.NewMessageHandler(messageStore, caregiverStore, hub, pushSched, logger),
		calendarH:    handler.NewCalendarHandler(appointmentStore, taskStore, medicationStore, recipientStore, logger),
		settingsH:    handler.NewSettingsHandler(settingsStore, hub, logger),
		pushH:        pushH,
		backupH:      handler.NewBackupHandler(backupMgr, backupStore, logger),

		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// BackupManager exposes the manager for lifecycle control from main.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the scheduler, or nil when VAPID keys are unset.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Care recipient API routes
	mux.HandleFunc("GET /api/care-recipients", s.recipientH.List)
	mux.HandleFunc("POST /api/care-recipients", s.recipientH.Create)
	mux.HandleFunc("PUT /api/care-recipients/sort", s.recipientH.Reorder)
	mux.HandleFunc("GET /api/care-recipients/{id}", s.recipientH.Get)
	mux.HandleFunc("PUT /api/care-recipients/{id}", s.recipientH.Update)
	mux.HandleFunc("DELETE /api/care-recipients/{id}", s.recipientH.Delete)

	// Caregiver API routes
	mux.HandleFunc("GET /api/caregivers", s.caregiverH.List)
	mux.HandleFunc("POST /api/caregivers", s.caregiverH.Create)
	mux.HandleFunc("PUT /api/caregivers/sort", s.caregiverH.Reorder)
	mux.HandleFunc("GET /api/caregivers/{id}", s.caregiverH.Get)
	mux.HandleFunc("PUT /api/caregivers/{id}", s.caregiverH.Update)
	mux.HandleFunc("DELETE /api/caregivers/{id}", s.caregiverH.Delete)
	mux.HandleFunc("POST /api/caregivers/{id}/pin", s.caregiverH.SetPIN)
	mux.HandleFunc("DELETE /api/caregivers/{id}/pin", s.caregiverH.ClearPIN)
	mux.HandleFunc("POST /api/caregivers/{id}/pin/verify", s.rateLimitedHandler(s.caregiverH.VerifyPIN))

	// Appointment API routes
	mux.HandleFunc("GET /api/appointments", s.appointmentH.List)
	mux.HandleFunc("POST /api/appointments", s.appointmentH.Create)
	mux.HandleFunc("GET /api/appointments/{id}", s.appointmentH.Get)
	mux.HandleFunc("PUT /api/appointments/{id}", s.appointmentH.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.appointmentH.Delete)
	mux.HandleFunc("POST /api/appointments/{id}/status", s.appointmentH.SetStatus)
	mux.HandleFunc("POST /api/appointments/{id}/reschedule", s.appointmentH.Reschedule)

	// Task API routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.taskH.SetStatus)

	// Medication API routes
	mux.HandleFunc("GET /api/medications", s.medicationH.List)
	mux.HandleFunc("POST /api/medications", s.medicationH.Create)
	mux.HandleFunc("GET /api/medications/{id}", s.medicationH.Get)
	mux.HandleFunc("PUT /api/medications/{id}", s.medicationH.Update)
	mux.HandleFunc("DELETE /api/medications/{id}", s.medicationH.Delete)
	mux.HandleFunc("GET /api/medications/{id}/doses", s.medicationH.Doses)

	// Medication log API routes
	mux.HandleFunc("GET /api/medication-logs", s.medicationH.ListLogs)
	mux.HandleFunc("POST /api/medication-logs", s.medicationH.CreateLog)
	mux.HandleFunc("POST /api/medication-logs/{id}/status", s.medicationH.SetLogStatus)
	mux.HandleFunc("DELETE /api/medication-logs/{id}", s.medicationH.DeleteLog)

	// Note API routes
	mux.HandleFunc("GET /api/notes", s.noteH.List)
	mux.HandleFunc("POST /api/notes", s.noteH.Create)
	mux.HandleFunc("PUT /api/notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.Delete)
	mux.HandleFunc("POST /api/notes/{id}/pin", s.noteH.TogglePin)

	// Message board API routes
	mux.HandleFunc("GET /api/messages", s.messageH.List)
	mux.HandleFunc("POST /api/messages", s.messageH.Create)
	mux.HandleFunc("DELETE /api/messages/{id}", s.messageH.Delete)

	// Calendar API routes
	mux.HandleFunc("GET /api/calendar/day", s.calendarH.Day)
	mux.HandleFunc("GET /api/calendar/range", s.calendarH.Range)
	mux.HandleFunc("GET /api/calendar/export.ics", s.calendarH.ExportICS)

	// Settings API routes
	mux.HandleFunc("GET /api/settings", s.settingsH.GetAll)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Set)

	// Push notification API routes (only when VAPID keys are configured)
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDPublicKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/caregivers/{id}/notifications", s.pushH.GetPreferences)
		mux.HandleFunc("PUT /api/caregivers/{id}/notifications", s.pushH.SetPreference)
	}

	// Backup API routes
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backups/run", s.backupH.Run)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// WebSocket endpoint
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimitedHandler wraps a handler with per-IP rate limiting. PIN
// verification is the only brute-forceable endpoint.
func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
