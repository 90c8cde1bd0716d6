package store

import (
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const subscriptionCols = `id, caregiver_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	var caregiverID sql.NullInt64
	err := scanner.Scan(
		&sub.ID, &caregiverID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey,
		&sub.DeviceName, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if caregiverID.Valid {
		sub.CaregiverID = &caregiverID.Int64
	}
	return &sub, nil
}

// Subscribe registers a push subscription. Re-subscribing an existing endpoint
// replaces its keys rather than creating a duplicate row.
func (s *PushStore) Subscribe(caregiverID *int64, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (caregiver_id, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
		   caregiver_id = excluded.caregiver_id,
		   p256dh_key = excluded.p256dh_key,
		   auth_key = excluded.auth_key,
		   device_name = excluded.device_name`,
		nullID(caregiverID), endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}

	sub, err := scanSubscription(s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint,
	))
	if err != nil {
		return nil, fmt.Errorf("query push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListSubscriptions() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT ` + subscriptionCols + ` FROM push_subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint removes a subscription, typically after the push service
// reports it gone.
func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

func (s *PushStore) GetPreferences(caregiverID int64) (map[string]bool, error) {
	prefs := map[string]bool{
		model.NotifTypeAppointmentReminder: true,
		model.NotifTypeDoseDue:             true,
		model.NotifTypeMessagePosted:       true,
	}

	rows, err := s.db.Query(
		`SELECT notification_type, enabled FROM notification_preferences WHERE caregiver_id = ?`,
		caregiverID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notification preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var notifType string
		var enabled int
		if err := rows.Scan(&notifType, &enabled); err != nil {
			return nil, fmt.Errorf("scan notification preference: %w", err)
		}
		prefs[notifType] = enabled != 0
	}
	return prefs, rows.Err()
}

func (s *PushStore) SetPreference(caregiverID int64, notifType string, enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO notification_preferences (caregiver_id, notification_type, enabled)
		 VALUES (?, ?, ?)
		 ON CONFLICT(caregiver_id, notification_type) DO UPDATE SET
		   enabled = excluded.enabled, updated_at = CURRENT_TIMESTAMP`,
		caregiverID, notifType, enabledInt,
	)
	if err != nil {
		return fmt.Errorf("set notification preference: %w", err)
	}
	return nil
}

// WasSent reports whether a notification for this reference was already
// delivered, so the scheduler tick is idempotent.
func (s *PushStore) WasSent(notifType, referenceID string, leadMinutes int) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sent_notifications
		 WHERE notification_type = ? AND reference_id = ? AND lead_minutes = ?`,
		notifType, referenceID, leadMinutes,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query sent notifications: %w", err)
	}
	return count > 0, nil
}

func (s *PushStore) RecordSent(notifType, referenceID string, leadMinutes int) error {
	_, err := s.db.Exec(
		`INSERT INTO sent_notifications (notification_type, reference_id, lead_minutes)
		 VALUES (?, ?, ?)
		 ON CONFLICT(notification_type, reference_id, lead_minutes) DO NOTHING`,
		notifType, referenceID, leadMinutes,
	)
	if err != nil {
		return fmt.Errorf("record sent notification: %w", err)
	}
	return nil
}
