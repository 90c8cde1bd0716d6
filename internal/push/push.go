// Package push delivers web push notifications to caregiver devices. Three
// notification types exist: appointment reminders, dose-due alerts, and
// message board posts; the scheduler decides when each fires.
package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mklatt/careport/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired means the push service answered 410 Gone; the device revoked or
// lost the subscription and its row should be deleted.
var ErrExpired = errors.New("push subscription expired")

// Payload is what the service worker on the device receives. Tag collapses
// repeated notifications for the same appointment or dose into one banner;
// URL is where a tap lands, usually the calendar day in question.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Config carries the VAPID key pair; when either key is missing the server
// runs with push disabled.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

const (
	// vapidSubscriber identifies the sender to the push service.
	vapidSubscriber = "mailto:noreply@careport.app"

	// notificationTTL keeps undelivered reminders queued for a day; a dose
	// reminder from last week is worse than none.
	notificationTTL = 86400
)

// Service sends web push notifications signed with the VAPID key pair.
type Service struct {
	publicKey  string
	privateKey string
}

func NewService(publicKey, privateKey string) *Service {
	return &Service{publicKey: publicKey, privateKey: privateKey}
}

// VAPIDPublicKey returns the key browsers need to create a subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send pushes one payload to one subscribed device.
func (s *Service) Send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      vapidSubscriber,
		TTL:             notificationTTL,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// GenerateVAPIDKeys creates a fresh ECDSA P-256 key pair, base64url encoded
// the way the web push protocol expects. Run once at install time; the keys
// go into the server's environment.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	return base64.RawURLEncoding.EncodeToString(pubBytes),
		base64.RawURLEncoding.EncodeToString(key.D.Bytes()),
		nil
}
