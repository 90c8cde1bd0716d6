package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mklatt/careport/internal/database"
	"github.com/mklatt/careport/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configuredConfig() Config {
	return Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "test-passphrase",
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config or passphrase -> disabled
	m := NewManager(Config{}, nil, nil, nil, testLogger(), nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// Missing passphrase alone keeps backups disabled
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, nil, testLogger(), nil)
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m2.Status().State, StateDisabled)
	}

	// Full config -> idle
	m3 := NewManager(configuredConfig(), nil, nil, nil, testLogger(), nil)
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var mu sync.Mutex
	var received []Status
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(configuredConfig(), nil, nil, nil, testLogger(), cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(configuredConfig(), nil, nil, nil, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, testLogger(), nil)

	m.Start(context.Background()) // no-op for disabled state
	m.Stop()
}

func TestRunNowRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "careport.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := configuredConfig()
	cfg.DBPath = dbPath

	backups := store.NewBackupStore(db)
	settings := store.NewSettingsStore(db)
	m := NewManager(cfg, db, backups, settings, testLogger(), nil)

	mock := newMockS3()
	m.client = mock

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if key == "" {
		t.Fatal("expected object key")
	}

	mock.mu.Lock()
	data, ok := mock.objects[key]
	mock.mu.Unlock()
	if !ok {
		t.Fatal("expected uploaded object")
	}

	// Uploaded bytes decrypt back to a SQLite image
	plaintext, err := Decrypt(data, cfg.Passphrase)
	if err != nil {
		t.Fatalf("decrypt uploaded backup: %v", err)
	}
	if len(plaintext) == 0 || !strings.HasPrefix(string(plaintext), "SQLite format 3") {
		t.Error("decrypted backup is not a SQLite database")
	}

	latest, err := backups.Latest()
	if err != nil {
		t.Fatalf("latest backup: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a backup record")
	}
	if latest.ObjectKey != key {
		t.Errorf("object key = %q, want %q", latest.ObjectKey, key)
	}
	if latest.SizeBytes != int64(len(data)) {
		t.Errorf("size = %d, want %d", latest.SizeBytes, len(data))
	}

	if m.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m.Status().State, StateIdle)
	}
	if m.Status().LastBackup == nil {
		t.Error("expected last backup time")
	}
}

func TestRunNowUnconfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, testLogger(), nil)
	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected error when backups are not configured")
	}
}
