package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/config"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

type memoryStorage struct {
	mu      sync.Mutex
	data    map[string]string
	failGet error
	cleared []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string]string)}
}

func (m *memoryStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return "", m.failGet
	}
	val, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *memoryStorage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStorage) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.cleared = append(m.cleared, key)
	return nil
}

func testKey(accessID string) string { return "sess:" + accessID }

func newTestManager(t *testing.T, storage Storage) *Manager {
	t.Helper()
	m, err := NewManager(storage, testKey, config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func testProfile() Profile {
	return Profile{ID: 42, Name: "Ana", Login: "ana", Role: enums.UserRoleManager, StoreID: 7, Status: enums.UserStatusActive}
}

func TestNewManagerRejectsShortRefreshTTL(t *testing.T) {
	_, err := NewManager(newMemoryStorage(), testKey, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30})
	if err == nil {
		t.Fatal("expected error when refresh ttl does not exceed access ttl")
	}
}

func TestManagerOpenAndRotate(t *testing.T) {
	storage := newMemoryStorage()
	manager := newTestManager(t, storage)
	ctx := context.Background()

	accessID, token, err := manager.Open(ctx, testProfile())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec, err := manager.Load(ctx, accessID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.RefreshToken != token || rec.Profile.ID != 42 {
		t.Fatalf("unexpected record %+v", rec)
	}

	newAccessID, newToken, rotated, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == accessID || newToken == token {
		t.Fatal("rotation must issue a new access id and token")
	}
	if rotated.Profile.Login != "ana" {
		t.Fatalf("profile must carry over, got %+v", rotated.Profile)
	}
	if _, err := manager.Load(ctx, accessID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old session should be gone, got %v", err)
	}
	if _, _, _, err := manager.Rotate(ctx, newAccessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
	if _, _, _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reusing a rotated token must fail, got %v", err)
	}
}

func TestManagerUpdateProfile(t *testing.T) {
	storage := newMemoryStorage()
	manager := newTestManager(t, storage)
	ctx := context.Background()

	profile := testProfile()
	profile.MustChangePassword = true
	accessID, _, err := manager.Open(ctx, profile)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := manager.UpdateProfile(ctx, accessID, func(p *Profile) { p.MustChangePassword = false }); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := manager.Load(ctx, accessID)
	if rec.Profile.MustChangePassword {
		t.Fatal("expected flag to be cleared")
	}
}

func TestDecodeRecordRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"{not json",
		`{"refresh_token":"x","profile":{"name":"no id"}}`,
		`{"profile":{"id":1}}`,
	} {
		if _, err := decodeRecord(raw); !errors.Is(err, ErrMalformedSession) {
			t.Fatalf("expected malformed error for %q, got %v", raw, err)
		}
	}
}
