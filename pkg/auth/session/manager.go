package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/config"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// KeyFunc maps an access id onto a storage key.
type KeyFunc func(accessID string) string

// Manager opens, loads, rotates and revokes persisted sessions.
type Manager struct {
	storage Storage
	key     KeyFunc
	ttl     time.Duration
	now     func() time.Time
}

// NewManager constructs a session manager. The refresh TTL must outlive the access token.
func NewManager(storage Storage, key KeyFunc, cfg config.JWTConfig) (*Manager, error) {
	if storage == nil {
		return nil, fmt.Errorf("session storage is required")
	}
	if key == nil {
		return nil, fmt.Errorf("session key func is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := cfg.AccessTokenTTL(); ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{storage: storage, key: key, ttl: ttl, now: time.Now}, nil
}

// Open persists a new session for profile and returns its access id and refresh token.
func (m *Manager) Open(ctx context.Context, profile Profile) (string, string, error) {
	if profile.ID <= 0 {
		return "", "", fmt.Errorf("profile id is required")
	}
	accessID := NewAccessID()
	token, err := m.write(ctx, accessID, profile)
	if err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

// Load returns the record stored for accessID. It returns ErrNotFound for a
// missing key and ErrMalformedSession for an undecodable value.
func (m *Manager) Load(ctx context.Context, accessID string) (*Record, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, ErrNotFound
	}
	raw, err := m.storage.Get(ctx, m.key(accessID))
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// Rotate checks the provided refresh token, replaces the session under a new
// access id and drops the old one. The stored profile carries over.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, *Record, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", nil, ErrInvalidRefreshToken
	}

	rec, err := m.Load(ctx, oldAccessID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", "", nil, ErrInvalidRefreshToken
		}
		return "", "", nil, err
	}
	if subtle.ConstantTimeCompare([]byte(rec.RefreshToken), []byte(provided)) != 1 {
		return "", "", nil, ErrInvalidRefreshToken
	}

	newAccessID := NewAccessID()
	token, err := m.write(ctx, newAccessID, rec.Profile)
	if err != nil {
		return "", "", nil, err
	}
	if err := m.storage.Clear(ctx, m.key(oldAccessID)); err != nil {
		return "", "", nil, err
	}

	rec.RefreshToken = token
	return newAccessID, token, rec, nil
}

// UpdateProfile rewrites the profile of an open session in place.
func (m *Manager) UpdateProfile(ctx context.Context, accessID string, mutate func(*Profile)) error {
	rec, err := m.Load(ctx, accessID)
	if err != nil {
		return err
	}
	mutate(&rec.Profile)
	encoded, err := encodeRecord(*rec)
	if err != nil {
		return err
	}
	return m.storage.Set(ctx, m.key(accessID), encoded, m.ttl)
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.storage.Clear(ctx, m.key(accessID))
}

func (m *Manager) write(ctx context.Context, accessID string, profile Profile) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	encoded, err := encodeRecord(Record{
		RefreshToken: token,
		Profile:      profile,
		IssuedAt:     m.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := m.storage.Set(ctx, m.key(accessID), encoded, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// NewAccessID produces the identifier used as the JWT jti and storage key suffix.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
