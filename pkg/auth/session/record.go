package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// ErrMalformedSession marks a stored record that cannot be decoded into a usable session.
var ErrMalformedSession = errors.New("malformed session data")

// Profile is the user snapshot kept alongside an open session.
type Profile struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Login              string           `json:"login"`
	Role               enums.UserRole   `json:"role"`
	StoreID            int64            `json:"store_id"`
	Permission         int              `json:"permission"`
	Status             enums.UserStatus `json:"status"`
	CPF                string           `json:"cpf,omitempty"`
	Registration       string           `json:"registration,omitempty"`
	MustChangePassword bool             `json:"must_change_password"`
}

// Record is the persisted session value.
type Record struct {
	RefreshToken string    `json:"refresh_token"`
	Profile      Profile   `json:"profile"`
	IssuedAt     time.Time `json:"issued_at"`
}

func encodeRecord(rec Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode session record: %w", err)
	}
	return string(raw), nil
}

func decodeRecord(raw string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if rec.Profile.ID <= 0 {
		return nil, fmt.Errorf("%w: profile id missing", ErrMalformedSession)
	}
	if strings.TrimSpace(rec.RefreshToken) == "" {
		return nil, fmt.Errorf("%w: refresh token missing", ErrMalformedSession)
	}
	return &rec, nil
}
