package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

// Lifecycle is the per-request session context. It starts unresolved and
// moves between anonymous and authenticated; there is no terminal state.
type Lifecycle struct {
	manager  *Manager
	logg     *logger.Logger
	state    enums.SessionState
	accessID string
	record   *Record
}

// NewLifecycle returns an unresolved lifecycle.
func NewLifecycle(manager *Manager, logg *logger.Logger) *Lifecycle {
	return &Lifecycle{
		manager: manager,
		logg:    logg,
		state:   enums.SessionStateUnresolved,
	}
}

// Restore resolves the lifecycle from storage. Missing or malformed data
// yields anonymous without an error; malformed keys are cleared. Only a
// storage failure is reported, as a data fetch error.
func (l *Lifecycle) Restore(ctx context.Context, accessID string) error {
	if accessID == "" {
		l.becomeAnonymous()
		return nil
	}

	rec, err := l.manager.Load(ctx, accessID)
	switch {
	case err == nil:
		l.state = enums.SessionStateAuthenticated
		l.accessID = accessID
		l.record = rec
		return nil
	case errors.Is(err, ErrNotFound):
		l.becomeAnonymous()
		return nil
	case errors.Is(err, ErrMalformedSession):
		l.warn(ctx, accessID, "session.malformed_cleared", err)
		if clearErr := l.manager.Revoke(ctx, accessID); clearErr != nil {
			l.warn(ctx, accessID, "session.clear_failed", clearErr)
		}
		l.becomeAnonymous()
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "restore session")
	}
}

// Login opens a session for profile. Any session held by this lifecycle is
// revoked first.
func (l *Lifecycle) Login(ctx context.Context, profile Profile) (string, string, error) {
	if l.state == enums.SessionStateAuthenticated {
		l.Logout(ctx)
	}
	accessID, token, err := l.manager.Open(ctx, profile)
	if err != nil {
		return "", "", fmt.Errorf("open session: %w", err)
	}
	rec := &Record{RefreshToken: token, Profile: profile}
	l.state = enums.SessionStateAuthenticated
	l.accessID = accessID
	l.record = rec
	return accessID, token, nil
}

// Adopt marks the lifecycle authenticated with an already persisted record.
func (l *Lifecycle) Adopt(accessID string, rec *Record) {
	if rec == nil || accessID == "" {
		l.becomeAnonymous()
		return
	}
	l.state = enums.SessionStateAuthenticated
	l.accessID = accessID
	l.record = rec
}

// Logout clears the stored session and always ends anonymous. Storage errors
// are logged, never returned.
func (l *Lifecycle) Logout(ctx context.Context) {
	if l.accessID != "" {
		if err := l.manager.Revoke(ctx, l.accessID); err != nil {
			l.warn(ctx, l.accessID, "session.logout_clear_failed", err)
		}
	}
	l.becomeAnonymous()
}

func (l *Lifecycle) State() enums.SessionState { return l.state }

func (l *Lifecycle) IsAuthenticated() bool {
	return l.state == enums.SessionStateAuthenticated
}

func (l *Lifecycle) AccessID() string { return l.accessID }

// Profile returns the session profile when authenticated.
func (l *Lifecycle) Profile() (Profile, bool) {
	if l.state != enums.SessionStateAuthenticated || l.record == nil {
		return Profile{}, false
	}
	return l.record.Profile, true
}

func (l *Lifecycle) becomeAnonymous() {
	l.state = enums.SessionStateAnonymous
	l.accessID = ""
	l.record = nil
}

func (l *Lifecycle) warn(ctx context.Context, accessID, msg string, err error) {
	if l.logg == nil {
		return
	}
	ctx = l.logg.WithSessionID(ctx, accessID)
	ctx = l.logg.WithField(ctx, "error", err.Error())
	l.logg.Warn(ctx, msg)
}

type lifecycleKey struct{}

// NewContext attaches the lifecycle to ctx.
func NewContext(ctx context.Context, l *Lifecycle) context.Context {
	return context.WithValue(ctx, lifecycleKey{}, l)
}

// FromContext returns the lifecycle attached by the auth middleware.
func FromContext(ctx context.Context) (*Lifecycle, bool) {
	l, ok := ctx.Value(lifecycleKey{}).(*Lifecycle)
	return l, ok && l != nil
}
