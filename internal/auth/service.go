package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storegoals-backend/pkg/auth"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
	"github.com/angelmondragon/storegoals-backend/pkg/config"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) *LogoutResponse
	Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*RefreshResponse, error)
	ChangePassword(ctx context.Context, userID int64, accessID string, req ChangePasswordRequest) error
}

type userRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool) error
}

type service struct {
	users    userRepository
	sessions *session.Manager
	jwtCfg   config.JWTConfig
	passCfg  config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Sessions       *session.Manager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Clock          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.UserRepo,
		sessions: params.Sessions,
		jwtCfg:   params.JWTConfig,
		passCfg:  params.PasswordConfig,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Login authenticates by login and password and opens a session on the
// request lifecycle. Unknown logins, wrong passwords and inactive users all
// fail the same way.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Login, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	s.upgradeHash(ctx, user, req.Password)

	lifecycle, ok := session.FromContext(ctx)
	if !ok {
		lifecycle = session.NewLifecycle(s.sessions, s.logg)
	}
	profile := ProfileFromUser(user)
	accessID, refreshToken, err := lifecycle.Login(ctx, profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open session")
	}

	accessToken, err := s.mint(now, profile, accessID)
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithSessionID(s.logg.WithUserID(ctx, user.ID), accessID)
		s.logg.Info(logCtx, "auth.login")
	}
	return &LoginResponse{
		AccessToken:        accessToken,
		RefreshToken:       refreshToken,
		ExpiresIn:          int(s.jwtCfg.AccessTokenTTL().Seconds()),
		Session:            profile,
		User:               users.FromModel(user),
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// Logout clears the session. It cannot fail; storage errors are only logged.
func (s *service) Logout(ctx context.Context, accessID string) *LogoutResponse {
	if lifecycle, ok := session.FromContext(ctx); ok && lifecycle.IsAuthenticated() {
		lifecycle.Logout(ctx)
	} else if strings.TrimSpace(accessID) != "" {
		if err := s.sessions.Revoke(ctx, accessID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(s.logg.WithSessionID(ctx, accessID), "error", err.Error()), "auth.logout_clear_failed")
		}
	}
	return &LogoutResponse{Status: "logged_out"}
}

// Refresh rotates the refresh token of the session named by the (possibly
// expired) access token and mints a new access token from the stored profile.
func (s *service) Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	newAccessID, refreshToken, rec, err := s.sessions.Rotate(ctx, claims.AccessID(), req.RefreshToken)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrInvalidRefreshToken):
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	case errors.Is(err, session.ErrMalformedSession):
		if revokeErr := s.sessions.Revoke(ctx, claims.AccessID()); revokeErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, claims.AccessID()), "auth.refresh_clear_failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedSession, err, "session unavailable")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "rotate session")
	}

	token, err := s.mint(s.now().UTC(), rec.Profile, newAccessID)
	if err != nil {
		return nil, err
	}
	if lifecycle, ok := session.FromContext(ctx); ok {
		lifecycle.Adopt(newAccessID, rec)
	}
	return &RefreshResponse{
		AccessToken:  token,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtCfg.AccessTokenTTL().Seconds()),
		Session:      rec.Profile,
	}, nil
}

// ChangePassword replaces the password after checking the current one and
// clears the must-change flag on the user and the open session.
func (s *service) ChangePassword(ctx context.Context, userID int64, accessID string, req ChangePasswordRequest) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if len(req.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password must have at least 8 characters")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "load user")
	}
	valid, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !valid {
		return pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	hash, err := security.HashPassword(req.NewPassword, s.passCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if strings.TrimSpace(accessID) != "" {
		err := s.sessions.UpdateProfile(ctx, accessID, func(p *session.Profile) {
			p.MustChangePassword = false
		})
		if err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(s.logg.WithSessionID(ctx, accessID), "error", err.Error()), "auth.session_profile_update_failed")
		}
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, login, password string) (*models.User, error) {
	input := strings.TrimSpace(login)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	user, err := s.users.FindByLogin(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "auth.password_hash_unreadable")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	if !valid || !user.Status.CanLogin() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) mint(now time.Time, profile session.Profile, accessID string) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:     profile.ID,
		StoreID:    profile.StoreID,
		Role:       profile.Role,
		Permission: profile.Permission,
		JTI:        accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

// ProfileFromUser builds the session snapshot of user.
func ProfileFromUser(user *models.User) session.Profile {
	p := session.Profile{
		ID:                 user.ID,
		Name:               user.Name,
		Login:              user.Login,
		Role:               user.Role,
		StoreID:            user.StoreID,
		Permission:         user.Permission,
		Status:             user.Status,
		MustChangePassword: user.MustChangePassword,
	}
	if user.CPF != nil {
		p.CPF = *user.CPF
	}
	if user.Registration != nil {
		p.Registration = *user.Registration
	}
	return p
}

// upgradeHash re-encodes the password when the stored hash was made with
// older Argon2 costs. Failure leaves the old hash in place.
func (s *service) upgradeHash(ctx context.Context, user *models.User, password string) {
	if !security.NeedsRehash(user.PasswordHash, s.passCfg) {
		return
	}
	hash, err := security.HashPassword(password, s.passCfg)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash, user.MustChangePassword)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithUserID(ctx, user.ID), "error", err.Error()), "auth.rehash_failed")
		return
	}
	user.PasswordHash = hash
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "auth.password_rehashed")
}
