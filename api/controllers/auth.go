package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storegoals-backend/api/middleware"
	"github.com/angelmondragon/storegoals-backend/api/responses"
	"github.com/angelmondragon/storegoals-backend/api/validators"
	"github.com/angelmondragon/storegoals-backend/internal/auth"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

// SessionCookie controls how the access token cookie is written for page
// navigation.
type SessionCookie struct {
	Secure bool
}

func (c SessionCookie) set(w http.ResponseWriter, token string, expiresIn int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   expiresIn,
		Expires:  time.Now().Add(time.Duration(expiresIn) * time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthLogin authenticates the login/password pair and opens a session.
func AuthLogin(svc auth.Service, cookie SessionCookie, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookie.set(w, result.AccessToken, result.ExpiresIn)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout always succeeds, with or without a session.
func AuthLogout(svc auth.Service, cookie SessionCookie, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		var accessID string
		if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
			accessID = p.AccessID
		}
		result := svc.Logout(r.Context(), accessID)
		cookie.clear(w)
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh rotates the refresh token of the session named by the
// presented access token, which may already be expired.
func AuthRefresh(svc auth.Service, cookie SessionCookie, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.AccessToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		result, err := svc.Refresh(r.Context(), token, body)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeMalformedSession) || pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				cookie.clear(w)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookie.set(w, result.AccessToken, result.ExpiresIn)
		responses.WriteSuccess(w, result)
	}
}

type sessionStateResponse struct {
	State         enums.SessionState `json:"state"`
	Authenticated bool               `json:"authenticated"`
	Profile       *session.Profile   `json:"profile,omitempty"`
}

// AuthSession reports the lifecycle state restored for this request.
func AuthSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lifecycle, ok := session.FromContext(r.Context())
		if !ok {
			responses.WriteSuccess(w, sessionStateResponse{State: enums.SessionStateAnonymous})
			return
		}
		resp := sessionStateResponse{State: lifecycle.State(), Authenticated: lifecycle.IsAuthenticated()}
		if profile, ok := lifecycle.Profile(); ok {
			resp.Profile = &profile
		}
		responses.WriteSuccess(w, resp)
	}
}

func AuthChangePassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		p, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.ChangePasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangePassword(r.Context(), p.UserID, p.AccessID, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "password_changed"})
	}
}
