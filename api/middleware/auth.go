package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storegoals-backend/api/responses"
	pkgAuth "github.com/angelmondragon/storegoals-backend/pkg/auth"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
	"github.com/angelmondragon/storegoals-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

// SessionCookieName holds the access token for page requests.
const SessionCookieName = "sg_session"

// Session attaches a resolved session lifecycle to every request. A missing,
// invalid or expired token leaves the request anonymous; only a session store
// failure stops the request.
func Session(cfg config.JWTConfig, manager *session.Manager, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			lifecycle := session.NewLifecycle(manager, logg)

			var accessID string
			if token := AccessToken(r); token != "" {
				if claims, err := pkgAuth.ParseAccessToken(cfg, token); err == nil {
					accessID = claims.AccessID()
				}
			}

			if err := lifecycle.Restore(ctx, accessID); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			ctx = session.NewContext(ctx, lifecycle)

			if profile, ok := lifecycle.Profile(); ok {
				ctx = WithPrincipal(ctx, Principal{
					UserID:             profile.ID,
					StoreID:            profile.StoreID,
					Name:               profile.Name,
					Role:               profile.Role,
					Permission:         profile.Permission,
					AccessID:           lifecycle.AccessID(),
					MustChangePassword: profile.MustChangePassword,
				})
				if logg != nil {
					ctx = logg.WithUserID(ctx, profile.ID)
					ctx = logg.WithStoreID(ctx, profile.StoreID)
					ctx = logg.WithSessionID(ctx, lifecycle.AccessID())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose lifecycle is not authenticated.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessToken reads the bearer token, falling back to the session cookie.
func AccessToken(r *http.Request) string {
	if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
		token := raw
		if strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		if token != "" {
			return token
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
