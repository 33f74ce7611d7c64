package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/angelmondragon/storegoals-backend/api/responses"
	"github.com/angelmondragon/storegoals-backend/internal/navigation"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

type pageResponse struct {
	Page          navigation.Page `json:"page"`
	Authenticated bool            `json:"authenticated"`
}

func isAuthenticated(r *http.Request) bool {
	lifecycle, ok := session.FromContext(r.Context())
	return ok && lifecycle.IsAuthenticated()
}

// PageGate guards browser navigation. Protected pages redirect anonymous
// visitors to /login and the login page redirects signed in users home.
// Allowed pages get the SPA shell from webDistDir, or a JSON description of
// the page when no build is configured.
func PageGate(webDistDir string, logg *logger.Logger) http.HandlerFunc {
	index := ""
	if webDistDir != "" {
		index = filepath.Join(webDistDir, "index.html")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		authenticated := isAuthenticated(r)
		result := navigation.Decide(r.URL.Path, authenticated)

		switch result.Decision {
		case navigation.DecisionRedirect:
			http.Redirect(w, r, result.Location, http.StatusFound)
			return
		case navigation.DecisionNotFound:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "page not found"))
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		if index != "" {
			if _, err := os.Stat(index); err == nil {
				http.ServeFile(w, r, index)
				return
			}
			if logg != nil {
				logg.Warn(r.Context(), "pages.index_missing")
			}
		}
		responses.WriteSuccess(w, pageResponse{Page: *result.Page, Authenticated: authenticated})
	}
}

// Navigation answers the gate decision for ?path= without redirecting, for
// client side routing.
func Navigation(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "path is required"))
			return
		}
		responses.WriteSuccess(w, navigation.Decide(path, isAuthenticated(r)))
	}
}

func NotFound(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found"))
	}
}
