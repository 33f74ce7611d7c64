package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storegoals-backend/api/controllers"
	"github.com/angelmondragon/storegoals-backend/api/middleware"
	"github.com/angelmondragon/storegoals-backend/internal/auth"
	"github.com/angelmondragon/storegoals-backend/internal/dashboard"
	"github.com/angelmondragon/storegoals-backend/internal/navigation"
	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/internal/sales"
	"github.com/angelmondragon/storegoals-backend/internal/stores"
	"github.com/angelmondragon/storegoals-backend/internal/users"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
	"github.com/angelmondragon/storegoals-backend/pkg/config"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/metrics"
)

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(context.Context) error
}

// RedisStore is the redis surface the router needs directly.
type RedisStore interface {
	Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies wires the API. Nil services answer 500 on their routes.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             Pinger
	Redis          RedisStore
	Sessions       *session.Manager
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	Auth      auth.Service
	Periods   periods.Service
	Dashboard dashboard.Service
	Sales     sales.Service
	Stores    stores.Service
	Users     users.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		middleware.Session(cfg.JWT, deps.Sessions, logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginAccountLimit,
	)
	cookie := controllers.SessionCookie{Secure: cfg.HTTP.CookieSecure}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, cookie, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cookie, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, cookie, logg))
			r.Get("/session", controllers.AuthSession(logg))
			r.With(middleware.RequireAuth(logg)).Post("/password", controllers.AuthChangePassword(deps.Auth, logg))
		})

		r.Get("/navigation", controllers.Navigation(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))

			r.Get("/periods", controllers.PeriodsWindow(deps.Periods, logg))
			r.Get("/periods/current", controllers.PeriodsCurrent(deps.Periods, logg))
			r.Get("/periods/stored", controllers.PeriodsStored(deps.Periods, logg))

			r.Get("/dashboard/metrics", controllers.DashboardMetrics(deps.Dashboard, deps.Periods, logg))
			r.Get("/goals/store", controllers.GoalsStore(deps.Dashboard, deps.Stores, deps.Periods, logg))
			r.Get("/goals/me", controllers.GoalsMe(deps.Dashboard, deps.Periods, logg))
			r.Get("/reports/history", controllers.ReportsHistory(deps.Dashboard, logg))

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", controllers.SalesList(deps.Sales, logg))
				r.Get("/daily", controllers.SalesDaily(deps.Sales, deps.Stores, logg))
				r.Post("/", controllers.SalesCreate(deps.Sales, logg))
				r.Patch("/{saleId}", controllers.SalesUpdate(deps.Sales, logg))
			})

			r.Get("/stores/me", controllers.StoreProfile(deps.Stores, logg))
			r.Patch("/stores/me", controllers.StoreUpdate(deps.Stores, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.UsersList(deps.Users, logg))
				r.Get("/{userId}", controllers.UsersGet(deps.Users, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager(logg))
					r.Post("/", controllers.UsersCreate(deps.Users, logg))
					r.Patch("/{userId}", controllers.UsersUpdate(deps.Users, logg))
					r.Delete("/{userId}", controllers.UsersDeactivate(deps.Users, logg))
				})
			})
		})

		r.NotFound(controllers.NotFound(logg))
	})

	pages := controllers.PageGate(cfg.HTTP.WebDistDir, logg)
	for _, page := range navigation.Pages() {
		r.Get(page.Path, pages)
	}
	if cfg.HTTP.WebDistDir != "" {
		assets := http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.HTTP.WebDistDir+"/assets")))
		r.Method(http.MethodGet, "/assets/*", assets)
	}

	r.NotFound(controllers.NotFound(logg))
	return r
}
