package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"portfolio/internal/admin"
	"portfolio/internal/api"
	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/httpjson"
	"portfolio/internal/logging"
	"portfolio/internal/metrics"
	"portfolio/internal/storage"
)

type Deps struct {
	DB       *storage.DB
	Service  *auth.Service
	Sessions *auth.Sessions
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// NewJar picks the session cookie transport for cfg.
func NewJar(cfg config.Config) auth.CookieJar {
	if cfg.SessionMode == config.SessionModeSigned {
		return auth.NewStoreCookieJar([]byte(cfg.SessionSecret), cfg.Production())
	}
	return auth.PlainCookieJar{Secure: cfg.Production()}
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(d.Logger))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpjson.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpjson.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	apiServer := api.NewServer(d.DB, d.Sessions, d.Logger)
	adminServer := admin.NewServer(d.Service, d.Sessions, d.Logger)

	r.Get("/health", apiServer.HandleHealth)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/admin", adminServer.Routes)
		apiServer.Routes(r)
	})

	return r
}
