package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/metrics"
	"portfolio/internal/storage"
)

func newTestRouter(t *testing.T, cfg config.Config) (http.Handler, *storage.DB) {
	t.Helper()
	db, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := metrics.New()
	logger := zerolog.Nop()
	sessions := auth.NewSessions(db, NewJar(cfg), auth.WithSessionObserver(m), auth.WithSessionLogger(logger))
	service := auth.NewService(db, logger, m)
	if _, err := service.Bootstrap(context.Background(), "owner@x.io", "Owner"); err != nil {
		t.Fatal(err)
	}

	return NewRouter(Deps{DB: db, Service: service, Sessions: sessions, Metrics: m, Logger: logger}), db
}

func serve(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewJar(t *testing.T) {
	if _, ok := NewJar(config.Config{SessionMode: config.SessionModePlain}).(auth.PlainCookieJar); !ok {
		t.Fatal("plain mode did not select PlainCookieJar")
	}
	if _, ok := NewJar(config.Config{SessionMode: config.SessionModeSigned, SessionSecret: "x"}).(*auth.StoreCookieJar); !ok {
		t.Fatal("signed mode did not select StoreCookieJar")
	}
	if jar := NewJar(config.Config{SessionMode: config.SessionModePlain, Env: config.EnvProduction}).(auth.PlainCookieJar); !jar.Secure {
		t.Fatal("production jar is not Secure")
	}
}

func TestBootstrapLoginFlow(t *testing.T) {
	for _, mode := range []string{config.SessionModePlain, config.SessionModeSigned} {
		t.Run(mode, func(t *testing.T) {
			h, _ := newTestRouter(t, config.Config{SessionMode: mode, SessionSecret: "router-test-secret"})

			rec := serve(h, http.MethodPost, "/api/admin/login", `{"email":"owner@x.io","password":"admin123"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("login status = %d body = %s", rec.Code, rec.Body.String())
			}
			var session *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == auth.CookieName {
					session = c
				}
			}
			if session == nil {
				t.Fatal("no session cookie")
			}

			if rec := serve(h, http.MethodGet, "/api/admin/me", "", session); rec.Code != http.StatusOK {
				t.Fatalf("me status = %d body = %s", rec.Code, rec.Body.String())
			}
			if rec := serve(h, http.MethodPost, "/api/posts", `{"title":"T","slug":"t","content":"c"}`, session); rec.Code != http.StatusCreated {
				t.Fatalf("create post status = %d body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	h, _ := newTestRouter(t, config.Config{SessionMode: config.SessionModePlain})

	if rec := serve(h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	serve(h, http.MethodPost, "/api/admin/login", `{"email":"owner@x.io","password":"wrong"}`)
	serve(h, http.MethodGet, "/api/admin/me", "", &http.Cookie{Name: auth.CookieName, Value: "junk"})

	rec := serve(h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`portfolio_login_attempts_total{outcome="invalid"} 1`,
		`portfolio_session_checks_total{outcome="malformed"} 1`,
		`portfolio_http_request_duration_seconds_count`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	rec = serve(h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error":"Not found"`) {
		t.Fatalf("not found = %d %s", rec.Code, rec.Body.String())
	}
}
