package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"portfolio/internal/httpjson"
	"portfolio/internal/models"
)

type contextKey string

const adminKey = contextKey("admin")

// SessionResolver is the part of Sessions the middleware needs.
type SessionResolver interface {
	Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.AdminIdentity, error)
}

// Optional resolves the session when present and stores the admin in the
// request context. Requests without a valid session pass through anonymously.
func Optional(sessions SessionResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, err := sessions.Verify(r.Context(), w, r)
			if err != nil {
				logger.Error().Err(err).Msg("Error checking admin session")
				httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if admin != nil {
				r = r.WithContext(WithAdmin(r.Context(), admin))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests without a verified admin session.
func RequireAdmin(sessions SessionResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := AdminFromContext(r.Context())
			if admin == nil {
				var err error
				admin, err = sessions.Verify(r.Context(), w, r)
				if err != nil {
					logger.Error().Err(err).Msg("Error checking admin session")
					httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
					return
				}
			}
			if admin == nil {
				httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}

// Context helpers
func WithAdmin(ctx context.Context, admin *models.AdminIdentity) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

func AdminFromContext(ctx context.Context) *models.AdminIdentity {
	admin, ok := ctx.Value(adminKey).(*models.AdminIdentity)
	if !ok {
		return nil
	}
	return admin
}
