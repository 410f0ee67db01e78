package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"portfolio/internal/auth"
	"portfolio/internal/httpjson"
	"portfolio/internal/storage"
)

const (
	defaultPostPageSize  = 10
	defaultPhotoPageSize = 20
)

type Server struct {
	db       *storage.DB
	sessions auth.SessionResolver
	log      zerolog.Logger
}

func NewServer(db *storage.DB, sessions auth.SessionResolver, logger zerolog.Logger) *Server {
	return &Server{
		db:       db,
		sessions: sessions,
		log:      logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts the content endpoints, relative to /api.
func (s *Server) Routes(r chi.Router) {
	optional := auth.Optional(s.sessions, s.log)
	required := auth.RequireAdmin(s.sessions, s.log)

	r.Route("/posts", func(r chi.Router) {
		r.With(optional).Get("/", s.HandleListPosts)
		r.With(required).Post("/", s.HandleCreatePost)
		r.With(optional).Get("/slug/{slug}", s.HandleGetPostBySlug)
		r.With(optional).Get("/{id}", s.HandleGetPost)
		r.With(required).Put("/{id}", s.HandleUpdatePost)
		r.With(required).Delete("/{id}", s.HandleDeletePost)
	})

	r.Route("/photos", func(r chi.Router) {
		r.Get("/", s.HandleListPhotos)
		r.With(required).Post("/", s.HandleCreatePhoto)
		r.Get("/{id}", s.HandleGetPhoto)
		r.With(required).Patch("/{id}", s.HandleUpdatePhoto)
		r.With(required).Delete("/{id}", s.HandleDeletePhoto)
	})

	r.Route("/galleries", func(r chi.Router) {
		r.With(optional).Get("/", s.HandleListGalleries)
		r.With(required).Post("/", s.HandleCreateGallery)
	})

	r.Route("/contact", func(r chi.Router) {
		r.Post("/", s.HandleCreateContact)
		r.With(required).Get("/", s.HandleListContacts)
		r.With(required).Patch("/{id}", s.HandleUpdateContact)
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	count, err := s.db.CountAdmins(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Health check failed - database error")
		httpjson.Write(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "Database unavailable",
		})
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"admins": count,
	})
}

type pagination struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// pageRequest is the parsed limit/page query. Values that are not positive
// integers are ignored.
type pageRequest struct {
	limit    int
	page     int
	size     int
	paginate bool
}

func parsePage(q url.Values, defaultSize int) pageRequest {
	req := pageRequest{page: 1, size: defaultSize}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		req.limit = n
		req.size = n
		req.paginate = true
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		req.page = n
		req.paginate = true
	}
	return req
}

func (p pageRequest) window() storage.Page {
	if !p.paginate {
		return storage.Page{}
	}
	return storage.Page{Limit: p.size, Offset: (p.page - 1) * p.size}
}

func (p pageRequest) result(total, returned int) pagination {
	limit := p.limit
	if limit == 0 {
		limit = returned
	}
	return pagination{
		Total: total,
		Pages: (total + p.size - 1) / p.size,
		Page:  p.page,
		Limit: limit,
	}
}

// flag reports whether the query parameter is the literal "true".
func flag(q url.Values, name string) bool {
	return q.Get(name) == "true"
}
