package api

import (
	"errors"
	"net/http"
	"strings"

	"portfolio/internal/auth"
	"portfolio/internal/httpjson"
	"portfolio/internal/models"
	"portfolio/internal/storage"
)

type galleryRequest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	CoverImage  string   `json:"coverImage"`
	Order       int      `json:"order"`
	Published   bool     `json:"published"`
	PhotoIDs    []string `json:"photoIds"`
}

func (s *Server) HandleListGalleries(w http.ResponseWriter, r *http.Request) {
	publishedOnly := flag(r.URL.Query(), "published") || auth.AdminFromContext(r.Context()) == nil

	galleries, err := s.db.ListGalleries(r.Context(), publishedOnly)
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching galleries")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch galleries")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"galleries": galleries})
}

func (s *Server) HandleCreateGallery(w http.ResponseWriter, r *http.Request) {
	var req galleryRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		httpjson.Error(w, http.StatusBadRequest, "Name and slug are required")
		return
	}

	gallery, err := s.db.CreateGallery(r.Context(), &models.Gallery{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Order:       req.Order,
		Published:   req.Published,
	}, req.PhotoIDs)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		httpjson.Error(w, http.StatusConflict, "A gallery with this slug already exists")
	case errors.Is(err, storage.ErrInvalidReference):
		httpjson.Error(w, http.StatusBadRequest, "One or more photos do not exist")
	case err != nil:
		s.log.Error().Err(err).Msg("Error creating gallery")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create gallery")
	default:
		httpjson.Write(w, http.StatusCreated, gallery)
	}
}
