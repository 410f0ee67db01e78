package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/auth"
	"portfolio/internal/httpjson"
	"portfolio/internal/models"
	"portfolio/internal/storage"
)

type photoRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	AltText      *string `json:"altText"`
	Category     *string `json:"category"`
	Tags         *string `json:"tags"`
	DisplayOrder *int    `json:"displayOrder"`
	Featured     *bool   `json:"featured"`
	UploadedByID *string `json:"uploadedById"`
}

func (s *Server) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.PhotoFilter{
		Category:     q.Get("category"),
		FeaturedOnly: flag(q, "featured"),
	}
	page := parsePage(q, defaultPhotoPageSize)

	photos, err := s.db.ListPhotos(r.Context(), filter, page.window())
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching photos")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch photos")
		return
	}
	total, err := s.db.CountPhotos(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("Error counting photos")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch photos")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"photos":     photos,
		"pagination": page.result(total, len(photos)),
	})
}

func (s *Server) HandleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if str(req.Title) == "" || str(req.ImageURL) == "" {
		httpjson.Error(w, http.StatusBadRequest, "Title and image URL are required")
		return
	}

	uploader := str(req.UploadedByID)
	if uploader == "" {
		uploader = auth.AdminFromContext(r.Context()).ID
	}
	order := 0
	if req.DisplayOrder != nil {
		order = *req.DisplayOrder
	}
	photo, err := s.db.CreatePhoto(r.Context(), &models.Photo{
		Title:        str(req.Title),
		Description:  str(req.Description),
		ImageURL:     str(req.ImageURL),
		ThumbnailURL: str(req.ThumbnailURL),
		AltText:      str(req.AltText),
		Category:     str(req.Category),
		Tags:         str(req.Tags),
		DisplayOrder: order,
		Featured:     boolean(req.Featured),
		UploadedByID: uploader,
	})
	switch {
	case errors.Is(err, storage.ErrInvalidReference):
		httpjson.Error(w, http.StatusBadRequest, "Uploader not found")
	case err != nil:
		s.log.Error().Err(err).Msg("Error creating photo")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create photo")
	default:
		httpjson.Write(w, http.StatusCreated, photo)
	}
}

func (s *Server) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := s.db.GetPhoto(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching photo")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch photo")
		return
	}
	if photo == nil {
		httpjson.Error(w, http.StatusNotFound, "Photo not found")
		return
	}
	httpjson.Write(w, http.StatusOK, photo)
}

func (s *Server) HandleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if (req.Title != nil && *req.Title == "") || (req.ImageURL != nil && *req.ImageURL == "") {
		httpjson.Error(w, http.StatusBadRequest, "Title and image URL cannot be empty")
		return
	}

	photo, err := s.db.UpdatePhoto(r.Context(), chi.URLParam(r, "id"), storage.PhotoUpdate{
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ThumbnailURL: req.ThumbnailURL,
		AltText:      req.AltText,
		Category:     req.Category,
		Tags:         req.Tags,
		DisplayOrder: req.DisplayOrder,
		Featured:     req.Featured,
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Photo not found")
	case err != nil:
		s.log.Error().Err(err).Msg("Error updating photo")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update photo")
	default:
		httpjson.Write(w, http.StatusOK, photo)
	}
}

func (s *Server) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeletePhoto(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Photo not found")
	case err != nil:
		s.log.Error().Err(err).Msg("Error deleting photo")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete photo")
	default:
		httpjson.Write(w, http.StatusOK, map[string]string{"message": "Photo deleted successfully"})
	}
}
