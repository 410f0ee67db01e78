package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/auth"
	"portfolio/internal/httpjson"
	"portfolio/internal/storage"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *Server) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		httpjson.Error(w, http.StatusBadRequest, "All fields are required")
		return
	}
	email := strings.TrimSpace(req.Email)
	if !auth.ValidEmail(email) {
		httpjson.Error(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	contact, err := s.db.CreateContact(r.Context(), req.Name, email, req.Subject, req.Message)
	if err != nil {
		s.log.Error().Err(err).Msg("Error submitting contact form")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to submit contact form")
		return
	}
	httpjson.Write(w, http.StatusCreated, map[string]string{
		"message": "Contact form submitted successfully",
		"id":      contact.ID,
	})
}

func (s *Server) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.db.ListContacts(r.Context(), flag(r.URL.Query(), "unread"))
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching contacts")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch contacts")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"contacts": contacts})
}

type contactUpdateRequest struct {
	Read *bool `json:"read"`
}

func (s *Server) HandleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contactUpdateRequest
	if err := httpjson.Decode(w, r, &req); err != nil || req.Read == nil {
		httpjson.Error(w, http.StatusBadRequest, "Read flag is required")
		return
	}

	contact, err := s.db.SetContactRead(r.Context(), chi.URLParam(r, "id"), *req.Read)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Contact not found")
	case err != nil:
		s.log.Error().Err(err).Msg("Error updating contact")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update contact")
	default:
		httpjson.Write(w, http.StatusOK, contact)
	}
}
