package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"portfolio/internal/auth"
	"portfolio/internal/httpjson"
	"portfolio/internal/models"
)

const msgUnauthorized = "Unauthorized. Please login first."

type Server struct {
	service  *auth.Service
	sessions *auth.Sessions
	log      zerolog.Logger
}

func NewServer(service *auth.Service, sessions *auth.Sessions, logger zerolog.Logger) *Server {
	return &Server{
		service:  service,
		sessions: sessions,
		log:      logger.With().Str("component", "admin").Logger(),
	}
}

// Routes mounts the admin endpoints, relative to /api/admin.
func (s *Server) Routes(r chi.Router) {
	r.Post("/login", s.HandleLogin)
	r.Post("/logout", s.HandleLogout)
	r.Get("/me", s.HandleMe)
	r.Post("/update-password", s.HandleUpdatePassword)
	r.Post("/create", s.HandleCreateAdmin)
	r.Get("/create", s.HandleListAdmins)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Admin   *models.AdminIdentity `json:"admin"`
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := s.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		httpjson.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	case err != nil:
		s.log.Error().Err(err).Msg("Error during login")
		httpjson.Error(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	if !result.Migrated {
		if err := s.sessions.Clear(w, r); err != nil {
			s.log.Error().Err(err).Msg("Error clearing previous session")
		}
	}
	if _, err := s.sessions.Create(w, r, result.Admin.ID); err != nil {
		s.log.Error().Err(err).Str("admin_id", result.Admin.ID).Msg("Error creating session")
		httpjson.Error(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	s.log.Info().Str("admin_id", result.Admin.ID).Bool("migrated", result.Migrated).Msg("admin logged in")
	httpjson.Write(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		Admin:   result.Admin,
	})
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(w, r); err != nil {
		s.log.Error().Err(err).Msg("Error during logout")
		httpjson.Error(w, http.StatusInternalServerError, "Logout failed. Please try again.")
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

func (s *Server) HandleMe(w http.ResponseWriter, r *http.Request) {
	admin, err := s.sessions.Verify(r.Context(), w, r)
	if err != nil {
		s.log.Error().Err(err).Msg("Error in /api/admin/me")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch admin data")
		return
	}
	if admin == nil {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"success": true, "admin": admin})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	admin, ok := s.requireAdmin(w, r, "Failed to update password")
	if !ok {
		return
	}

	var req updatePasswordRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	err := s.service.ChangePassword(r.Context(), admin.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		httpjson.Error(w, http.StatusBadRequest, "Current password and new password are required")
	case errors.Is(err, auth.ErrPasswordTooShort):
		httpjson.Error(w, http.StatusBadRequest, "New password must be at least 8 characters long")
	case errors.Is(err, auth.ErrAdminNotFound):
		httpjson.Error(w, http.StatusNotFound, "Admin not found")
	case errors.Is(err, auth.ErrWrongPassword):
		httpjson.Error(w, http.StatusUnauthorized, "Current password is incorrect")
	case err != nil:
		s.log.Error().Err(err).Str("admin_id", admin.ID).Msg("Error updating password")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update password")
	default:
		httpjson.Write(w, http.StatusOK, messageResponse{Success: true, Message: "Password updated successfully"})
	}
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type createdAdmin struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r, "Failed to create admin user"); !ok {
		return
	}

	var req createAdminRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Email, name, and password are required")
		return
	}

	created, err := s.service.CreateAdmin(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		httpjson.Error(w, http.StatusBadRequest, "Email, name, and password are required")
	case errors.Is(err, auth.ErrInvalidEmail):
		httpjson.Error(w, http.StatusBadRequest, "Invalid email format")
	case errors.Is(err, auth.ErrPasswordTooShort):
		httpjson.Error(w, http.StatusBadRequest, "Password must be at least 8 characters long")
	case errors.Is(err, auth.ErrEmailTaken):
		httpjson.Error(w, http.StatusConflict, "An admin with this email already exists")
	case err != nil:
		s.log.Error().Err(err).Msg("Error creating admin")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create admin user")
	default:
		httpjson.Write(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Admin user created successfully",
			"admin": createdAdmin{
				ID:        created.ID,
				Email:     created.Email,
				Name:      created.Name,
				CreatedAt: created.CreatedAt,
			},
		})
	}
}

func (s *Server) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r, "Failed to fetch admins"); !ok {
		return
	}

	admins, err := s.service.ListAdmins(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching admins")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch admins")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"success": true, "admins": admins})
}

// requireAdmin verifies the session and writes the 401 or 500 response itself.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request, failure string) (*models.AdminIdentity, bool) {
	admin, err := s.sessions.Verify(r.Context(), w, r)
	if err != nil {
		s.log.Error().Err(err).Msg("Error checking admin session")
		httpjson.Error(w, http.StatusInternalServerError, failure)
		return nil, false
	}
	if admin == nil {
		httpjson.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return nil, false
	}
	return admin, true
}
