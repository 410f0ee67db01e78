package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"portfolio/internal/models"
	"portfolio/internal/storage"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("required fields are missing")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrAdminNotFound      = errors.New("admin not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("admin with this email already exists")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login attempt outcomes, reported to the Observer.
const (
	LoginSuccess  = "success"
	LoginMigrated = "migrated"
	LoginInvalid  = "invalid"
	LoginMissing  = "missing"
	LoginError    = "error"
)

// Observer receives auth outcomes, typically for metrics.
type Observer interface {
	LoginAttempt(outcome string)
	SessionCheck(outcome string)
}

type nopObserver struct{}

func (nopObserver) LoginAttempt(string) {}
func (nopObserver) SessionCheck(string) {}

// AdminStore is the admin collection the Service works against.
type AdminStore interface {
	IdentityFinder
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, email, name, password string) (*models.Admin, error)
	UpdateAdminPassword(ctx context.Context, id, password string) error
	CountAdmins(ctx context.Context) (int, error)
	ListAdmins(ctx context.Context) ([]*models.Admin, error)
}

type Service struct {
	admins   AdminStore
	log      zerolog.Logger
	observer Observer
}

func NewService(admins AdminStore, logger zerolog.Logger, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{admins: admins, log: logger, observer: observer}
}

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type LoginResult struct {
	Admin *models.AdminIdentity
	// Migrated is set when the stored default password was replaced by a hash.
	Migrated bool
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		s.observer.LoginAttempt(LoginMissing)
		return nil, ErrMissingCredentials
	}

	admin, err := s.admins.FindAdminByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.observer.LoginAttempt(LoginError)
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if admin == nil {
		s.observer.LoginAttempt(LoginInvalid)
		return nil, ErrInvalidCredentials
	}

	cred := ParseCredential(admin.Password)
	if !cred.Matches(password) {
		s.observer.LoginAttempt(LoginInvalid)
		s.log.Debug().Str("admin_id", admin.ID).Stringer("credential", cred.Kind).Msg("password rejected")
		return nil, ErrInvalidCredentials
	}

	result := &LoginResult{Admin: admin.Identity()}
	if cred.Kind == CredentialLegacy {
		hash, err := HashPassword(password)
		if err != nil {
			s.observer.LoginAttempt(LoginError)
			return nil, fmt.Errorf("failed to hash default password: %w", err)
		}
		if err := s.admins.UpdateAdminPassword(ctx, admin.ID, hash); err != nil {
			s.observer.LoginAttempt(LoginError)
			return nil, fmt.Errorf("failed to store migrated password: %w", err)
		}
		s.log.Info().Str("admin_id", admin.ID).Msg("default password migrated to hash")
		result.Migrated = true
		s.observer.LoginAttempt(LoginMigrated)
		return result, nil
	}

	s.observer.LoginAttempt(LoginSuccess)
	return result, nil
}

func (s *Service) ChangePassword(ctx context.Context, adminID, current, next string) error {
	if current == "" || next == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	admin, err := s.admins.GetAdmin(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return ErrAdminNotFound
	}
	if !ParseCredential(admin.Password).Matches(current) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.admins.UpdateAdminPassword(ctx, adminID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAdminNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.log.Info().Str("admin_id", adminID).Msg("password updated")
	return nil
}

func (s *Service) CreateAdmin(ctx context.Context, email, name, password string) (*models.Admin, error) {
	if email == "" || name == "" || password == "" {
		return nil, ErrMissingFields
	}
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.admins.FindAdminByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin, err := s.admins.CreateAdmin(ctx, email, strings.TrimSpace(name), hash)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	s.log.Info().Str("admin_id", admin.ID).Str("email", admin.Email).Msg("admin created")
	return admin, nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	return s.admins.ListAdmins(ctx)
}

// Bootstrap seeds the first admin with DefaultPassword stored unhashed, so the
// first login goes through the migration path. It does nothing once any admin
// exists or when email is empty.
func (s *Service) Bootstrap(ctx context.Context, email, name string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	count, err := s.admins.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if !emailPattern.MatchString(email) {
		return false, ErrInvalidEmail
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Admin"
	}
	admin, err := s.admins.CreateAdmin(ctx, email, name, DefaultPassword)
	if err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.log.Warn().Str("admin_id", admin.ID).Str("email", admin.Email).Msg("bootstrap admin created with the default password; log in to replace it")
	return true, nil
}
