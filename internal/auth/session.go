package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"portfolio/internal/models"
)

const (
	CookieName = "admin_session"
	SessionTTL = 7 * 24 * time.Hour
)

var (
	errMalformedToken = errors.New("malformed session token")
	errEmptyAdminID   = errors.New("session token has no admin id")
	errBadTimestamp   = errors.New("session token timestamp is not an integer")
)

// Session check outcomes, reported to the Observer.
const (
	SessionValid     = "valid"
	SessionAbsent    = "absent"
	SessionMalformed = "malformed"
	SessionExpired   = "expired"
	SessionOrphaned  = "orphaned"
	SessionError     = "error"
)

// IdentityFinder resolves the admin a session token points at.
type IdentityFinder interface {
	FindAdminByID(ctx context.Context, id string) (*models.AdminIdentity, error)
}

// NewToken formats the session token for adminID issued at t.
func NewToken(adminID string, issuedAt time.Time) string {
	return adminID + "-" + strconv.FormatInt(issuedAt.UnixMilli(), 10)
}

// ParseToken splits a token into its admin id and issue time in epoch milliseconds.
func ParseToken(token string) (string, int64, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return "", 0, errMalformedToken
	}
	if parts[0] == "" {
		return "", 0, errEmptyAdminID
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, errBadTimestamp
	}
	return parts[0], ts, nil
}

type Sessions struct {
	admins   IdentityFinder
	jar      CookieJar
	now      func() time.Time
	log      zerolog.Logger
	observer Observer
}

type SessionOption func(*Sessions)

func WithClock(now func() time.Time) SessionOption {
	return func(s *Sessions) { s.now = now }
}

func WithSessionLogger(logger zerolog.Logger) SessionOption {
	return func(s *Sessions) { s.log = logger }
}

func WithSessionObserver(observer Observer) SessionOption {
	return func(s *Sessions) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func NewSessions(admins IdentityFinder, jar CookieJar, opts ...SessionOption) *Sessions {
	s := &Sessions{
		admins:   admins,
		jar:      jar,
		now:      time.Now,
		log:      zerolog.Nop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new session for adminID and writes its cookie.
func (s *Sessions) Create(w http.ResponseWriter, r *http.Request, adminID string) (string, error) {
	if adminID == "" {
		return "", errEmptyAdminID
	}
	now := s.now()
	token := NewToken(adminID, now)
	if err := s.jar.Write(w, r, token, now.Add(SessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	return s.jar.Clear(w, r)
}

// claim validates the token's shape and age. outcome is SessionValid on success.
func (s *Sessions) claim(r *http.Request) (adminID string, outcome string) {
	token, ok := s.jar.Read(r)
	if !ok {
		return "", SessionAbsent
	}
	id, ts, err := ParseToken(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("rejecting session cookie")
		return "", SessionMalformed
	}
	if s.now().UnixMilli() > ts+SessionTTL.Milliseconds() {
		s.log.Debug().Str("admin_id", id).Msg("session expired")
		return "", SessionExpired
	}
	return id, SessionValid
}

// Verify resolves the current admin from the session cookie. Rejected cookies
// are cleared and reported as (nil, nil). A store failure is returned as is
// and leaves the cookie in place.
func (s *Sessions) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.AdminIdentity, error) {
	id, outcome := s.claim(r)
	if outcome == SessionAbsent {
		s.observer.SessionCheck(outcome)
		return nil, nil
	}
	if outcome != SessionValid {
		s.observer.SessionCheck(outcome)
		return nil, s.jar.Clear(w, r)
	}

	admin, err := s.admins.FindAdminByID(ctx, id)
	if err != nil {
		s.observer.SessionCheck(SessionError)
		s.log.Error().Err(err).Str("admin_id", id).Msg("failed to look up session admin")
		return nil, err
	}
	if admin == nil {
		s.observer.SessionCheck(SessionOrphaned)
		s.log.Debug().Str("admin_id", id).Msg("session admin no longer exists")
		return nil, s.jar.Clear(w, r)
	}

	s.observer.SessionCheck(SessionValid)
	return admin, nil
}

// AdminID returns the admin id carried by a well-formed, unexpired cookie
// without consulting the store. Only expiry clears the cookie. It suits
// handlers that need the caller's id for logging or rate keys and can
// tolerate an admin deleted since login; anything that acts on the admin's
// behalf must use Verify.
func (s *Sessions) AdminID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, outcome := s.claim(r)
	switch outcome {
	case SessionValid:
		return id, true
	case SessionExpired:
		if err := s.jar.Clear(w, r); err != nil {
			s.log.Error().Err(err).Msg("failed to clear expired session")
		}
	}
	return "", false
}
