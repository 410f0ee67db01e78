package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	admins  map[string]*models.Admin
	nextID  int
	err     error
	updates int
}

func newMemStore() *memStore {
	return &memStore{admins: make(map[string]*models.Admin)}
}

func (m *memStore) add(email, name, password string) *models.Admin {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	admin := &models.Admin{
		ID:        "admin" + strconv.Itoa(m.nextID),
		Email:     email,
		Name:      name,
		Password:  password,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.admins[admin.ID] = admin
	return admin
}

func (m *memStore) password(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[id].Password
}

func (m *memStore) FindAdminByID(ctx context.Context, id string) (*models.AdminIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	admin, ok := m.admins[id]
	if !ok {
		return nil, nil
	}
	return admin.Identity(), nil
}

func (m *memStore) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, admin := range m.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	admin, ok := m.admins[id]
	if !ok {
		return nil, nil
	}
	copied := *admin
	return &copied, nil
}

func (m *memStore) CreateAdmin(ctx context.Context, email, name, password string) (*models.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	if existing, _ := m.FindAdminByEmail(ctx, email); existing != nil {
		return nil, storage.ErrDuplicate
	}
	return m.add(email, name, password), nil
}

func (m *memStore) UpdateAdminPassword(ctx context.Context, id, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	admin, ok := m.admins[id]
	if !ok {
		return storage.ErrNotFound
	}
	admin.Password = password
	m.updates++
	return nil
}

func (m *memStore) CountAdmins(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.admins), nil
}

func (m *memStore) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	admins := []*models.Admin{}
	for _, admin := range m.admins {
		admins = append(admins, admin)
	}
	return admins, nil
}

type countingObserver struct {
	mu     sync.Mutex
	logins map[string]int
	checks map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{logins: map[string]int{}, checks: map[string]int{}}
}

func (o *countingObserver) LoginAttempt(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logins[outcome]++
}

func (o *countingObserver) SessionCheck(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checks[outcome]++
}

// fixedClock returns a clock that can be moved forward.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func requestWithCookie(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			if found != nil {
				t.Fatalf("more than one %s cookie written", CookieName)
			}
			found = c
		}
	}
	return found
}

func assertCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	c := sessionCookie(t, rec)
	if c == nil {
		t.Fatal("expected session cookie to be cleared, got no Set-Cookie")
	}
	if c.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: max-age=%d", c.MaxAge)
	}
}
