package auth

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

// CookieJar reads and writes the session cookie for a single request.
type CookieJar interface {
	// Read returns the raw token. ok is false only when no cookie was sent;
	// a cookie that cannot be decoded is reported as ("", true).
	Read(r *http.Request) (token string, ok bool)
	Write(w http.ResponseWriter, r *http.Request, token string, expires time.Time) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// PlainCookieJar stores the token as the cookie value.
type PlainCookieJar struct {
	Secure bool
}

func (j PlainCookieJar) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (j PlainCookieJar) Write(w http.ResponseWriter, r *http.Request, token string, expires time.Time) error {
	dropSetCookie(w.Header(), CookieName)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (j PlainCookieJar) Clear(w http.ResponseWriter, r *http.Request) error {
	dropSetCookie(w.Header(), CookieName)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

const storeTokenKey = "token"

// StoreCookieJar keeps the token inside a signed and encrypted gorilla session.
type StoreCookieJar struct {
	store *sessions.CookieStore
}

func NewStoreCookieJar(secret []byte, secure bool) *StoreCookieJar {
	hashKey := sha256.Sum256(append([]byte("auth:"), secret...))
	blockKey := sha256.Sum256(append([]byte("enc:"), secret...))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.MaxAge(int(SessionTTL.Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode

	return &StoreCookieJar{store: store}
}

func (j *StoreCookieJar) Read(r *http.Request) (string, bool) {
	if _, err := r.Cookie(CookieName); err != nil {
		return "", false
	}
	session, err := j.store.Get(r, CookieName)
	if err != nil {
		return "", true
	}
	token, _ := session.Values[storeTokenKey].(string)
	return token, true
}

func (j *StoreCookieJar) Write(w http.ResponseWriter, r *http.Request, token string, expires time.Time) error {
	session, _ := j.store.Get(r, CookieName)
	opts := *j.store.Options
	session.Options = &opts
	session.Values = map[interface{}]interface{}{storeTokenKey: token}

	dropSetCookie(w.Header(), CookieName)
	return session.Save(r, w)
}

func (j *StoreCookieJar) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := j.store.Get(r, CookieName)
	opts := *j.store.Options
	opts.MaxAge = -1
	session.Options = &opts
	session.Values = make(map[interface{}]interface{})

	dropSetCookie(w.Header(), CookieName)
	return session.Save(r, w)
}

// dropSetCookie removes Set-Cookie headers already queued for name.
func dropSetCookie(h http.Header, name string) {
	lines := h.Values("Set-Cookie")
	if len(lines) == 0 {
		return
	}
	kept := lines[:0:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, name+"=") {
			kept = append(kept, line)
		}
	}
	h.Del("Set-Cookie")
	for _, line := range kept {
		h.Add("Set-Cookie", line)
	}
}
