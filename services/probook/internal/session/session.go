package session

import (
	"context"
	"net/http"
	"time"

	"github.com/ramo2594/probook/libs/auth"
	"github.com/ramo2594/probook/services/probook/internal/model"
)

const (
	CookieName = "probook_session"
	LoginPath  = "/accounts/login/"
)

// Manager issues and reads signed session cookies.
type Manager struct {
	secret string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: secret, ttl: ttl, secure: secure, now: time.Now}
}

// Login writes a session cookie for u.
func (m *Manager) Login(w http.ResponseWriter, u model.User) error {
	role := ""
	if u.IsProfessional {
		role = "professional"
	}
	now := m.now()
	token, err := auth.SignHS256(auth.NewClaims(u.ID, u.Username, role, now, m.ttl), m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Identity is the signed-in user as carried by the session cookie.
type Identity struct {
	UserID   int64
	Username string
}

// Read returns the identity in r's session cookie, if it is present and valid.
func (m *Manager) Read(r *http.Request) (Identity, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Identity{}, false
	}
	claims, err := auth.ParseAndVerifyHS256(c.Value, m.secret)
	if err != nil {
		return Identity{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		return Identity{}, false
	}
	return Identity{UserID: id, Username: claims.Username}, true
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Current returns the identity placed on the context by RequireLogin, or reads the cookie.
func (m *Manager) Current(r *http.Request) (Identity, bool) {
	if id, ok := FromContext(r.Context()); ok {
		return id, true
	}
	return m.Read(r)
}

// RequireLogin redirects anonymous requests to the login page.
func (m *Manager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.Current(r)
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
