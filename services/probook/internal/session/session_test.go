package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ramo2594/probook/services/probook/internal/model"
)

func TestLoginCookieRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour, true)
	rec := httptest.NewRecorder()
	if err := m.Login(rec, model.User{ID: 7, Username: "salon", IsProfessional: true}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("unexpected cookie attributes %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/me/", nil)
	req.AddCookie(c)
	id, ok := m.Read(req)
	if !ok || id.UserID != 7 || id.Username != "salon" {
		t.Fatalf("unexpected identity %+v ok=%v", id, ok)
	}

	other := NewManager("other-secret", time.Hour, false)
	if _, ok := other.Read(req); ok {
		t.Fatal("cookie signed with another secret must be rejected")
	}
}

func TestExpiredSession(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	rec := httptest.NewRecorder()
	_ = m.Login(rec, model.User{ID: 1, Username: "a"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	if _, ok := m.Read(req); ok {
		t.Fatal("expired session must be rejected")
	}
}

func TestRequireLogin(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	var seen Identity
	h := m.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/history/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	login := httptest.NewRecorder()
	_ = m.Login(login, model.User{ID: 3, Username: "b"})
	req := httptest.NewRequest(http.MethodGet, "/dashboard/history/", nil)
	req.AddCookie(login.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen.UserID != 3 {
		t.Fatalf("expected pass-through with identity, got %d %+v", rec.Code, seen)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	rec := httptest.NewRecorder()
	m.Logout(rec)
	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("unexpected logout cookie %+v", c)
	}
}
