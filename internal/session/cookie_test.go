package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookiePersistAndRead(t *testing.T) {
	store := NewCookieStore(true)

	w := httptest.NewRecorder()
	expires := time.Now().Add(time.Hour)
	store.Persist(w, "tok-123", expires)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok-123" {
		t.Errorf("cookie = %s=%s, want %s=tok-123", c.Name, c.Value, CookieName)
	}
	if !c.HttpOnly || !c.Secure || c.Path != "/" {
		t.Errorf("cookie attributes = httpOnly=%v secure=%v path=%q", c.HttpOnly, c.Secure, c.Path)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got, ok := store.Read(req)
	if !ok || got != "tok-123" {
		t.Errorf("Read() = (%q, %v), want (tok-123, true)", got, ok)
	}
}

func TestCookieReadAbsent(t *testing.T) {
	store := NewCookieStore(false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := store.Read(req); ok {
		t.Error("Read() without cookie should report absent")
	}
}

func TestCookieClear(t *testing.T) {
	store := NewCookieStore(false)
	w := httptest.NewRecorder()
	store.Clear(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Value != "" {
		t.Errorf("cleared cookie value = %q, want empty", c.Value)
	}
	if c.MaxAge >= 0 && c.Expires.After(time.Now()) {
		t.Error("cleared cookie should be expired immediately")
	}
}

func TestInsecureStoreOmitsSecure(t *testing.T) {
	store := NewCookieStore(false)
	w := httptest.NewRecorder()
	store.Persist(w, "tok", time.Now().Add(time.Hour))
	if w.Result().Cookies()[0].Secure {
		t.Error("development cookie should not be Secure")
	}
}
