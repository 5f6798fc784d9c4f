package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsAdminTrue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") != "boss@example.com" {
			t.Errorf("unexpected email param: %s", r.URL.Query().Get("email"))
		}
		w.Write([]byte(`{"admin": true}`))
	}))
	defer srv.Close()

	r := NewAdminResolver(srv.URL, 0)
	if !r.IsAdmin(context.Background(), "boss@example.com") {
		t.Error("Expected admin resolution to succeed")
	}
}

func TestIsAdminFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"admin": false}`))
	}))
	defer srv.Close()

	r := NewAdminResolver(srv.URL, 0)
	if r.IsAdmin(context.Background(), "user@example.com") {
		t.Error("Expected non-admin")
	}
}

func TestIsAdminFailsClosedOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"admin": true}`))
	}))
	defer srv.Close()

	r := NewAdminResolver(srv.URL, 20*time.Millisecond)
	if r.IsAdmin(context.Background(), "boss@example.com") {
		t.Error("Timeout must resolve to non-admin")
	}
}

func TestIsAdminFailsClosedOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewAdminResolver(srv.URL, 0)
	if r.IsAdmin(context.Background(), "boss@example.com") {
		t.Error("Server error must resolve to non-admin")
	}
}

func TestIsAdminFailsClosedOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	r := NewAdminResolver(srv.URL, 0)
	if r.IsAdmin(context.Background(), "boss@example.com") {
		t.Error("Unreadable response must resolve to non-admin")
	}
}

func TestIsAdminDisabled(t *testing.T) {
	r := NewAdminResolver("", 0)
	if r.IsAdmin(context.Background(), "boss@example.com") {
		t.Error("Empty base URL must resolve to non-admin")
	}
}

func TestSanitizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"not-an-email", ""},
		{"a b@example.com", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeEmail(tc.in); got != tc.want {
			t.Errorf("sanitizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
