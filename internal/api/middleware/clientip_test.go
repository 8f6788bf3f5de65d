package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP_ProxyHeaderPriority(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:4321"
	req.Header.Set("CF-Connecting-IP", "203.0.113.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.2")

	if got := ClientIP(req); got != "203.0.113.1" {
		t.Fatalf("expected CF-Connecting-IP to win, got %s", got)
	}
}

func TestClientIP_FirstForwardedEntry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1, 172.16.0.1")

	if got := ClientIP(req); got != "203.0.113.5" {
		t.Fatalf("expected first entry, got %s", got)
	}
}

func TestClientIP_RejectsPrivateAndInvalid(t *testing.T) {
	cases := []string{"10.1.2.3", "192.168.0.7", "127.0.0.1", "169.254.1.1", "not-an-ip", "0.0.0.0"}
	for _, bad := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.9:4321"
		req.Header.Set("X-Forwarded-For", bad)

		if got := ClientIP(req); got != "198.51.100.9" {
			t.Fatalf("header %q: expected fallback to remote addr, got %s", bad, got)
		}
	}
}

func TestClientIP_Unknown(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ""

	if got := ClientIP(req); got != "unknown" {
		t.Fatalf("expected unknown, got %s", got)
	}
}
