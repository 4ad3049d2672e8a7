package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)
	rl := NewRateLimiter(2, time.Minute, stop)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own bucket")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)
	rl := NewRateLimiter(1, time.Minute, stop)
	rl.Allow("1.2.3.4")

	rl.prune(time.Now().Add(3 * time.Minute))

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if len(rl.visitors) != 0 {
		t.Errorf("expected stale visitors to be pruned, have %d", len(rl.visitors))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:1234", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:1234", "10.0.0.3"},
		{"remote addr", nil, "1.1.1.1:1234", "1.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionCookies(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	c := CreateSessionCookie(r, "session_token", "abc", time.Now().Add(time.Hour))
	if !c.Secure || !c.HttpOnly || c.Value != "abc" {
		t.Errorf("unexpected session cookie %+v", c)
	}

	d := CreateDeleteCookie(httptest.NewRequest("GET", "/", nil), "session_token")
	if d.MaxAge != -1 || d.Secure {
		t.Errorf("unexpected delete cookie %+v", d)
	}
}
