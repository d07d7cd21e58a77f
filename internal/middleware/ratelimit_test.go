package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/hearth/internal/auth"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(5)

	for i := 0; i < 5; i++ {
		if ok, _ := rl.Allow("key"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, wait := rl.Allow("key")
	if ok {
		t.Fatal("6th request should be denied")
	}
	if wait <= 0 || wait > 12*time.Second {
		t.Errorf("wait = %v, want about 12s", wait)
	}

	if ok, _ := rl.Allow("other"); !ok {
		t.Error("other keys have their own budget")
	}
}

func TestRateLimiterDeniedRequestsDoNotConsume(t *testing.T) {
	rl := NewRateLimiter(60)
	for i := 0; i < 60; i++ {
		rl.Allow("key")
	}
	for i := 0; i < 10; i++ {
		rl.Allow("key")
	}

	time.Sleep(1100 * time.Millisecond)
	if ok, _ := rl.Allow("key"); !ok {
		t.Error("a token should have been refilled after one second")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5)

	rl.Allow("idle")
	time.Sleep(15 * time.Millisecond)
	rl.Allow("active")

	rl.Cleanup(10 * time.Millisecond)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["idle"]; ok {
		t.Error("idle entry should have been cleaned up")
	}
	if _, ok := rl.entries["active"]; !ok {
		t.Error("active entry should still exist")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2)

	handler := RateLimit(rl, HouseholdKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(householdID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/meal-plans", nil)
		req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{HouseholdID: householdID}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := request(1); rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := request(1)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	if rec := request(2); rec.Code != http.StatusOK {
		t.Errorf("other household: status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHouseholdKeyFallsBackToIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:4321"
	if got := HouseholdKey(req); got != "ip:192.0.2.7" {
		t.Errorf("HouseholdKey = %q, want %q", got, "ip:192.0.2.7")
	}

	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{HouseholdID: 12}))
	if got := HouseholdKey(req); got != "household:12" {
		t.Errorf("HouseholdKey = %q, want %q", got, "household:12")
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"cloudflare", map[string]string{"CF-Connecting-IP": "203.0.113.1", "X-Forwarded-For": "10.0.0.1"}, "10.0.0.2:80", "203.0.113.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.5"},
		{"remote addr", nil, "198.51.100.4:5555", "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := RealIP(req); got != tt.want {
				t.Errorf("RealIP = %q, want %q", got, tt.want)
			}
		})
	}
}
