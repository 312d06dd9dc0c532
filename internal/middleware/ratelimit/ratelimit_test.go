package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own budget")
	}

	*now = now.Add(61 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("a new window should reset the count")
	}
	if got := rl.GetMetrics(); got.TotalHits != 1 || got.ClientCount != 2 {
		t.Errorf("metrics = %+v, want 1 hit and 2 clients", got)
	}
}

func TestLimiter_RejectedRequestsDoNotExtendWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 1)

	rl.Allow("c")
	*now = now.Add(30 * time.Second)
	if rl.Allow("c") {
		t.Fatal("second request should be rejected")
	}
	if got := rl.RetryAfter("c"); got != 30 {
		t.Errorf("RetryAfter() = %d, want 30", got)
	}
	*now = now.Add(31 * time.Second)
	if !rl.Allow("c") {
		t.Fatal("window started by the first request should have expired")
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 5)
	rl.Allow("old")
	*now = now.Add(9 * time.Minute)
	rl.Allow("fresh")
	*now = now.Add(2 * time.Minute)

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("cleanupStaleEntries() = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/budget/analyze", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/budget/analyze", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
