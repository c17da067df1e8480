package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("expected generated request id, got %q", seen)
	}
	if got := rr.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
}

func TestMiddlewareHonorsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"printable id kept", "abc-123", true},
		{"spaces rejected", "abc 123", false},
		{"overlong rejected", strings.Repeat("x", maxIncomingIDLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(HeaderRequestID, tt.incoming)
			h.ServeHTTP(httptest.NewRecorder(), r)
			if (seen == tt.incoming) != tt.keep {
				t.Errorf("incoming %q: got id %q, keep=%v", tt.incoming, seen, tt.keep)
			}
		})
	}
}

func TestMiddlewareMetrics(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "203.0.113.7" })
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	calls := 0
	m.now = func() time.Time {
		calls++
		// start/end pairs 4ms apart
		return base.Add(time.Duration(calls/2) * 4 * time.Millisecond)
	}

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	for range 2 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 2 {
		t.Errorf("expected 2 requests, got %d", got.TotalRequests)
	}
	if got.AverageResponseTime != 4000 {
		t.Errorf("expected 4000us average, got %d", got.AverageResponseTime)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := RequestID(r); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
