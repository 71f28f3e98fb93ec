package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeLimiterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *fakeLimiterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestWriteRateLimit_PerIP(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewWriteRateLimitPolicy("decision", time.Minute, 2, 0)
	handler := WriteRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/decision", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/decision", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// a different address has its own budget
	other := httptest.NewRequest(http.MethodPost, "/decision", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("other ip status = %d", rec.Code)
	}
}

func TestWriteRateLimit_PerUser(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewWriteRateLimitPolicy("decision", time.Minute, 0, 1)
	handler := WriteRateLimit(policy, store, nil)(okHandler())

	serve := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/decision", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve("user-a"); code != http.StatusNoContent {
		t.Fatalf("first request status = %d", code)
	}
	if code := serve("user-a"); code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", code)
	}
	if code := serve("user-b"); code != http.StatusNoContent {
		t.Fatalf("other user status = %d", code)
	}
}

func TestWriteRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	policy := NewWriteRateLimitPolicy("decision", 0, 0, 0)
	handler := WriteRateLimit(policy, &fakeLimiterStore{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/decision", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWriteRateLimit_SkipsSafeMethods(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewWriteRateLimitPolicy("decision", time.Minute, 1, 0)
	handler := WriteRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("read request %d status = %d", i, rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("reads should not consume the budget, got %v", store.counts)
	}
}
