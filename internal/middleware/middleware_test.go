package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestResolveRateTier(t *testing.T) {
	strictPaths := []string{
		"/webhooks/payment",
		"/auth/admin/login",
		"/auth/admin/setup",
		"/orders/5/checkout",
	}
	for _, path := range strictPaths {
		req := httptest.NewRequest("POST", path, nil)
		limit, burst, tier := resolveRateTier(req)
		assert.Equal(t, limitStrict, limit, path)
		assert.Equal(t, burstStrict, burst, path)
		assert.Equal(t, "strict", tier, path)
	}

	req := httptest.NewRequest("GET", "/products", nil)
	limit, burst, tier := resolveRateTier(req)
	assert.Equal(t, limitGeneral, limit)
	assert.Equal(t, burstGeneral, burst)
	assert.Equal(t, "general", tier)
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(next)

	t.Run("AllowsWithinBurst", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		for i := 0; i < burstGeneral; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("BlocksBeyondBurst", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/admin/login", nil)
		req.RemoteAddr = "10.0.0.2:1234"

		var blocked bool
		for i := 0; i < burstStrict+1; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code == http.StatusTooManyRequests {
				blocked = true
			}
		}
		assert.True(t, blocked, "request past the burst should be throttled")
	})

	t.Run("CallersAreIndependent", func(t *testing.T) {
		// Exhaust one caller's strict budget, then verify a different IP is
		// still admitted.
		exhausted := httptest.NewRequest("POST", "/auth/admin/login", nil)
		exhausted.RemoteAddr = "10.0.0.3:1234"
		for i := 0; i < burstStrict+1; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), exhausted)
		}

		fresh := httptest.NewRequest("POST", "/auth/admin/login", nil)
		fresh.RemoteAddr = "10.0.0.4:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, fresh)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetVisitor(t *testing.T) {
	// Distinct keys get distinct limiters; the same key gets the same one.
	a := getVisitor(fmt.Sprintf("ip:%s:general", "10.9.9.1"), rate.Limit(10), 20)
	b := getVisitor(fmt.Sprintf("ip:%s:general", "10.9.9.2"), rate.Limit(10), 20)
	assert.NotSame(t, a, b)

	again := getVisitor(fmt.Sprintf("ip:%s:general", "10.9.9.1"), rate.Limit(10), 20)
	assert.Same(t, a, again)
}
