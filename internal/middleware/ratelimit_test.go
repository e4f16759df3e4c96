package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_UnlimitedGeneral(t *testing.T) {
	mw := NewRateLimitMiddleware(0, 1)
	handler := mw.Handler(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_LimitedCredentialPaths(t *testing.T) {
	for _, path := range []string{"/login", "/register", "/forgot_password", "/reset_password", "/change_password"} {
		t.Run(path, func(t *testing.T) {
			mw := NewRateLimitMiddleware(0, 1)
			handler := mw.Handler(okHandler())

			// Burst of 1: the first call spends the only token.
			first := httptest.NewRecorder()
			handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, path, nil))
			assert.Equal(t, http.StatusOK, first.Code)

			second := httptest.NewRecorder()
			handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, path, nil))
			require.Equal(t, http.StatusTooManyRequests, second.Code)
			assert.Equal(t, "60", second.Header().Get("Retry-After"))
			assert.JSONEq(t, `{"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`, second.Body.String())
		})
	}
}

func TestRateLimitMiddleware_ClientsAreIndependent(t *testing.T) {
	mw := NewRateLimitMiddleware(0, 1)
	handler := mw.Handler(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 192.168.1.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

func TestRateLimitMiddleware_GeneralLimit(t *testing.T) {
	mw := NewRateLimitMiddleware(2, 10)
	handler := mw.Handler(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/1", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_Configuration(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0)
	assert.Equal(t, -1, mw.generalRPM)
	assert.Equal(t, 10, mw.authRPM)
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	assert.Equal(t, "203.0.113.9", extractClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", extractClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", extractClientIP(req))
}
