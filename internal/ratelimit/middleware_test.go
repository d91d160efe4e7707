package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-warung/internal/ratelimit"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		remoteAddr string
		want       string
	}{
		{"203.0.113.7:51324", "203.0.113.7"},
		{"203.0.113.7", "203.0.113.7"},
		{"[2001:db8::1]:51324", "2001:db8::1"},
		{"2001:db8::1", "2001:db8::1"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.RemoteAddr = tc.remoteAddr
		if got := ratelimit.ClientIP(req); got != tc.want {
			t.Fatalf("ClientIP(%q): expected %q, got %q", tc.remoteAddr, tc.want, got)
		}
	}
}

func TestClientIPDistinguishesIPv6Clients(t *testing.T) {
	a := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	a.RemoteAddr = "2001:db8::1"
	b := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	b.RemoteAddr = "2001:db8::2"
	require.NotEqual(t, ratelimit.ClientIP(a), ratelimit.ClientIP(b))
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	limiter := newTestLimiter(t)
	handler := ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:    func(*http.Request) string { return "fixed" },
			Window: time.Minute,
			Max:    1,
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := handler.Middleware(next)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	require.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.NotEmpty(t, second.Header().Get("Retry-After"))
	require.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
}

func TestMiddlewareFailsOpenOnStoreError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	var reported error
	handler := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: client, Prefix: "rl:test:"},
		Config: ratelimit.Config{
			Key:    func(*http.Request) string { return "fixed" },
			Window: time.Minute,
			Max:    1,
		},
		OnError: func(err error) { reported = err },
	}

	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

	require.Equal(t, http.StatusNoContent, rec.Code, "limiter outage must not block checkout")
	require.Error(t, reported)
}
