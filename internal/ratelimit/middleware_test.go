package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shipcalc/internal/ratelimit"
)

func newHandler(t *testing.T, max int64) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := ratelimit.NewRedisStore(rdb)
	require.NoError(t, err)

	h := ratelimit.Handler{Limiter: ratelimit.New(store, max, time.Minute)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return h.Middleware(next), mr
}

func doRequest(handler http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/calculate", nil)
	req.RemoteAddr = "203.0.113.9:4411"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRateLimitAllowsUnderCap(t *testing.T) {
	handler, _ := newHandler(t, 2)

	first := doRequest(handler)
	require.Equal(t, http.StatusNoContent, first.Code)
	require.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := doRequest(handler)
	require.Equal(t, http.StatusNoContent, second.Code)
}

func TestRateLimitRejectsOverCap(t *testing.T) {
	handler, _ := newHandler(t, 1)

	require.Equal(t, http.StatusNoContent, doRequest(handler).Code)

	rejected := doRequest(handler)
	require.Equal(t, http.StatusTooManyRequests, rejected.Code)
	require.NotEmpty(t, rejected.Header().Get("Retry-After"))
	require.Contains(t, rejected.Body.String(), "rate limit exceeded")
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	handler, mr := newHandler(t, 1)
	mr.Close()

	rr := doRequest(handler)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRateLimitDisabledWithoutLimiter(t *testing.T) {
	h := ratelimit.Handler{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := doRequest(h.Middleware(next))
	require.Equal(t, http.StatusNoContent, rr.Code)
}
