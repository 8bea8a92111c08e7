package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(limiter *RateLimiter, op string, max int) http.Handler {
	return limiter.Limit(op, max)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func requestAs(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/bookings/bk_1/pay", nil)
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), "userID", userID))
	}
	return req
}

func TestRateLimiter_Limit(t *testing.T) {
	window := time.Minute

	t.Run("first request in a window starts the counter", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		limiter := NewRateLimiter(client, window)

		redisMock.ExpectIncr("ratelimit:payment:cust_1").SetVal(1)
		redisMock.ExpectExpire("ratelimit:payment:cust_1", window).SetVal(true)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "payment", 5).ServeHTTP(rec, requestAs("cust_1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("request over the limit is rejected with Retry-After", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		limiter := NewRateLimiter(client, window)

		redisMock.ExpectIncr("ratelimit:payment:cust_1").SetVal(6)
		redisMock.ExpectTTL("ratelimit:payment:cust_1").SetVal(30 * time.Second)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "payment", 5).ServeHTTP(rec, requestAs("cust_1"))

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "30", rec.Header().Get("Retry-After"))
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("request at the limit still passes", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		limiter := NewRateLimiter(client, window)

		redisMock.ExpectIncr("ratelimit:default:cust_1").SetVal(20)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "default", 20).ServeHTTP(rec, requestAs("cust_1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("redis outage fails open", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		limiter := NewRateLimiter(client, window)

		redisMock.ExpectIncr("ratelimit:payment:cust_1").SetErr(assert.AnError)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "payment", 5).ServeHTTP(rec, requestAs("cust_1"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no redis client disables limiting", func(t *testing.T) {
		limiter := NewRateLimiter(nil, window)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "payment", 1).ServeHTTP(rec, requestAs("cust_1"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unauthenticated requests are keyed by remote address", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		limiter := NewRateLimiter(client, window)

		req := requestAs("")
		redisMock.ExpectIncr("ratelimit:payment:" + req.RemoteAddr).SetVal(1)
		redisMock.ExpectExpire("ratelimit:payment:"+req.RemoteAddr, window).SetVal(true)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "payment", 5).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("counter without expiry gets its window restored", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		limiter := NewRateLimiter(client, window)

		redisMock.ExpectIncr("ratelimit:payment:cust_1").SetVal(9)
		redisMock.ExpectTTL("ratelimit:payment:cust_1").SetVal(-1 * time.Second)
		redisMock.ExpectExpire("ratelimit:payment:cust_1", window).SetVal(true)

		rec := httptest.NewRecorder()
		limitedHandler(limiter, "payment", 5).ServeHTTP(rec, requestAs("cust_1"))

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
