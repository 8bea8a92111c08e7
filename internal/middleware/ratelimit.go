package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter enforces fixed-window request limits per actor and operation
// class, counted in Redis. A nil client disables limiting entirely, and a
// Redis outage fails open; throttling is load protection, not access control.
type RateLimiter struct {
	redis  *redis.Client
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		window: window,
	}
}

// Limit returns middleware allowing max requests per window for the given
// operation class. The actor is the authenticated user when present, the
// remote address otherwise, so it must run after AuthMiddleware on
// authenticated routes.
func (rl *RateLimiter) Limit(op string, max int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl == nil || rl.redis == nil {
				next.ServeHTTP(w, r)
				return
			}

			actor, _ := r.Context().Value("userID").(string)
			if actor == "" {
				actor = r.RemoteAddr
			}
			key := fmt.Sprintf("ratelimit:%s:%s", op, actor)

			count, err := rl.redis.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("[RATELIMIT] Redis unavailable, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rl.redis.Expire(r.Context(), key, rl.window)
			}

			if count > int64(max) {
				retry := int(rl.window.Seconds())
				if ttl, err := rl.redis.TTL(r.Context(), key).Result(); err == nil {
					if ttl > 0 {
						retry = int(ttl.Seconds())
					} else {
						// Counter survived without an expiry; reset the window
						// instead of locking the actor out for good.
						rl.redis.Expire(r.Context(), key, rl.window)
					}
				}
				if retry < 1 {
					retry = 1
				}

				log.Printf("[RATELIMIT] %s exceeded %s limit (%d/%d)", actor, op, count, max)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
