package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"paydash/pkg/logger"
)

// RateLimiter applies a fixed-window rate limit backed by Redis, keyed by
// client IP and, when authenticated, user ID. A Redis outage fails open: the
// dashboard is read-only and availability wins over throttling.
type RateLimiter struct {
	cache  *redis.Client
	limit  int
	window time.Duration
	logger logger.Logger
}

func NewRateLimiter(cache *redis.Client, limit int, window time.Duration, log logger.Logger) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		limit:  limit,
		window: window,
		logger: log,
	}
}

// Limit enforces the rate limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}

		key := fmt.Sprintf("ratelimit:%s", ip)
		if userID, ok := UserIDFromContext(r.Context()); ok && userID != uuid.Nil {
			key = fmt.Sprintf("ratelimit:%s:%s", ip, userID.String())
		}

		count, err := rl.cache.Incr(r.Context(), key).Result()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, failing open", map[string]interface{}{
				"error": err.Error(),
			})
			next.ServeHTTP(w, r)
			return
		}

		if count == 1 {
			if err := rl.cache.Expire(r.Context(), key, rl.window).Err(); err != nil {
				rl.logger.Warn("failed to set rate limit window", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		if count > int64(rl.limit) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			jsonError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", rl.limit-int(count)))

		next.ServeHTTP(w, r)
	})
}
