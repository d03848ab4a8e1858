package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/JonMunkholm/fleetdesk/internal/logging"
)

// Rate limit response headers.
const (
	RateLimitLimitHeader     = "RateLimit-Limit"
	RateLimitRemainingHeader = "RateLimit-Remaining"
	RateLimitResetHeader     = "RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"
)

// RateLimit limits each client IP to perMinute requests using GCRA. scope
// separates the budgets of limiters sharing one store. Store errors let the
// request through.
func RateLimit(store throttled.GCRAStoreCtx, scope string, perMinute int) (func(http.Handler) http.Handler, error) {
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}

	limiter, err := throttled.NewGCRARateLimiterCtx(store, throttled.RateQuota{
		MaxRate:  throttled.PerMin(perMinute),
		MaxBurst: burst,
	})
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + "|ip:" + ClientIP(r)

			limited, result, err := limiter.RateLimitCtx(r.Context(), key, 1)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rate limiter store error", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)

			if limited {
				w.Header().Set(RetryAfterHeader, strconv.Itoa(retrySeconds(result.RetryAfter)))
				writeError(w, http.StatusTooManyRequests, "RATE001", "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func setRateLimitHeaders(w http.ResponseWriter, result throttled.RateLimitResult) {
	w.Header().Set(RateLimitLimitHeader, strconv.Itoa(result.Limit))
	w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(result.Remaining))
	w.Header().Set(RateLimitResetHeader, strconv.FormatInt(time.Now().Add(result.ResetAfter).Unix(), 10))
}

// retrySeconds rounds up so clients never retry too early.
func retrySeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
