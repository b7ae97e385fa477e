package middleware

import (
	"net/http"
	"time"

	"go-clinic-management/pkg/response"

	"github.com/go-chi/httprate"
)

// LoginRateLimit limits requests per client IP per minute. A non-positive
// limit disables it.
func LoginRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.TooManyRequests(w, "Too many login attempts, try again later")
		}),
	)
}
